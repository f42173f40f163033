package locale

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// maxDecimal is the magnitude limit of a 96-bit scaled decimal. Values beyond
// it are not treated as numeric.
const maxDecimal = 7.9228162514264337593543950335e28

// ParseBool accepts "true" or "false" in any letter case, ignoring
// surrounding whitespace. Other spellings (yes/no, 1/0) are not booleans.
func (l Locale) ParseBool(s string) (bool, bool) {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, "true"):
		return true, true
	case strings.EqualFold(s, "false"):
		return false, true
	}
	return false, false
}

// ParseInt32 accepts an optionally signed base-10 integer in the 32-bit
// signed range, ignoring surrounding whitespace. Group separators are not
// allowed.
func (l Locale) ParseInt32(s string) (int32, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// ParseDecimal accepts a leading sign, digits with group separators in the
// integer part and at most one decimal separator, using the locale's
// symbols. Exponents, currency symbols, trailing signs ("4+") and
// surrounding whitespace are rejected.
func (l Locale) ParseDecimal(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	var b strings.Builder
	b.Grow(len(s))

	rest := s
	switch s[0] {
	case '-':
		b.WriteByte('-')
		rest = s[1:]
	case '+':
		rest = s[1:]
	}

	digits := 0
	seenPoint := false
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == l.Decimal && !seenPoint:
			seenPoint = true
			b.WriteByte('.')
		case !seenPoint && digits > 0 && l.isGroup(r):
			// group separator, dropped
		default:
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.Abs(f) >= maxDecimal {
		return 0, false
	}
	return f, true
}

// ParseDateTime tries the layouts that make sense for the locale's date
// order and returns the first successful parse. Values without a zone are
// returned in UTC. Time-only values are not dates.
func (l Locale) ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range Layouts(l.Order) {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Layouts returns the time layouts tried for order, most specific first.
func Layouts(order DateOrder) []string {
	switch order {
	case MDY:
		return mdyLayouts
	case YMD:
		return ymdLayouts
	default:
		return dmyLayouts
	}
}

// isoLayouts are unambiguous and accepted in every locale.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"20060102T150405",
	time.RFC1123Z,
	time.RFC1123,
}

// textualLayouts spell the month out, so day/month order is not ambiguous.
var textualLayouts = []string{
	"2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"Monday, 2 January 2006",
	"Monday, January 2, 2006",
}

// numeric returns the numeric layouts for a day/month pattern such as
// "2/1/2006", expanded over the common separators and optional times.
func numeric(dayMonth ...string) []string {
	var out []string
	for _, sep := range []string{"/", ".", "-"} {
		for _, dm := range dayMonth {
			p := strings.ReplaceAll(dm, "/", sep)
			out = append(out,
				p+" 15:04:05",
				p+" 15:04",
				p+" 3:04:05 PM",
				p+" 3:04 PM",
				p,
			)
		}
	}
	return out
}

func join(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var (
	dmyLayouts = join(isoLayouts, numeric("2/1/2006", "2/1/06"), textualLayouts)
	mdyLayouts = join(isoLayouts, numeric("1/2/2006", "1/2/06"), textualLayouts)
	ymdLayouts = join(isoLayouts, numeric("2006/1/2"), textualLayouts)
)
