// Package locale carries the number and date conventions used to classify and
// convert CSV cell values. A Locale is an explicit value passed to every
// function that needs it; nothing here touches process-wide state.
//
// Conventions are derived from a BCP 47 tag (e.g. "en-GB", "de-DE") parsed
// with golang.org/x/text/language:
//
//   - Decimal and group separators follow the tag's base language, with a
//     few regional overrides (de-CH uses '.' and an apostrophe).
//   - Day/month order follows the region: US-style regions read numeric dates
//     as month first, East Asian and a handful of European languages as year
//     first, everything else as day first.
package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Default is the locale used when none is configured.
const Default = "en-GB"

// DateOrder is the order in which day, month and year appear in a numeric
// date such as 03/04/2024.
type DateOrder int

const (
	DMY DateOrder = iota
	MDY
	YMD
)

func (o DateOrder) String() string {
	switch o {
	case MDY:
		return "mdy"
	case YMD:
		return "ymd"
	default:
		return "dmy"
	}
}

// Locale holds the conventions for one culture.
type Locale struct {
	Tag     language.Tag
	Decimal rune
	Group   rune
	Order   DateOrder
}

// Parse resolves a locale name. An empty name selects Default.
func Parse(name string) (Locale, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = Default
	}
	tag, err := language.Parse(name)
	if err != nil {
		return Locale{}, fmt.Errorf("locale %q: %w", name, err)
	}
	return FromTag(tag), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level defaults.
func MustParse(name string) Locale {
	l, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return l
}

// FromTag derives the conventions for tag.
func FromTag(tag language.Tag) Locale {
	base, _ := tag.Base()
	region, _ := tag.Region()
	lang, reg := base.String(), region.String()

	l := Locale{Tag: tag, Decimal: '.', Group: ',', Order: DMY}

	switch lang {
	case "de", "es", "it", "pt", "nl", "da", "tr", "id", "ro", "el", "hr", "sl", "sr", "ca":
		l.Decimal, l.Group = ',', '.'
	case "fr", "cs", "sk", "pl", "ru", "uk", "sv", "fi", "nb", "nn", "no", "hu", "lt", "lv", "et", "bg":
		l.Decimal, l.Group = ',', '\u00a0'
	}
	if reg == "CH" || reg == "LI" {
		l.Decimal, l.Group = '.', '\''
	}

	switch {
	case reg == "US" || reg == "PH" || reg == "FM" || reg == "MH" || reg == "PW":
		l.Order = MDY
	case lang == "zh" || lang == "ja" || lang == "ko" || lang == "hu" || lang == "lt" || lang == "mn" || lang == "sv":
		l.Order = YMD
	}
	return l
}

// String returns the BCP 47 form of the locale's tag.
func (l Locale) String() string { return l.Tag.String() }

// isGroup reports whether r separates digit groups. Locales that group with a
// no-break space also accept the plain and narrow no-break spaces.
func (l Locale) isGroup(r rune) bool {
	if r == l.Group {
		return true
	}
	if l.Group == '\u00a0' {
		return r == ' ' || r == '\u202f'
	}
	return false
}
