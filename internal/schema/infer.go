package schema

import (
	"strings"

	"csvsql/internal/locale"
	"csvsql/internal/parser/csv"
)

// TypeSet is the set of classifications observed in one column.
type TypeSet uint8

func (s TypeSet) Add(t ColumnType) TypeSet { return s | 1<<uint(t) }

func (s TypeSet) Has(t ColumnType) bool { return s&(1<<uint(t)) != 0 }

// Classify returns the first type whose parser accepts v, trying Boolean,
// Integer, Double and DateTime in that order. Anything else is String.
func Classify(v string, loc locale.Locale) ColumnType {
	if _, ok := loc.ParseBool(v); ok {
		return Boolean
	}
	if _, ok := loc.ParseInt32(v); ok {
		return Integer
	}
	if _, ok := loc.ParseDecimal(v); ok {
		return Double
	}
	if _, ok := loc.ParseDateTime(v); ok {
		return DateTime
	}
	return String
}

// Resolve picks the column type for a set of classifications.
//
//   - String anywhere, or DateTime next to any numeric or boolean, is String.
//   - Boolean next to Integer or Double has no narrower common type: String.
//   - Otherwise the widest of Double, Integer, Boolean, DateTime wins.
//   - An empty set (no non-blank values) is String.
func Resolve(s TypeSet) ColumnType {
	switch {
	case s.Has(String):
		return String
	case s.Has(DateTime) && (s.Has(Double) || s.Has(Integer) || s.Has(Boolean)):
		return String
	case s.Has(Boolean) && (s.Has(Double) || s.Has(Integer)):
		return String
	case s.Has(Double):
		return Double
	case s.Has(Integer):
		return Integer
	case s.Has(Boolean):
		return Boolean
	case s.Has(DateTime):
		return DateTime
	}
	return String
}

// Infer returns one type per column. The column count is the width of the
// first record. With hasHeader the first record is only used for the width.
// Blank cells carry no evidence.
func Infer(records []csv.Row, hasHeader bool, loc locale.Locale) []ColumnType {
	if len(records) == 0 {
		return nil
	}
	width := len(records[0])
	data := records
	if hasHeader {
		data = records[1:]
	}

	sets := make([]TypeSet, width)
	for _, row := range data {
		for i := 0; i < width && i < len(row); i++ {
			v := trimQuotes(row[i])
			if strings.TrimSpace(v) == "" {
				continue
			}
			sets[i] = sets[i].Add(Classify(v, loc))
		}
	}

	types := make([]ColumnType, width)
	for i, s := range sets {
		types[i] = Resolve(s)
	}
	return types
}

func trimQuotes(s string) string { return strings.Trim(s, `"`) }
