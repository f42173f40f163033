package schema

import (
	"path"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FallbackTableName is used when neither an override nor a source file name
// yields a table name.
const FallbackTableName = "Imported_CSV_File"

// DefaultColumnName is the name of column i when no header value is usable.
func DefaultColumnName(i int) string { return "Column_" + strconv.Itoa(i) }

// TableName joins prefix with override, or with the source file's base name
// minus its extension.
func TableName(prefix, override, sourceName string) string {
	name := strings.TrimSpace(override)
	if name == "" {
		base := strings.TrimSpace(sourceName)
		if i := strings.LastIndexAny(base, `/\`); i >= 0 {
			base = base[i+1:]
		}
		name = strings.TrimSuffix(base, path.Ext(base))
	}
	if name == "" {
		name = FallbackTableName
	}
	return prefix + name
}

// NormalizeName lowercases s, strips accents and reduces it to [a-z0-9_].
// Runs of separators become one underscore. The result may be empty.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	prevUnderscore := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.' || r == '/':
			if !prevUnderscore {
				b.WriteByte('_')
				prevUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// dedupe suffixes repeated names (compared case-insensitively) with _2, _3
// and so on, keeping the first occurrence unchanged.
func dedupe(names []string) []string {
	out := make([]string, len(names))
	taken := make(map[string]bool, len(names))
	for i, n := range names {
		key := strings.ToLower(n)
		if !taken[key] {
			taken[key] = true
			out[i] = n
			continue
		}
		for k := 2; ; k++ {
			cand := n + "_" + strconv.Itoa(k)
			if !taken[strings.ToLower(cand)] {
				taken[strings.ToLower(cand)] = true
				out[i] = cand
				break
			}
		}
	}
	return out
}
