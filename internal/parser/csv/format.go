package csv

import "strings"

// Format writes rows back as delimited text, one line per row terminated by
// a line feed. Fields holding the delimiter, quotes, whitespace or line
// breaks are quoted with embedded quotes doubled, so Parse(Format(rows, d), d)
// yields rows again.
func Format(rows []Row, delimiter rune) string {
	var b strings.Builder
	for _, r := range rows {
		for i, f := range r {
			if i > 0 {
				b.WriteRune(delimiter)
			}
			if needsQuotes(f, delimiter) {
				b.WriteByte('"')
				b.WriteString(strings.ReplaceAll(f, `"`, `""`))
				b.WriteByte('"')
				continue
			}
			b.WriteString(f)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func needsQuotes(f string, delimiter rune) bool {
	return strings.ContainsRune(f, delimiter) || strings.ContainsAny(f, "\"\r\n \t")
}
