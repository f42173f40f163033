// Package csv tokenizes delimited text held entirely in memory.
//
// Parse is a single left-to-right scan with one rune of lookahead. It never
// fails: malformed input (an unterminated quote) is flushed best-effort and
// reported on the returned Document.
package csv

import "strings"

// Row is one logical line of input, split into fields.
type Row []string

// Document is the ordered result of tokenizing one input.
type Document struct {
	// Rows holds every logical line in input order, including blank ones.
	// A blank line is a row with a single empty field.
	Rows []Row

	// UnterminatedQuote is set when the input ended inside a quoted field.
	// The field and its row were still emitted.
	UnterminatedQuote bool
}

// Records returns the rows that carry data, skipping blank lines. When the
// first data row has one field, a blank line between data rows is an empty
// value and is kept as a one-field row; leading and trailing blank lines are
// still dropped.
func (d Document) Records() []Row {
	first, last := -1, -1
	for i, r := range d.Rows {
		if isBlank(r) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return []Row{}
	}

	single := len(d.Rows[first]) == 1
	out := make([]Row, 0, last-first+1)
	for _, r := range d.Rows[first : last+1] {
		if isBlank(r) {
			if !single {
				continue
			}
			r = Row{""}
		}
		out = append(out, r)
	}
	return out
}

func isBlank(r Row) bool {
	return len(r) == 0 || (len(r) == 1 && r[0] == "")
}

// Parse splits text into rows and fields.
//
//   - A quote outside a quoted field opens quoting and is not copied.
//   - A doubled quote inside a quoted field is one literal quote.
//   - A single quote inside a quoted field closes it and appends the field;
//     a delimiter directly after it is consumed with the close.
//   - Delimiter and line feed outside quotes end a field and a row.
//   - Space, tab and CR outside quotes are dropped. The delimiter check comes
//     first, so tab-delimited input works.
//   - Everything inside quotes is kept literally, line feeds included.
func Parse(text string, delimiter rune) Document {
	var doc Document
	if text == "" {
		return doc
	}
	synthetic := false
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
		synthetic = true
	}

	in := []rune(text)
	var (
		field    strings.Builder
		row      Row
		inQuotes bool
		// closed is set after a closing quote appended the field, so the next
		// terminator must not append it again.
		closed bool
	)

	for i := 0; i < len(in); i++ {
		c := in[i]

		if inQuotes {
			if c != '"' {
				field.WriteRune(c)
				continue
			}
			if i+1 < len(in) && in[i+1] == '"' {
				field.WriteRune('"')
				i++
				continue
			}
			inQuotes = false
			row = append(row, field.String())
			field.Reset()
			closed = true
			if i+1 < len(in) && in[i+1] == delimiter {
				i++
				closed = false
			}
			continue
		}

		switch {
		case c == '"':
			inQuotes = true
		case c == delimiter:
			if !closed {
				row = append(row, field.String())
			}
			field.Reset()
			closed = false
		case c == '\n':
			if !closed {
				row = append(row, field.String())
			}
			doc.Rows = append(doc.Rows, row)
			row = nil
			field.Reset()
			closed = false
		case c == '\r' || c == ' ' || c == '\t':
			// dropped
		default:
			closed = false
			field.WriteRune(c)
		}
	}

	if inQuotes {
		v := field.String()
		if synthetic {
			v = strings.TrimSuffix(v, "\n")
		}
		row = append(row, v)
		doc.Rows = append(doc.Rows, row)
		doc.UnterminatedQuote = true
	}
	return doc
}
