package csv

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Options configures how raw input becomes a Document.
type Options struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune

	// Encoding names the input character set (WHATWG labels such as
	// "utf-8", "utf-16le", "windows-1252", "iso-8859-2"). Empty means UTF-8.
	// A byte-order mark always wins over this setting.
	Encoding string
}

func (o Options) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

// Lookup resolves an encoding label.
func Lookup(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("csv: unknown encoding %q: %w", name, err)
	}
	return enc, nil
}

// Decode converts raw bytes into text. A leading BOM selects UTF-8 or UTF-16
// and is removed; otherwise the named encoding is used.
func Decode(raw []byte, name string) (string, error) {
	enc, skip := sniffBOM(raw)
	if enc == nil {
		var err error
		if enc, err = Lookup(name); err != nil {
			return "", err
		}
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), raw[skip:])
	if err != nil {
		return "", fmt.Errorf("csv: decode %s: %w", name, err)
	}
	return string(out), nil
}

// Read loads the whole of r, decodes it and tokenizes it. The input is held
// in memory; there is no partial parse.
func Read(ctx context.Context, r io.Reader, opt Options) (Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("csv: read: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	text, err := Decode(raw, opt.Encoding)
	if err != nil {
		return Document{}, err
	}
	return Parse(text, opt.delimiter()), nil
}
