package csv

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
)

// sniffBOM reports the encoding announced by a leading byte-order mark and
// the number of bytes it occupies. It returns nil when raw has no BOM.
func sniffBOM(raw []byte) (encoding.Encoding, int) {
	switch {
	case bytes.HasPrefix(raw, utf8BOM):
		return unicode.UTF8, len(utf8BOM)
	case bytes.HasPrefix(raw, utf16LEBOM):
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), len(utf16LEBOM)
	case bytes.HasPrefix(raw, utf16BEBOM):
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), len(utf16BEBOM)
	}
	return nil, 0
}
