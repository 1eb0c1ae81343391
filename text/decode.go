package text

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var xmlEncodingDecl = regexp.MustCompile(`^\s*<\?xml[^>]*?\sencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)

// DecodeUTF8 decodes data as UTF-8, replacing invalid sequences with U+FFFD.
func DecodeUTF8(data []byte) string {
	out, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), data)
	if err != nil {
		return string(bytes.ToValidUTF8(data, []byte("\uFFFD")))
	}
	return string(out)
}

// DecodeDeclared returns a UTF-8 reader for markup. The encoding comes from,
// in order: a BOM, a charset parameter on contentType, an XML declaration, a
// meta tag. Undeclared documents are read as UTF-8 when they are valid UTF-8
// and as windows-1252 otherwise.
func DecodeDeclared(data []byte, contentType string) (io.Reader, error) {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}

	enc, name, certain := charset.DetermineEncoding(head, contentType)
	if !certain {
		if m := xmlEncodingDecl.FindSubmatch(head); m != nil {
			declared, declaredName := charset.Lookup(string(m[1]))
			if declared == nil {
				return nil, fmt.Errorf("unknown encoding %q declared", m[1])
			}
			enc, name, certain = declared, declaredName, true
		}
	}

	if !certain && name == "windows-1252" && utf8.Valid(data) {
		return bytes.NewReader(data), nil
	}
	return transform.NewReader(bytes.NewReader(data), enc.NewDecoder()), nil
}
