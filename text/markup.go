package text

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// voidElements never have content, so "<br/>" already parses as intended.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// VisibleText parses HTML markup and returns its text nodes, each trimmed,
// empties dropped, joined by a single space. Script, style and template
// contents are not text a reader sees and are skipped.
func VisibleText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse markup: %w", err)
	}

	doc.Find("script, style, template").Remove()

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	return sb.String(), nil
}

// VisibleXHTMLText is VisibleText for XHTML. The HTML tokenizer ignores the
// trailing slash of an empty-element tag, so "<title/>" would swallow the
// rest of the document as title text; such tags are rewritten into
// start/end pairs first.
func VisibleXHTMLText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read markup: %w", err)
	}
	return VisibleText(bytes.NewReader(expandEmptyElements(data)))
}

// expandEmptyElements rewrites "<name attrs/>" as "<name attrs></name>" for
// every non-void element. Comments and CDATA sections are copied verbatim.
func expandEmptyElements(src []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(src) + len(src)/16)

	for i := 0; i < len(src); {
		lt := bytes.IndexByte(src[i:], '<')
		if lt < 0 {
			out.Write(src[i:])
			break
		}
		out.Write(src[i : i+lt])
		i += lt

		if skip := verbatimSection(src[i:]); skip > 0 {
			out.Write(src[i : i+skip])
			i += skip
			continue
		}
		if i+1 >= len(src) || !isNameStart(src[i+1]) {
			out.WriteByte('<')
			i++
			continue
		}

		gt := tagEnd(src, i+1)
		if gt < 0 {
			out.Write(src[i:])
			break
		}

		nameEnd := i + 1
		for nameEnd < gt && !isTagDelimiter(src[nameEnd]) {
			nameEnd++
		}
		name := src[i+1 : nameEnd]

		inner := bytes.TrimRight(src[i:gt], " \t\r\n\f")
		if bytes.HasSuffix(inner, []byte("/")) && !voidElements[localName(name)] {
			out.Write(bytes.TrimRight(inner[:len(inner)-1], " \t\r\n\f"))
			out.WriteString("></")
			out.Write(name)
			out.WriteByte('>')
		} else {
			out.Write(src[i : gt+1])
		}
		i = gt + 1
	}
	return out.Bytes()
}

// verbatimSection returns the length of a comment or CDATA section starting
// at s, or 0 when s starts with neither. Unterminated sections run to the end.
func verbatimSection(s []byte) int {
	for _, delim := range [][2]string{{"<!--", "-->"}, {"<![CDATA[", "]]>"}} {
		if !bytes.HasPrefix(s, []byte(delim[0])) {
			continue
		}
		end := bytes.Index(s[len(delim[0]):], []byte(delim[1]))
		if end < 0 {
			return len(s)
		}
		return len(delim[0]) + end + len(delim[1])
	}
	return 0
}

// tagEnd returns the index of the '>' closing the tag whose name starts at
// from, skipping quoted attribute values, or -1.
func tagEnd(src []byte, from int) int {
	var quote byte
	for j := from; j < len(src); j++ {
		c := src[j]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return j
		}
	}
	return -1
}

func localName(name []byte) string {
	if i := bytes.LastIndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(string(name))
}

func isNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isTagDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', '/', '>':
		return true
	}
	return false
}
