// Package testdoc fabricates small PDF and EPUB documents in memory for tests.
package testdoc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// Entry is one file written into a zip archive, in the given order.
type Entry struct {
	Name string
	Body string
}

// Zip writes entries into a zip archive in order. Entries named "mimetype"
// are stored uncompressed, as EPUB requires.
func Zip(entries ...Entry) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		method := zip.Deflate
		if e.Name == "mimetype" {
			method = zip.Store
		}
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.Name, Method: method})
		if err != nil {
			panic(err)
		}
		if _, err := fw.Write([]byte(e.Body)); err != nil {
			panic(err)
		}
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Chapter renders an XHTML content document.
func Chapter(title, body string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head><title>%s</title><style>p { margin: 0 }</style></head>
<body>
<h1>%s</h1>
<p>%s</p>
</body>
</html>`, title, title, body)
}

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

// ChapterName is the archive path of the i-th (0-based) chapter written by EPUB.
func ChapterName(i int) string {
	return fmt.Sprintf("OEBPS/text/ch%d.xhtml", i+1)
}

// OPF renders a package document whose spine follows chapter order while the
// manifest lists the chapters in reverse.
func OPF(chapters int) string {
	var manifest, spine strings.Builder
	for i := chapters - 1; i >= 0; i-- {
		fmt.Fprintf(&manifest, `    <item id="ch%d" href="text/ch%d.xhtml" media-type="application/xhtml+xml"/>`+"\n", i+1, i+1)
	}
	manifest.WriteString(`    <item id="css" href="style.css" media-type="text/css"/>` + "\n")
	for i := 0; i < chapters; i++ {
		fmt.Fprintf(&spine, `    <itemref idref="ch%d"/>`+"\n", i+1)
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>Test Book</dc:title>
    <dc:identifier id="id">urn:uuid:00000000-0000-0000-0000-000000000000</dc:identifier>
  </metadata>
  <manifest>
%s  </manifest>
  <spine>
%s  </spine>
</package>`, manifest.String(), spine.String())
}

// EPUB builds a well-formed EPUB. Spine order follows the chapters argument;
// the archive stores the chapters in reverse so directory order differs from
// reading order.
func EPUB(chapters ...string) []byte {
	entries := []Entry{
		{Name: "mimetype", Body: "application/epub+zip"},
		{Name: "META-INF/container.xml", Body: containerXML},
		{Name: "OEBPS/content.opf", Body: OPF(len(chapters))},
		{Name: "OEBPS/style.css", Body: "p { margin: 0 }"},
	}
	for i := len(chapters) - 1; i >= 0; i-- {
		entries = append(entries, Entry{Name: ChapterName(i), Body: chapters[i]})
	}
	return Zip(entries...)
}

// EPUBWithoutPackage builds an archive holding only the mimetype and the
// chapters, with no container or package document.
func EPUBWithoutPackage(chapters ...string) []byte {
	entries := []Entry{{Name: "mimetype", Body: "application/epub+zip"}}
	for i, ch := range chapters {
		entries = append(entries, Entry{Name: ChapterName(i), Body: ch})
	}
	return Zip(entries...)
}

// MissingContents, passed to RawPDF as a page stream, gives that page a
// /Contents reference to an object the file does not contain.
const MissingContents = "\x00missing"

// TextStream is a content stream showing text with a single Tj operator.
func TextStream(text string) string {
	return fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", escapePDFString(text))
}

// PDF builds a minimal single-font PDF with one page per argument, each page
// showing its text with a single Tj operator.
func PDF(pages ...string) []byte {
	streams := make([]string, len(pages))
	for i, text := range pages {
		streams[i] = TextStream(text)
	}
	return RawPDF(streams...)
}

// RawPDF builds a minimal single-font PDF with one page per content stream.
func RawPDF(streams ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := make([]string, len(streams))
	for i := range streams {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(streams)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, stream := range streams {
		contents := 5 + 2*i
		if stream == MissingContents {
			contents, stream = 999, ""
		}
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contents))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
