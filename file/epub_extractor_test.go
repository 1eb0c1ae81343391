package file

import (
	"errors"
	"strings"
	"testing"

	"docsplit/internal/testdoc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestEPUBExtractorSpineOrder(t *testing.T) {
	extractor := NewEPUBExtractor(zaptest.NewLogger(t), 0)
	data := testdoc.EPUB(
		testdoc.Chapter("One", "The first chapter."),
		testdoc.Chapter("Two", "The second chapter."),
		testdoc.Chapter("Three", "The third chapter."),
	)

	result, err := extractor.Extract(data)
	require.NoError(t, err)

	assert.Equal(t, KindEPUB, result.Kind)
	assert.Equal(t, MethodStructured, result.Method)
	assert.Equal(t, 3, result.Units)
	assert.Equal(t,
		"One One The first chapter.\nTwo Two The second chapter.\nThree Three The third chapter.\n",
		result.Text)
}

func TestEPUBExtractorFallback(t *testing.T) {
	chapters := []string{
		testdoc.Chapter("One", "The first chapter."),
		testdoc.Chapter("Two", "The second chapter."),
	}

	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "missing container",
			data: testdoc.EPUBWithoutPackage(chapters...),
		},
		{
			name: "corrupt package document",
			data: testdoc.Zip(
				testdoc.Entry{Name: "mimetype", Body: "application/epub+zip"},
				testdoc.Entry{Name: "META-INF/container.xml", Body: `<container><rootfiles><rootfile full-path="OEBPS/content.opf"/></rootfiles></container>`},
				testdoc.Entry{Name: "OEBPS/content.opf", Body: "<package><manifest><item"},
				testdoc.Entry{Name: testdoc.ChapterName(0), Body: chapters[0]},
				testdoc.Entry{Name: testdoc.ChapterName(1), Body: chapters[1]},
			),
		},
		{
			name: "spine entry missing from archive",
			data: testdoc.Zip(
				testdoc.Entry{Name: "META-INF/container.xml", Body: `<container><rootfiles><rootfile full-path="OEBPS/content.opf"/></rootfiles></container>`},
				testdoc.Entry{Name: "OEBPS/content.opf", Body: testdoc.OPF(3)},
				testdoc.Entry{Name: testdoc.ChapterName(0), Body: chapters[0]},
				testdoc.Entry{Name: testdoc.ChapterName(1), Body: chapters[1]},
			),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewEPUBExtractor(zaptest.NewLogger(t), 0)

			result, err := extractor.Extract(tt.data)
			require.NoError(t, err)
			assert.Equal(t, MethodFallback, result.Method)
			assert.Equal(t, 2, result.Units)
			assert.Equal(t, "One One The first chapter.\nTwo Two The second chapter.\n", result.Text)
		})
	}
}

func TestEPUBExtractorEmptyElementTags(t *testing.T) {
	chapter := `<?xml version="1.0" encoding="UTF-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title/><script type="text/javascript" src="a.js"/></head>
<body><p>Chapter body text.</p></body></html>`

	tests := []struct {
		name       string
		data       []byte
		wantMethod Method
	}{
		{name: "spine", data: testdoc.EPUB(chapter), wantMethod: MethodStructured},
		{name: "archive scan", data: testdoc.EPUBWithoutPackage(chapter), wantMethod: MethodFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewEPUBExtractor(zaptest.NewLogger(t), 0)

			result, err := extractor.Extract(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, result.Method)
			assert.Equal(t, "Chapter body text.\n", result.Text)
		})
	}
}

func TestEPUBExtractorFallbackUsesDirectoryOrder(t *testing.T) {
	extractor := NewEPUBExtractor(zaptest.NewLogger(t), 0)
	data := testdoc.Zip(
		testdoc.Entry{Name: "b/second.XHTML", Body: "<p>beta</p>"},
		testdoc.Entry{Name: "notes.txt", Body: "ignored"},
		testdoc.Entry{Name: "a/first.html", Body: "<p>alpha</p>"},
	)

	result, err := extractor.Extract(data)
	require.NoError(t, err)
	assert.Equal(t, MethodFallback, result.Method)
	assert.Equal(t, "beta\nalpha\n", result.Text)
}

func TestEPUBExtractorFallbackSkipsBadEntries(t *testing.T) {
	extractor := NewEPUBExtractor(zaptest.NewLogger(t), 512)
	data := testdoc.Zip(
		testdoc.Entry{Name: "huge.xhtml", Body: "<p>" + strings.Repeat("x", 2048) + "</p>"},
		testdoc.Entry{Name: "broken.html", Body: "<p>ok\xff\xfe text</p>"},
	)

	result, err := extractor.Extract(data)
	require.NoError(t, err)
	assert.Equal(t, MethodFallback, result.Method)
	assert.Equal(t, 1, result.Units)
	assert.Equal(t, 1, result.Skipped)
	assert.True(t, strings.HasPrefix(result.Text, "ok"))
	assert.Contains(t, result.Text, "�")
	assert.Contains(t, result.Text, "text")
}

func TestEPUBExtractorBothPathsFail(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		limit    int64
		wantBoth error
	}{
		{
			name: "not a zip",
			data: []byte("plain bytes, no archive here"),
		},
		{
			name: "no markup entries",
			data: testdoc.Zip(testdoc.Entry{Name: "mimetype", Body: "application/epub+zip"}),
		},
		{
			name:     "every entry over the size limit",
			data:     testdoc.EPUB(testdoc.Chapter("One", strings.Repeat("long text ", 100))),
			limit:    200,
			wantBoth: ErrEntryTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := NewEPUBExtractor(zaptest.NewLogger(t), tt.limit)

			result, err := extractor.Extract(tt.data)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, ErrExtraction))

			var extractionErr *ExtractionError
			require.True(t, errors.As(err, &extractionErr))
			assert.Equal(t, KindEPUB, extractionErr.Kind)
			assert.Error(t, extractionErr.Primary)
			assert.Error(t, extractionErr.Fallback)
			if tt.wantBoth != nil {
				assert.True(t, errors.Is(err, tt.wantBoth))
			}
		})
	}
}

func TestEPUBExtractorBlankBook(t *testing.T) {
	extractor := NewEPUBExtractor(zaptest.NewLogger(t), 0)
	data := testdoc.EPUB(
		`<html xmlns="http://www.w3.org/1999/xhtml"><body><img src="cover.jpg"/></body></html>`,
		`<html xmlns="http://www.w3.org/1999/xhtml"><body><p>   </p></body></html>`,
	)

	result, err := extractor.Extract(data)
	require.NoError(t, err)
	assert.Equal(t, MethodStructured, result.Method)
	assert.Equal(t, 2, result.Units)
	assert.Empty(t, strings.TrimSpace(result.Text))
}

func TestEPUBExtractorSkipsNonXHTMLSpineItems(t *testing.T) {
	extractor := NewEPUBExtractor(zaptest.NewLogger(t), 0)
	opf := `<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <manifest>
    <item id="cover" href="cover.svg" media-type="image/svg+xml"/>
    <item id="intro" href="Text/intro%20page.xhtml" media-type="Application/XHTML+XML"/>
  </manifest>
  <spine><itemref idref="cover"/><itemref idref="intro"/></spine>
</package>`
	data := testdoc.Zip(
		testdoc.Entry{Name: "mimetype", Body: "application/epub+zip"},
		testdoc.Entry{Name: "META-INF/container.xml", Body: `<container><rootfiles><rootfile full-path="content.opf" media-type="application/oebps-package+xml"/></rootfiles></container>`},
		testdoc.Entry{Name: "content.opf", Body: opf},
		testdoc.Entry{Name: "cover.svg", Body: `<svg><text>Cover title</text></svg>`},
		testdoc.Entry{Name: "Text/intro page.xhtml", Body: "<p>Introduction</p>"},
	)

	result, err := extractor.Extract(data)
	require.NoError(t, err)
	assert.Equal(t, MethodStructured, result.Method)
	assert.Equal(t, 1, result.Units)
	assert.Equal(t, "Introduction\n", result.Text)
}

func TestResolveHref(t *testing.T) {
	tests := []struct {
		baseDir, href, want string
	}{
		{"OEBPS", "text/ch1.xhtml", "OEBPS/text/ch1.xhtml"},
		{".", "ch1.xhtml", "ch1.xhtml"},
		{"OEBPS/text", "../images/../ch2.xhtml#start", "OEBPS/ch2.xhtml"},
		{"OEBPS", "chapter%201.xhtml", "OEBPS/chapter 1.xhtml"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveHref(tt.baseDir, tt.href), "%s + %s", tt.baseDir, tt.href)
	}
}

func TestIsMarkupEntry(t *testing.T) {
	tests := []struct {
		name      string
		wantRead  bool
		wantXHTML bool
	}{
		{"OEBPS/ch1.xhtml", true, true},
		{"OEBPS/CH1.XHTML", true, true},
		{"index.html", true, false},
		{"INDEX.Html", true, false},
		{"OEBPS/content.opf", false, false},
		{"notes.htm", false, false},
		{"html", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantRead, isMarkupEntry(tt.name))
			assert.Equal(t, tt.wantXHTML, isXHTMLEntry(tt.name))
		})
	}
}
