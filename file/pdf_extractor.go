package file

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

var (
	errNullPage        = errors.New("page object is missing")
	errMissingContents = errors.New("page content stream is missing")
)

// PDFExtractor reads the text layer of a PDF page by page using
// github.com/ledongthuc/pdf. Pages are concatenated in order with no
// separator; a page that cannot be read contributes nothing.
type PDFExtractor struct {
	logger *zap.Logger
}

// NewPDFExtractor creates a new PDFExtractor.
func NewPDFExtractor(logger *zap.Logger) *PDFExtractor {
	return &PDFExtractor{
		logger: logger,
	}
}

// Extract returns the concatenated text of every readable page. Only a
// document that cannot be opened at all is an error; unreadable pages are
// logged and counted in Skipped.
func (p *PDFExtractor) Extract(data []byte) (*ExtractedText, error) {
	r, numPages, err := openPDF(data)
	if err != nil {
		return nil, &ExtractionError{Kind: KindPDF, Primary: err}
	}

	var sb strings.Builder
	read, skipped := 0, 0
	for pageNum := 1; pageNum <= numPages; pageNum++ {
		text, err := pageText(r, pageNum)
		if err != nil {
			p.logger.Warn("Failed to extract page text",
				zap.Int("page", pageNum),
				zap.Error(err))
			skipped++
			continue
		}
		sb.WriteString(text)
		read++
	}

	p.logger.Debug("PDF text extracted",
		zap.Int("pages", numPages),
		zap.Int("skipped", skipped),
		zap.Int("length", sb.Len()))

	return &ExtractedText{
		Text:    sb.String(),
		Kind:    KindPDF,
		Method:  MethodStructured,
		Units:   read,
		Skipped: skipped,
	}, nil
}

// openPDF converts parser panics on malformed input into errors.
func openPDF(data []byte) (r *pdf.Reader, numPages int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, numPages, err = nil, 0, fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	r, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	return r, r.NumPage(), nil
}

func pageText(r *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("malformed page: %v", rec)
		}
	}()

	page := r.Page(pageNum)
	if page.V.IsNull() {
		return "", errNullPage
	}
	// A page without /Contents is blank. One whose /Contents resolves to
	// nothing is broken, though GetPlainText reports it as blank too.
	if hasKey(page.V, "Contents") && page.V.Key("Contents").IsNull() {
		return "", errMissingContents
	}
	return page.GetPlainText(nil)
}

func hasKey(v pdf.Value, key string) bool {
	for _, k := range v.Keys() {
		if k == key {
			return true
		}
	}
	return false
}
