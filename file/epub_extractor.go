package file

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"

	"docsplit/text"

	"go.uber.org/zap"
)

var errNoFallbackText = errors.New("no readable text in any .html or .xhtml entry")

// EPUBExtractor reads the XHTML content documents of an EPUB in spine order.
// When the package structure cannot be used, it scans every markup entry of
// the archive in directory order instead.
type EPUBExtractor struct {
	logger    *zap.Logger
	sizeLimit int64
}

// NewEPUBExtractor creates an extractor that refuses to inflate any archive
// entry larger than maxEntryBytes. Zero or less selects 64 MiB.
func NewEPUBExtractor(logger *zap.Logger, maxEntryBytes int64) *EPUBExtractor {
	if maxEntryBytes <= 0 {
		maxEntryBytes = defaultEntryLimit
	}
	return &EPUBExtractor{
		logger:    logger,
		sizeLimit: maxEntryBytes,
	}
}

// Extract returns the text of every XHTML spine document, one per line. If
// the package cannot be read or yields only whitespace, the text of the
// archive's .html and .xhtml entries is returned instead.
func (e *EPUBExtractor) Extract(data []byte) (*ExtractedText, error) {
	structured, primaryErr := e.extractStructured(data)
	if primaryErr == nil && strings.TrimSpace(structured.Text) != "" {
		return structured, nil
	}

	if primaryErr != nil {
		e.logger.Warn("Structured EPUB read failed, scanning archive entries", zap.Error(primaryErr))
	} else {
		e.logger.Warn("Structured EPUB read produced no text, scanning archive entries",
			zap.Int("documents", structured.Units))
	}

	fallback, fallbackErr := e.extractFallback(data)
	if fallbackErr == nil {
		return fallback, nil
	}

	if primaryErr == nil {
		// The book is well formed but holds no text; the validator reports it.
		return structured, nil
	}
	return nil, &ExtractionError{Kind: KindEPUB, Primary: primaryErr, Fallback: fallbackErr}
}

func (e *EPUBExtractor) extractStructured(data []byte) (*ExtractedText, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open epub archive: %w", err)
	}
	a := newArchive(zr, e.sizeLimit)

	opfPath, err := a.packagePath()
	if err != nil {
		return nil, err
	}
	docs, err := a.spine(opfPath)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	read := 0
	for _, doc := range docs {
		if doc.MediaType != xhtmlMediaType {
			continue
		}

		raw, err := a.read(doc.Name)
		if err != nil {
			return nil, err
		}
		decoded, err := text.DecodeDeclared(raw, doc.MediaType)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", doc.Name, err)
		}
		body, err := text.VisibleXHTMLText(decoded)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", doc.Name, err)
		}

		sb.WriteString(body)
		sb.WriteByte('\n')
		read++
	}

	e.logger.Debug("EPUB spine read",
		zap.String("package", opfPath),
		zap.Int("spine_items", len(docs)),
		zap.Int("documents", read))

	return &ExtractedText{
		Text:   sb.String(),
		Kind:   KindEPUB,
		Method: MethodStructured,
		Units:  read,
	}, nil
}

// extractFallback treats the upload as a plain zip archive. Entries that
// cannot be read or parsed are skipped.
func (e *EPUBExtractor) extractFallback(data []byte) (*ExtractedText, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open zip archive: %w", err)
	}

	var sb strings.Builder
	read, skipped := 0, 0
	for _, f := range zr.File {
		if !isMarkupEntry(f.Name) {
			continue
		}

		raw, err := readEntry(f, e.sizeLimit)
		if err != nil {
			e.logger.Warn("Skipping unreadable archive entry", zap.String("entry", f.Name), zap.Error(err))
			skipped++
			continue
		}
		visible := text.VisibleText
		if isXHTMLEntry(f.Name) {
			visible = text.VisibleXHTMLText
		}
		body, err := visible(strings.NewReader(text.DecodeUTF8(raw)))
		if err != nil {
			e.logger.Warn("Skipping unparseable archive entry", zap.String("entry", f.Name), zap.Error(err))
			skipped++
			continue
		}

		sb.WriteString(body)
		sb.WriteByte('\n')
		read++
	}

	if strings.TrimSpace(sb.String()) == "" {
		return nil, fmt.Errorf("%w (%d read, %d skipped)", errNoFallbackText, read, skipped)
	}

	return &ExtractedText{
		Text:    sb.String(),
		Kind:    KindEPUB,
		Method:  MethodFallback,
		Units:   read,
		Skipped: skipped,
	}, nil
}

func isMarkupEntry(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".html") || isXHTMLEntry(name)
}

func isXHTMLEntry(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xhtml")
}
