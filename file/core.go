package file

import (
	"fmt"

	"docsplit/text"

	"go.uber.org/zap"
)

// Core routes a document to the extractor for its format and rejects
// documents that yield no text.
type Core struct {
	pdfExtractor  TextExtractor
	epubExtractor TextExtractor
	logger        *zap.Logger
}

// NewCore creates a new Core with one extractor per supported format.
func NewCore(pdfExtractor, epubExtractor TextExtractor, logger *zap.Logger) *Core {
	return &Core{
		pdfExtractor:  pdfExtractor,
		epubExtractor: epubExtractor,
		logger:        logger,
	}
}

// Extract detects the format of doc, runs its extractor and validates that
// the result holds text. Format, extraction and empty-document failures are
// returned as their typed errors.
func (c *Core) Extract(doc Document) (*ExtractedText, error) {
	kind, err := DetectKind(doc.DeclaredType, doc.Filename)
	if err != nil {
		return nil, err
	}

	var extractor TextExtractor
	switch kind {
	case KindPDF:
		extractor = c.pdfExtractor
	case KindEPUB:
		extractor = c.epubExtractor
	}
	if extractor == nil {
		return nil, fmt.Errorf("no extractor configured for %s", kind)
	}

	c.logger.Info("Extracting text",
		zap.String("file", doc.Filename),
		zap.String("kind", string(kind)),
		zap.Int("size", len(doc.Data)))

	result, err := extractor.Extract(doc.Data)
	if err != nil {
		return nil, err
	}

	if err := text.Validate(string(kind), result.Text); err != nil {
		return nil, err
	}

	c.logger.Info("Text extracted",
		zap.String("file", doc.Filename),
		zap.String("method", string(result.Method)),
		zap.Int("units", result.Units),
		zap.Int("skipped", result.Skipped),
		zap.Int("length", len(result.Text)))

	return result, nil
}
