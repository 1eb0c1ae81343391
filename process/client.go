package processor

import (
	"time"

	"docsplit/file"
	"docsplit/pkg/chunking"

	"go.uber.org/zap"
)

// Extractor turns an uploaded document into validated plain text.
type Extractor interface {
	Extract(doc file.Document) (*file.ExtractedText, error)
}

// Result is the outcome of processing one document.
type Result struct {
	FileName string
	Kind     file.Kind
	Method   file.Method
	chunking.ChunkSet
	Elapsed time.Duration
}

// Client runs the document pipeline: extract, validate, chunk, assemble.
// Chunkers are shared across calls through a bounded cache; everything else
// lives for one call.
type Client struct {
	extractor Extractor
	chunkers  *chunking.Cache
	strategy  string
	logger    *zap.Logger
}

// NewClient creates a pipeline client. An empty strategy selects the
// recursive character chunker.
func NewClient(extractor Extractor, chunkers *chunking.Cache, strategy string, logger *zap.Logger) *Client {
	return &Client{
		extractor: extractor,
		chunkers:  chunkers,
		strategy:  strategy,
		logger:    logger,
	}
}

// Extract runs extraction and validation only.
func (c *Client) Extract(doc file.Document) (*file.ExtractedText, error) {
	return c.extractor.Extract(doc)
}

// Chunk splits text with the configured strategy and numbers the chunks from 1.
func (c *Client) Chunk(text string, chunkSize, overlap int) ([]chunking.Chunk, error) {
	set, err := c.chunk(text, c.config(chunkSize, overlap))
	if err != nil {
		return nil, err
	}
	return set.Chunks, nil
}

// Process extracts and chunks doc. The chunk configuration is checked before
// any parsing so a bad request never pays for extraction.
func (c *Client) Process(doc file.Document, chunkSize, overlap int) (*Result, error) {
	cfg := c.config(chunkSize, overlap)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	extracted, err := c.extractor.Extract(doc)
	if err != nil {
		c.logger.Warn("Extraction failed",
			zap.String("file_name", doc.Filename),
			zap.Error(err))
		return nil, err
	}

	set, err := c.chunk(extracted.Text, cfg)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	c.logger.Info("Document processed",
		zap.String("file_name", doc.Filename),
		zap.String("kind", string(extracted.Kind)),
		zap.String("method", string(extracted.Method)),
		zap.Int("text_length", len(extracted.Text)),
		zap.Int("chunk_size", chunkSize),
		zap.Int("overlap", overlap),
		zap.Int("total_chunks", set.TotalChunks),
		zap.Duration("elapsed", elapsed))

	return &Result{
		FileName: doc.Filename,
		Kind:     extracted.Kind,
		Method:   extracted.Method,
		ChunkSet: set,
		Elapsed:  elapsed,
	}, nil
}

func (c *Client) config(chunkSize, overlap int) chunking.Config {
	return chunking.Config{ChunkSize: chunkSize, Overlap: overlap, Strategy: c.strategy}
}

func (c *Client) chunk(text string, cfg chunking.Config) (chunking.ChunkSet, error) {
	chunker, err := c.chunkers.Get(cfg)
	if err != nil {
		return chunking.ChunkSet{}, err
	}
	contents, err := chunker.ChunkText(text)
	if err != nil {
		return chunking.ChunkSet{}, err
	}
	return chunking.Assemble(contents), nil
}
