package chunking

import (
	"fmt"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"
)

// LangChainChunker delegates to langchaingo's recursive character splitter.
// Unlike RecursiveCharacterChunker it may trim whitespace at chunk edges and
// aligns overlap to whole splits rather than code point offsets.
type LangChainChunker struct {
	splitter *textsplitter.RecursiveCharacter
}

// NewLangChainChunker creates a new LangChainChunker.
func NewLangChainChunker(chunkSize, overlap int) (*LangChainChunker, error) {
	cfg := Config{ChunkSize: chunkSize, Overlap: overlap, Strategy: StrategyLangChain}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(overlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		textsplitter.WithLenFunc(utf8.RuneCountInString),
	)
	return &LangChainChunker{
		splitter: &splitter,
	}, nil
}

// ChunkText splits text with the langchaingo splitter.
func (c *LangChainChunker) ChunkText(text string) ([]string, error) {
	chunks, err := c.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("langchain split: %w", err)
	}

	out := chunks[:0]
	for _, chunk := range chunks {
		if chunk != "" {
			out = append(out, chunk)
		}
	}
	return out, nil
}
