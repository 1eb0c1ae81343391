package chunking

// Chunk is one emitted piece of text with its 1-based position in the sequence.
type Chunk struct {
	ChunkID int    `json:"chunk_id"`
	Content string `json:"content"`
}

// ChunkSet is the ordered result of chunking a single document.
type ChunkSet struct {
	TotalChunks int     `json:"total_chunks"`
	Chunks      []Chunk `json:"chunks"`
}

// ChunkingClient splits text into ordered chunk contents.
type ChunkingClient interface {
	ChunkText(text string) ([]string, error)
}

const (
	StrategyRecursive = "recursive"
	StrategyLangChain = "langchain"
)

// Config selects a chunker. Strategy defaults to StrategyRecursive.
type Config struct {
	ChunkSize int    `json:"chunk_size" yaml:"chunk_size"`
	Overlap   int    `json:"overlap" yaml:"overlap"`
	Strategy  string `json:"strategy,omitempty" yaml:"strategy"`
}

// Validate rejects configurations the chunkers cannot run with. Nothing is clamped.
func (c Config) Validate() error {
	switch {
	case c.ChunkSize <= 0:
		return &InvalidConfigError{ChunkSize: c.ChunkSize, Overlap: c.Overlap, Reason: "chunk_size must be greater than zero"}
	case c.Overlap < 0:
		return &InvalidConfigError{ChunkSize: c.ChunkSize, Overlap: c.Overlap, Reason: "overlap cannot be negative"}
	case c.Overlap >= c.ChunkSize:
		return &InvalidConfigError{ChunkSize: c.ChunkSize, Overlap: c.Overlap, Reason: "overlap must be smaller than chunk_size"}
	}
	switch c.strategy() {
	case StrategyRecursive, StrategyLangChain:
		return nil
	default:
		return &InvalidConfigError{ChunkSize: c.ChunkSize, Overlap: c.Overlap, Reason: "unknown strategy " + c.Strategy}
	}
}

func (c Config) strategy() string {
	if c.Strategy == "" {
		return StrategyRecursive
	}
	return c.Strategy
}

// New builds the chunker named by cfg.Strategy.
func New(cfg Config) (ChunkingClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.strategy() == StrategyLangChain {
		return NewLangChainChunker(cfg.ChunkSize, cfg.Overlap)
	}
	return NewRecursiveCharacterChunker(cfg.ChunkSize, cfg.Overlap)
}
