package chunking

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig matches every *InvalidConfigError via errors.Is.
var ErrInvalidConfig = errors.New("invalid chunking config")

// InvalidConfigError reports a chunk size / overlap pair that cannot be chunked with.
type InvalidConfigError struct {
	ChunkSize int
	Overlap   int
	Reason    string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid chunking config (chunk_size=%d, overlap=%d): %s", e.ChunkSize, e.Overlap, e.Reason)
}

func (e *InvalidConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
