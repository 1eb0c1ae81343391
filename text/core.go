package text

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDocument matches every *EmptyDocumentError via errors.Is.
var ErrEmptyDocument = errors.New("no text could be extracted from the document")

// EmptyDocumentError is returned when extraction succeeded but produced only whitespace.
type EmptyDocumentError struct {
	Kind   string
	Length int
}

func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("no text could be extracted from the %s document (%d characters, all whitespace)", e.Kind, e.Length)
}

func (e *EmptyDocumentError) Is(target error) bool {
	return target == ErrEmptyDocument
}

// Validate is the gate between extraction and chunking. Trimming is only used
// for the check; callers keep passing the original text along.
func Validate(kind, s string) error {
	if strings.TrimSpace(s) == "" {
		return &EmptyDocumentError{Kind: kind, Length: len(s)}
	}
	return nil
}
