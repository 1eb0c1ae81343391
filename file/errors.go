package file

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrExtraction        = errors.New("text extraction failed")
)

// UnsupportedFormatError is returned when neither the declared content type
// nor the file extension names PDF or EPUB.
type UnsupportedFormatError struct {
	DeclaredType string
	Extension    string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type (content type %q, extension %q): only PDF and EPUB files are supported",
		e.DeclaredType, e.Extension)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// ExtractionError reports a document that could not be parsed. Fallback is
// nil when no second strategy exists for the format.
type ExtractionError struct {
	Kind     Kind
	Primary  error
	Fallback error
}

func (e *ExtractionError) Error() string {
	if e.Fallback == nil {
		return fmt.Sprintf("error extracting text from %s: %v", e.Kind, e.Primary)
	}
	return fmt.Sprintf("error extracting text from %s: %v; fallback: %v", e.Kind, e.Primary, e.Fallback)
}

func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

func (e *ExtractionError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Primary != nil {
		errs = append(errs, e.Primary)
	}
	if e.Fallback != nil {
		errs = append(errs, e.Fallback)
	}
	return errs
}
