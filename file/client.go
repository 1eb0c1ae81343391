package file

// Kind identifies a supported document format.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindEPUB Kind = "epub"
)

// Method records which extraction path produced the text.
type Method string

const (
	MethodStructured Method = "structured"
	MethodFallback   Method = "fallback"
)

// Document is an uploaded file as received, before any parsing.
type Document struct {
	Data         []byte
	DeclaredType string
	Filename     string
}

// ExtractedText is the plain text of one document and how it was obtained.
type ExtractedText struct {
	Text   string `json:"text"`
	Kind   Kind   `json:"kind"`
	Method Method `json:"method"`
	// Units counts pages for PDFs and content documents for EPUBs.
	Units   int `json:"units"`
	Skipped int `json:"skipped,omitempty"`
}

// TextExtractor turns the raw bytes of one document format into plain text.
type TextExtractor interface {
	Extract(data []byte) (*ExtractedText, error)
}
