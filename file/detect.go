package file

import (
	"mime"
	"path/filepath"
	"strings"
)

// Zip and generic binary uploads are treated as EPUB candidates; the archive
// contents are not inspected.
var declaredKinds = map[string]Kind{
	"application/pdf":              KindPDF,
	"application/epub+zip":         KindEPUB,
	"application/zip":              KindEPUB,
	"application/x-zip-compressed": KindEPUB,
	"application/octet-stream":     KindEPUB,
}

var extensionKinds = map[string]Kind{
	".pdf":  KindPDF,
	".epub": KindEPUB,
}

// DetectKind classifies a document by its declared content type, falling back
// to the filename extension. Both comparisons ignore case, and content type
// parameters such as charset are ignored.
func DetectKind(declaredType, filename string) (Kind, error) {
	if kind, ok := declaredKinds[normalizeMediaType(declaredType)]; ok {
		return kind, nil
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if kind, ok := extensionKinds[ext]; ok {
		return kind, nil
	}

	return "", &UnsupportedFormatError{DeclaredType: declaredType, Extension: ext}
}

func normalizeMediaType(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(s); err == nil {
		return mediaType
	}
	return strings.ToLower(s)
}
