package knowledge

import (
	"fmt"
	"os"
)

// Source provides the raw text of the knowledge document. The
// document-to-text extraction step is a collaborator behind this interface;
// the knowledge loader only ever sees a text blob.
type Source interface {
	Text() (string, error)
}

// FileSource reads the knowledge document from a plain-text file.
type FileSource struct {
	Path string
}

// NewFileSource creates a file-backed knowledge source.
func NewFileSource(path string) FileSource {
	return FileSource{Path: path}
}

// Text returns the document contents. A missing file is an error the
// caller must treat as fatal at startup.
func (s FileSource) Text() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", fmt.Errorf("read knowledge source %s: %w", s.Path, err)
	}
	return string(data), nil
}
