package extract

import (
	"fmt"
	"strings"

	"github.com/lu4p/cat"

	"github.com/akolanti/lexintake/internal/domain/docModel"
)

// extractPlaintext reads txt and markdown files directly. The original file
// stays the per-document source of truth; only the centralized folder gets
// a copy.
func (e *extractor) extractPlaintext(file *docModel.IntakeFile, record *docModel.DocumentRecord) (string, error) {
	record.ExtractionMethod = "direct"

	text, err := cat.File(file.Path)
	if err != nil {
		return "", fmt.Errorf("reading plaintext: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("file contains no text")
	}
	return text, nil
}
