package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/akolanti/lexintake/internal/config"
	"github.com/akolanti/lexintake/internal/domain/docModel"
)

// extractAudio transcribes a recording through the provider's speech model
// and renders the transcript as markdown.
func (e *extractor) extractAudio(ctx context.Context, file *docModel.IntakeFile, record *docModel.DocumentRecord) (string, error) {
	record.ExtractionMethod = "transcription"

	uploadCtx, cancel := context.WithTimeout(ctx, config.UploadTimeout)
	fileID, err := e.ocrClient.UploadFile(uploadCtx, file.Path, "audio")
	cancel()
	if err != nil {
		return "", err
	}
	defer e.deleteUpload(fileID)

	signedURL, err := e.ocrClient.SignedURL(ctx, fileID)
	if err != nil {
		return "", err
	}

	trCtx, cancel := context.WithTimeout(ctx, config.TranscriptionTimeout)
	defer cancel()
	tr, err := e.ocrClient.Transcribe(trCtx, signedURL)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(tr.Text) == "" {
		return "", fmt.Errorf("transcription returned no text")
	}

	model := tr.Model
	if model == "" {
		model = config.TranscriptionModel
	}
	record.Metadata.Model = model
	record.Metadata.Language = tr.Language

	name := strings.TrimSuffix(file.OriginalFilename, filepath.Ext(file.OriginalFilename))
	return fmt.Sprintf("# Audio Transcription: %s\n\n**Model:** %s\n**Language:** %s\n\n## Transcription\n%s",
		name, model, tr.Language, tr.Text), nil
}
