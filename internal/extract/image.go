package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/lexintake/internal/config"
	"github.com/akolanti/lexintake/internal/domain/docModel"
	"github.com/akolanti/lexintake/internal/llm"
)

const imageDescriptionPrompt = `Describe this image in detail for a legal case file. ` +
	`Identify the kind of document or scene it shows, any visible people, objects, ` +
	`damage, locations, dates or identifying details. Be factual and specific; do not speculate.`

var imageMIMETypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"avif": "image/avif",
}

// extractImage combines provider OCR over the image with a vision
// description, so both printed text and visual content reach the summary
// prompt. OCR finding nothing is normal for photos and is not an error.
func (e *extractor) extractImage(ctx context.Context, file *docModel.IntakeFile, record *docModel.DocumentRecord) (string, error) {
	record.ExtractionMethod = "ocr+vision"
	record.Metadata.OCRUsed = true

	ocrText, err := e.imageOCRText(ctx, file.Path)
	if err != nil {
		log.Warn("image ocr failed, continuing with vision only", "file", file.OriginalFilename, "error", err)
		ocrText = ""
	}

	description, err := e.describeImage(ctx, file.Path)
	if err != nil {
		return "", fmt.Errorf("vision description: %w", err)
	}
	record.Metadata.Model = e.visionModel

	if strings.TrimSpace(ocrText) == "" {
		ocrText = "[No text detected in image]"
	}

	name := strings.TrimSuffix(file.OriginalFilename, filepath.Ext(file.OriginalFilename))
	return fmt.Sprintf("# Image Analysis: %s\n\n## Extracted Text (OCR)\n%s\n\n## Visual Description\n%s",
		name, ocrText, description), nil
}

func (e *extractor) imageOCRText(ctx context.Context, path string) (string, error) {
	uploadCtx, cancel := context.WithTimeout(ctx, config.UploadTimeout)
	fileID, err := e.ocrClient.UploadFile(uploadCtx, path, "ocr")
	cancel()
	if err != nil {
		return "", err
	}
	defer e.deleteUpload(fileID)

	signedURL, err := e.ocrClient.SignedURL(ctx, fileID)
	if err != nil {
		return "", err
	}

	ocrCtx, cancel := context.WithTimeout(ctx, config.OCRTimeout)
	defer cancel()
	result, err := e.ocrClient.ProcessDocument(ocrCtx, signedURL, -1)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, page := range result.Pages {
		if strings.TrimSpace(page.Markdown) != "" {
			parts = append(parts, page.Markdown)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (e *extractor) describeImage(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	mime, ok := imageMIMETypes[ext]
	if !ok {
		mime = "application/octet-stream"
	}

	visionCtx, cancel := context.WithTimeout(ctx, config.VisionTimeout)
	defer cancel()

	resp, err := e.provider.Generate(visionCtx, llm.Request{
		Model:  e.visionModel,
		Prompt: imageDescriptionPrompt,
		Image:  &llm.ImageInput{Data: data, MIMEType: mime},
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
