package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/lexintake/internal/domain/docModel"
	"github.com/akolanti/lexintake/internal/intake"
	"github.com/akolanti/lexintake/internal/llm"
	"github.com/akolanti/lexintake/internal/metrics"
	"github.com/akolanti/lexintake/internal/ocr"
	"github.com/akolanti/lexintake/pkg/logger_i"
)

var log = logger_i.NewLogger("extract")

// Extractor turns a routed intake file into a document record with its text
// artifacts on disk. One extractor serves the whole pool; handlers keep no
// per-call state.
type Extractor interface {
	Extract(ctx context.Context, file *docModel.IntakeFile) *docModel.DocumentRecord
}

type extractor struct {
	ocrClient      ocr.Client
	provider       llm.Provider
	visionModel    string
	registry       *intake.Registry
	centralizedDir string
}

func NewExtractor(ocrClient ocr.Client, provider llm.Provider, visionModel string, registry *intake.Registry, centralizedDir string) Extractor {
	return &extractor{
		ocrClient:      ocrClient,
		provider:       provider,
		visionModel:    visionModel,
		registry:       registry,
		centralizedDir: centralizedDir,
	}
}

// Extract never returns an error; failures are captured on the record so
// the batch keeps going and the run report shows exactly what broke.
func (e *extractor) Extract(ctx context.Context, file *docModel.IntakeFile) *docModel.DocumentRecord {
	record := &docModel.DocumentRecord{
		FilePath:  file.Path,
		DocFolder: file.DocFolder,
		DocType:   intake.ClassifyDocumentType(file.OriginalFilename),
		FileType:  file.FileType,
	}

	var text string
	var err error

	switch file.FileType {
	case docModel.FileTypeDocument:
		text, err = e.extractDocument(ctx, file, record)
	case docModel.FileTypeImage:
		text, err = e.extractImage(ctx, file, record)
	case docModel.FileTypeAudio:
		text, err = e.extractAudio(ctx, file, record)
	case docModel.FileTypeTabular:
		text, err = e.extractTabular(file, record)
	case docModel.FileTypePlaintext:
		text, err = e.extractPlaintext(file, record)
	default:
		err = fmt.Errorf("unsupported file type: %s", filepath.Ext(file.OriginalFilename))
	}

	if err != nil {
		record.Success = false
		record.Error = err.Error()
		metrics.ExtractionsTotal.WithLabelValues(string(file.FileType), "failure").Inc()
		log.Error("extraction failed", "file", file.OriginalFilename, "error", err)
		return record
	}

	record.Metadata.CharacterCount = len(text)
	record.TextExtracted = strings.TrimSpace(text) != ""

	// Plaintext keeps its original file as the per-document source; every
	// other type gets a full text artifact next to the source file.
	if file.FileType != docModel.FileTypePlaintext {
		fullTextPath := filepath.Join(file.DocFolder, docModel.FullTextFileName)
		if err := os.WriteFile(fullTextPath, []byte(text), 0644); err != nil {
			record.Success = false
			record.Error = fmt.Sprintf("writing extraction artifact: %v", err)
			metrics.ExtractionsTotal.WithLabelValues(string(file.FileType), "failure").Inc()
			return record
		}
	}

	if copyPath, err := e.centralize(file.OriginalFilename, text); err != nil {
		log.Warn("centralized copy failed", "file", file.OriginalFilename, "error", err)
	} else {
		record.CentralizedCopy = copyPath
	}

	record.Success = true
	metrics.ExtractionsTotal.WithLabelValues(string(file.FileType), "success").Inc()
	log.Info("extracted", "file", file.OriginalFilename, "type", file.FileType,
		"method", record.ExtractionMethod, "chars", record.Metadata.CharacterCount)
	return record
}

// centralize writes the extracted text under the shared extraction folder
// using a registry-claimed unique name.
func (e *extractor) centralize(originalFilename, text string) (string, error) {
	if err := os.MkdirAll(e.centralizedDir, 0755); err != nil {
		return "", err
	}
	name := e.registry.CentralizedName(originalFilename)
	path := filepath.Join(e.centralizedDir, name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", err
	}
	return path, nil
}
