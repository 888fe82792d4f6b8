package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	dslipak "github.com/dslipak/pdf"

	"github.com/akolanti/lexintake/internal/config"
	"github.com/akolanti/lexintake/internal/domain/docModel"
	"github.com/akolanti/lexintake/internal/ocr"
)

// extractDocument runs a pdf, docx or pptx through the OCR provider. The
// upload is deleted afterwards whether or not OCR succeeded.
func (e *extractor) extractDocument(ctx context.Context, file *docModel.IntakeFile, record *docModel.DocumentRecord) (string, error) {
	record.ExtractionMethod = "ocr"
	record.Metadata.OCRUsed = true

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Path), "."))
	if ext == "pdf" {
		if n, err := localPDFPageCount(file.Path); err == nil {
			record.Metadata.PageCount = n
		}
	}

	uploadCtx, cancel := context.WithTimeout(ctx, config.UploadTimeout)
	fileID, err := e.ocrClient.UploadFile(uploadCtx, file.Path, "ocr")
	cancel()
	if err != nil {
		return "", err
	}
	defer e.deleteUpload(fileID)

	signedURL, err := e.ocrClient.SignedURL(ctx, fileID)
	if err != nil {
		return "", err
	}

	// Office formats choke the provider when embedded images are expanded,
	// so they request zero images. PDFs take the provider default.
	imageLimit := -1
	if ext == "docx" || ext == "pptx" {
		imageLimit = 0
	}

	ocrCtx, cancel := context.WithTimeout(ctx, config.OCRTimeout)
	result, err := e.ocrClient.ProcessDocument(ocrCtx, signedURL, imageLimit)
	cancel()
	if err != nil {
		return "", err
	}
	if len(result.Pages) == 0 {
		return "", fmt.Errorf("ocr returned no pages")
	}

	record.Metadata.PageCount = len(result.Pages)
	record.Metadata.Model = config.OCRModelName
	return assemblePages(result.Pages), nil
}

// assemblePages joins OCR pages with 1-based page markers. Downstream
// prompts and the verification pass rely on this exact layout.
func assemblePages(pages []ocr.Page) string {
	var b strings.Builder
	for i, page := range pages {
		fmt.Fprintf(&b, "--- Page %d ---\n", i+1)
		b.WriteString(page.Markdown)
		b.WriteString("\n\n")
	}
	return b.String()
}

// localPDFPageCount reads the page count from the file itself so the
// metadata survives even when the OCR call later fails. The parser panics on
// some malformed files, hence the recover.
func localPDFPageCount(path string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parse panic: %v", r)
		}
	}()
	r, err := dslipak.Open(path)
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

func (e *extractor) deleteUpload(fileID string) {
	ctx, cancel := context.WithTimeout(context.Background(), config.UploadTimeout)
	defer cancel()
	if err := e.ocrClient.DeleteFile(ctx, fileID); err != nil {
		log.Warn("upload cleanup failed", "file_id", fileID, "error", err)
	}
}
