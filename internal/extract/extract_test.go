package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/lexintake/internal/domain/docModel"
	"github.com/akolanti/lexintake/internal/intake"
	"github.com/akolanti/lexintake/internal/llm"
	"github.com/akolanti/lexintake/internal/ocr"
)

type fakeOCRClient struct {
	pages         []ocr.Page
	transcription *ocr.Transcription
	uploadErr     error
	deleted       []string
}

func (f *fakeOCRClient) UploadFile(ctx context.Context, path, purpose string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "file-123", nil
}

func (f *fakeOCRClient) SignedURL(ctx context.Context, fileID string) (string, error) {
	return "https://signed.example/" + fileID, nil
}

func (f *fakeOCRClient) ProcessDocument(ctx context.Context, documentURL string, imageLimit int) (*ocr.Result, error) {
	return &ocr.Result{Pages: f.pages, Model: "test-ocr"}, nil
}

func (f *fakeOCRClient) Transcribe(ctx context.Context, fileURL string) (*ocr.Transcription, error) {
	if f.transcription == nil {
		return nil, errors.New("no transcription configured")
	}
	return f.transcription, nil
}

func (f *fakeOCRClient) DeleteFile(ctx context.Context, fileID string) error {
	f.deleted = append(f.deleted, fileID)
	return nil
}

type fakeProvider struct {
	text string
	err  error
}

func (f *fakeProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Text: f.text}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func newTestExtractor(t *testing.T, ocrClient ocr.Client, provider llm.Provider) (Extractor, string) {
	t.Helper()
	centralized := filepath.Join(t.TempDir(), "full_text_extractions")
	return NewExtractor(ocrClient, provider, "test-vision", intake.NewRegistry(centralized), centralized), centralized
}

func routedFile(t *testing.T, name, content string) *docModel.IntakeFile {
	t.Helper()
	folder := t.TempDir()
	path := filepath.Join(folder, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return &docModel.IntakeFile{
		Path:             path,
		OriginalFilename: name,
		DocFolder:        folder,
		FileType:         intake.DetectFileType(name),
	}
}

func TestAssemblePages(t *testing.T) {
	pages := []ocr.Page{
		{Index: 0, Markdown: "first page"},
		{Index: 1, Markdown: "second page"},
		{Index: 2, Markdown: "third page"},
	}
	want := "--- Page 1 ---\nfirst page\n\n--- Page 2 ---\nsecond page\n\n--- Page 3 ---\nthird page\n\n"
	if got := assemblePages(pages); got != want {
		t.Errorf("assemblePages = %q, want %q", got, want)
	}
}

func TestMarkdownTable(t *testing.T) {
	rows := [][]string{
		{"Name", "Amount"},
		{"Rent | deposit", "1200"},
		{"Utilities"},
	}
	got := markdownTable(rows)

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), got)
	}
	if lines[0] != "| Name | Amount |" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "| --- | --- |" {
		t.Errorf("separator = %q", lines[1])
	}
	if !strings.Contains(lines[2], `Rent \| deposit`) {
		t.Errorf("pipe not escaped: %q", lines[2])
	}
	if lines[3] != "| Utilities |  |" {
		t.Errorf("ragged row not padded: %q", lines[3])
	}
}

func TestExtractCSV(t *testing.T) {
	file := routedFile(t, "Expenses Ledger.csv", "item,cost\nrent,1200\nfood,300\n")
	e, centralized := newTestExtractor(t, &fakeOCRClient{}, &fakeProvider{})

	record := e.Extract(context.Background(), file)
	if !record.Success {
		t.Fatalf("extraction failed: %s", record.Error)
	}
	if record.Metadata.Rows != 3 || record.Metadata.Columns != 2 {
		t.Errorf("metadata = %d rows, %d cols", record.Metadata.Rows, record.Metadata.Columns)
	}

	data, err := os.ReadFile(filepath.Join(file.DocFolder, docModel.FullTextFileName))
	if err != nil {
		t.Fatalf("missing extraction artifact: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "# CSV Data: Expenses Ledger\n\n**Rows:** 3\n**Columns:** 2\n\n## Data\n\n") {
		t.Errorf("unexpected csv header:\n%s", text)
	}

	if record.CentralizedCopy != filepath.Join(centralized, "expenses_ledger.txt") {
		t.Errorf("centralized copy = %q", record.CentralizedCopy)
	}
	if _, err := os.Stat(record.CentralizedCopy); err != nil {
		t.Errorf("centralized copy not written: %v", err)
	}
}

func TestExtractDocumentPageMarkers(t *testing.T) {
	file := routedFile(t, "brief.pdf", "%PDF-fake")
	fake := &fakeOCRClient{pages: []ocr.Page{
		{Index: 0, Markdown: "intro"},
		{Index: 1, Markdown: "argument"},
	}}
	e, _ := newTestExtractor(t, fake, &fakeProvider{})

	record := e.Extract(context.Background(), file)
	if !record.Success {
		t.Fatalf("extraction failed: %s", record.Error)
	}
	if record.Metadata.PageCount != 2 {
		t.Errorf("page count = %d", record.Metadata.PageCount)
	}
	if len(fake.deleted) != 1 {
		t.Errorf("upload not cleaned up, deletions = %v", fake.deleted)
	}

	data, _ := os.ReadFile(filepath.Join(file.DocFolder, docModel.FullTextFileName))
	want := "--- Page 1 ---\nintro\n\n--- Page 2 ---\nargument\n\n"
	if string(data) != want {
		t.Errorf("artifact = %q, want %q", string(data), want)
	}
}

func TestExtractImageNoTextDetected(t *testing.T) {
	file := routedFile(t, "damage photo.jpg", "jpegbytes")
	fake := &fakeOCRClient{pages: []ocr.Page{{Index: 0, Markdown: "   "}}}
	provider := &fakeProvider{text: "A dented car door."}
	e, _ := newTestExtractor(t, fake, provider)

	record := e.Extract(context.Background(), file)
	if !record.Success {
		t.Fatalf("extraction failed: %s", record.Error)
	}

	data, _ := os.ReadFile(filepath.Join(file.DocFolder, docModel.FullTextFileName))
	text := string(data)
	if !strings.Contains(text, "# Image Analysis: damage photo") {
		t.Errorf("missing heading:\n%s", text)
	}
	if !strings.Contains(text, "[No text detected in image]") {
		t.Errorf("missing no-text placeholder:\n%s", text)
	}
	if !strings.Contains(text, "## Visual Description\nA dented car door.") {
		t.Errorf("missing description:\n%s", text)
	}
}

func TestExtractImageVisionFailure(t *testing.T) {
	file := routedFile(t, "scan.png", "pngbytes")
	e, _ := newTestExtractor(t, &fakeOCRClient{}, &fakeProvider{err: llm.ErrVisionUnsupported})

	record := e.Extract(context.Background(), file)
	if record.Success {
		t.Fatal("expected failure when vision backend is unavailable")
	}
	if !strings.Contains(record.Error, "vision") {
		t.Errorf("error = %q", record.Error)
	}
}

func TestExtractAudio(t *testing.T) {
	file := routedFile(t, "client call.mp3", "mp3bytes")
	fake := &fakeOCRClient{transcription: &ocr.Transcription{
		Model:    "voxtral-mini-latest",
		Text:     "I never received the notice.",
		Language: "en",
	}}
	e, _ := newTestExtractor(t, fake, &fakeProvider{})

	record := e.Extract(context.Background(), file)
	if !record.Success {
		t.Fatalf("extraction failed: %s", record.Error)
	}
	if record.Metadata.Language != "en" {
		t.Errorf("language = %q", record.Metadata.Language)
	}

	data, _ := os.ReadFile(filepath.Join(file.DocFolder, docModel.FullTextFileName))
	text := string(data)
	if !strings.HasPrefix(text, "# Audio Transcription: client call\n\n**Model:** voxtral-mini-latest\n**Language:** en\n\n## Transcription\n") {
		t.Errorf("unexpected transcript layout:\n%s", text)
	}
}

func TestExtractPlaintextKeepsOriginalAsSource(t *testing.T) {
	file := routedFile(t, "timeline notes.txt", "March 3: lease signed.\n")
	e, centralized := newTestExtractor(t, &fakeOCRClient{}, &fakeProvider{})

	record := e.Extract(context.Background(), file)
	if !record.Success {
		t.Fatalf("extraction failed: %s", record.Error)
	}

	if _, err := os.Stat(filepath.Join(file.DocFolder, docModel.FullTextFileName)); !os.IsNotExist(err) {
		t.Error("plaintext should not produce a per-document extraction artifact")
	}
	data, err := os.ReadFile(filepath.Join(centralized, "timeline_notes.txt"))
	if err != nil {
		t.Fatalf("centralized copy missing: %v", err)
	}
	if string(data) != "March 3: lease signed.\n" {
		t.Errorf("centralized content = %q", string(data))
	}
}

func TestExtractUnsupported(t *testing.T) {
	file := routedFile(t, "archive.zip", "zipbytes")
	e, _ := newTestExtractor(t, &fakeOCRClient{}, &fakeProvider{})

	record := e.Extract(context.Background(), file)
	if record.Success {
		t.Fatal("expected unsupported file to fail")
	}
	if !strings.Contains(record.Error, "unsupported file type") {
		t.Errorf("error = %q", record.Error)
	}
}
