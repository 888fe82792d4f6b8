package intake

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/lexintake/internal/domain/docModel"
)

func TestDetectFileType(t *testing.T) {
	cases := []struct {
		name string
		want docModel.FileType
	}{
		{"brief.pdf", docModel.FileTypeDocument},
		{"slides.PPTX", docModel.FileTypeDocument},
		{"evidence.docx", docModel.FileTypeDocument},
		{"ledger.csv", docModel.FileTypeTabular},
		{"ledger.xlsx", docModel.FileTypeTabular},
		{"old_ledger.xls", docModel.FileTypeTabular},
		{"notes.txt", docModel.FileTypePlaintext},
		{"notes.md", docModel.FileTypePlaintext},
		{"notes.markdown", docModel.FileTypePlaintext},
		{"scan.JPG", docModel.FileTypeImage},
		{"scan.avif", docModel.FileTypeImage},
		{"call.mp3", docModel.FileTypeAudio},
		{"call.ogg", docModel.FileTypeAudio},
		{"archive.zip", docModel.FileTypeUnsupported},
		{"noextension", docModel.FileTypeUnsupported},
	}
	for _, c := range cases {
		if got := DetectFileType(c.name); got != c.want {
			t.Errorf("DetectFileType(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Motion to Dismiss.pdf", "motion_to_dismiss"},
		{"Exhibit A (final)!!.docx", "exhibit_a_final"},
		{"already-safe_name.txt", "already-safe_name"},
		{"___.pdf", "document"},
		{"résumé.pdf", "r_sum"},
	}
	for _, c := range cases {
		if got := SanitizeFilename(c.in); got != c.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	long := strings.Repeat("a", 300) + ".pdf"
	if got := SanitizeFilename(long); len(got) != 200 {
		t.Errorf("expected truncation to 200 chars, got %d", len(got))
	}
}

func TestRegistryCollisions(t *testing.T) {
	r := NewRegistry(t.TempDir())

	first := r.CentralizedName("Notes.txt")
	second := r.CentralizedName("notes.md")
	third := r.CentralizedName("NOTES.pdf")

	if first != "notes.txt" {
		t.Errorf("first claim = %q, want notes.txt", first)
	}
	if second != "notes_1.txt" {
		t.Errorf("second claim = %q, want notes_1.txt", second)
	}
	if third != "notes_2.txt" {
		t.Errorf("third claim = %q, want notes_2.txt", third)
	}
}

func TestRegistryNeverReissuesNamesFromEarlierRuns(t *testing.T) {
	dir := t.TempDir()

	// Artifacts a previous extraction run left behind.
	for _, name := range []string{"notes.txt", "notes_1.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("earlier run"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	r := NewRegistry(dir)
	if got := r.CentralizedName("Notes.txt"); got != "notes_2.txt" {
		t.Errorf("claim = %q, want notes_2.txt", got)
	}
	if got := r.CentralizedName("notes.md"); got != "notes_3.txt" {
		t.Errorf("claim = %q, want notes_3.txt", got)
	}

	data, err := os.ReadFile(filepath.Join(dir, "notes.txt"))
	if err != nil || string(data) != "earlier run" {
		t.Errorf("prior artifact changed: %q, %v", data, err)
	}
}

func TestClassifyDocumentType(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Motion_to_Compel.pdf", "Motion"},
		{"defendants_response.docx", "Response"},
		{"First Amended Complaint.pdf", "Complaint"},
		{"court_order_2024.pdf", "Order"},
		{"Notice of Hearing.pdf", "Notice"},
		{"Exhibit_B_receipt.png", "Evidence"},
		{"legal_research_statute.md", "Research"},
		{"random_scan.pdf", "Document"},
	}
	for _, c := range cases {
		if got := ClassifyDocumentType(c.name); got != c.want {
			t.Errorf("ClassifyDocumentType(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestDiscoverFiles(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"b.pdf", "a.txt", ".hidden", "c.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := DiscoverFiles(dir)
	if err != nil {
		t.Fatalf("DiscoverFiles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(files), files)
	}
	want := []string{"a.txt", "b.pdf", "c.csv"}
	for i, f := range files {
		if filepath.Base(f) != want[i] {
			t.Errorf("file %d = %q, want %q", i, filepath.Base(f), want[i])
		}
	}
}

func TestRouteFile(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "documents")

	src := filepath.Join(dir, "Motion to Dismiss.pdf")
	if err := os.WriteFile(src, []byte("pdf bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := RouteFile(src, docs)
	if err != nil {
		t.Fatalf("RouteFile: %v", err)
	}

	if f.DocFolder != filepath.Join(docs, "motion_to_dismiss") {
		t.Errorf("doc folder = %q", f.DocFolder)
	}
	if f.FileType != docModel.FileTypeDocument {
		t.Errorf("file type = %q", f.FileType)
	}
	if _, err := os.Stat(f.Path); err != nil {
		t.Errorf("moved file missing: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source should no longer exist")
	}

	// Second file with the same stem must land in a suffixed folder.
	src2 := filepath.Join(dir, "motion to dismiss.docx")
	if err := os.WriteFile(src2, []byte("docx bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	f2, err := RouteFile(src2, docs)
	if err != nil {
		t.Fatalf("RouteFile second: %v", err)
	}
	if f2.DocFolder != filepath.Join(docs, "motion_to_dismiss_1") {
		t.Errorf("collision folder = %q", f2.DocFolder)
	}
}
