package intake

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/akolanti/lexintake/internal/domain/docModel"
	"github.com/akolanti/lexintake/pkg/logger_i"
)

var log = logger_i.NewLogger("intake")

// extensionTable maps lowercase extensions (without dot) to their category.
// Anything absent is unsupported and still gets routed so the failure is
// visible in the document tree.
var extensionTable = map[string]docModel.FileType{
	"pdf":  docModel.FileTypeDocument,
	"docx": docModel.FileTypeDocument,
	"pptx": docModel.FileTypeDocument,

	"csv":  docModel.FileTypeTabular,
	"xlsx": docModel.FileTypeTabular,
	"xls":  docModel.FileTypeTabular,

	"txt":      docModel.FileTypePlaintext,
	"md":       docModel.FileTypePlaintext,
	"markdown": docModel.FileTypePlaintext,

	"jpg":  docModel.FileTypeImage,
	"jpeg": docModel.FileTypeImage,
	"png":  docModel.FileTypeImage,
	"gif":  docModel.FileTypeImage,
	"bmp":  docModel.FileTypeImage,
	"tiff": docModel.FileTypeImage,
	"tif":  docModel.FileTypeImage,
	"avif": docModel.FileTypeImage,

	"mp3": docModel.FileTypeAudio,
	"wav": docModel.FileTypeAudio,
	"m4a": docModel.FileTypeAudio,
	"ogg": docModel.FileTypeAudio,
}

func DetectFileType(filename string) docModel.FileType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if t, ok := extensionTable[ext]; ok {
		return t
	}
	return docModel.FileTypeUnsupported
}

// DiscoverFiles lists regular files directly inside the intake folder,
// skipping dotfiles and subdirectories. Sorted for deterministic runs.
func DiscoverFiles(intakeDir string) ([]string, error) {
	entries, err := os.ReadDir(intakeDir)
	if err != nil {
		return nil, fmt.Errorf("reading intake folder: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(intakeDir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// RouteFile moves a discovered file into its own document folder under
// documentsDir. The folder name is the sanitized stem; on collision a
// numeric suffix is appended so two intake files never share a folder.
func RouteFile(path, documentsDir string) (*docModel.IntakeFile, error) {
	name := filepath.Base(path)
	stem := SanitizeFilename(name)

	docFolder := filepath.Join(documentsDir, stem)
	for i := 1; ; i++ {
		if _, err := os.Stat(docFolder); os.IsNotExist(err) {
			break
		}
		docFolder = filepath.Join(documentsDir, fmt.Sprintf("%s_%d", stem, i))
	}

	if err := os.MkdirAll(docFolder, 0755); err != nil {
		return nil, fmt.Errorf("creating document folder: %w", err)
	}

	dest := filepath.Join(docFolder, name)
	if err := os.Rename(path, dest); err != nil {
		// Cross-device moves fall back to copy+remove.
		if copyErr := copyFile(path, dest); copyErr != nil {
			return nil, fmt.Errorf("moving %s: %w", name, err)
		}
		if rmErr := os.Remove(path); rmErr != nil {
			log.Warn("could not remove source after copy", "path", path, "error", rmErr)
		}
	}

	return &docModel.IntakeFile{
		Path:             dest,
		OriginalFilename: name,
		DocFolder:        docFolder,
		FileType:         DetectFileType(name),
	}, nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
