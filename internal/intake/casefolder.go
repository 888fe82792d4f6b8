package intake

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindCaseFolder walks upward from the intake folder looking for the case
// root, identified by the step_1_interview directory. The intake folder's
// parent is assumed when nothing matches, so standalone runs still work.
func FindCaseFolder(intakeDir string) (string, error) {
	abs, err := filepath.Abs(intakeDir)
	if err != nil {
		return "", fmt.Errorf("resolving intake folder: %w", err)
	}

	dir := abs
	for {
		if info, err := os.Stat(filepath.Join(dir, "step_1_interview")); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return filepath.Dir(abs), nil
}
