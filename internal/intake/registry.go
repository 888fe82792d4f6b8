package intake

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/akolanti/lexintake/internal/config"
)

var (
	nonAlnum    = regexp.MustCompile(`[^a-z0-9_-]`)
	underscores = regexp.MustCompile(`_+`)
)

// SanitizeFilename turns an original filename into a filesystem-safe stem:
// extension stripped, lowercased, disallowed runes replaced with
// underscores, runs of underscores collapsed, trimmed, and truncated.
func SanitizeFilename(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = strings.ToLower(stem)
	stem = nonAlnum.ReplaceAllString(stem, "_")
	stem = underscores.ReplaceAllString(stem, "_")
	stem = strings.Trim(stem, "_")
	if stem == "" {
		stem = "document"
	}
	if len(stem) > config.SanitizedNameMaxLen {
		stem = stem[:config.SanitizedNameMaxLen]
	}
	return stem
}

// Registry hands out unique names inside the centralized extraction folder.
// Collisions get _1, _2, ... suffixes in claim order. Uniqueness holds
// across runs: names already present on disk from an earlier extraction are
// never reissued. Safe for concurrent use by the extraction pool.
type Registry struct {
	mu      sync.Mutex
	dir     string
	claimed map[string]bool
}

func NewRegistry(dir string) *Registry {
	return &Registry{
		dir:     dir,
		claimed: make(map[string]bool),
	}
}

// CentralizedName claims a unique "<stem>.txt" name for an original
// filename. The first free candidate wins, skipping both names claimed this
// run and files a previous run left in the folder.
func (r *Registry) CentralizedName(originalFilename string) string {
	stem := SanitizeFilename(originalFilename)

	r.mu.Lock()
	defer r.mu.Unlock()

	for n := 0; ; n++ {
		name := stem + ".txt"
		if n > 0 {
			name = fmt.Sprintf("%s_%d.txt", stem, n)
		}
		if r.claimed[name] {
			continue
		}
		if _, err := os.Stat(filepath.Join(r.dir, name)); err == nil {
			continue
		}
		r.claimed[name] = true
		return name
	}
}
