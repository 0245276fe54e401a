package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/transpress"
)

// PreviewDir writes dry-run post previews with atomic update semantics.
// Previews are saved to a temporary directory, then moved atomically on
// Commit, so a directory never holds a partial run.
type PreviewDir struct {
	baseDir string
	name    string
}

// NewPreviewDir creates a new PreviewDir.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewPreviewDir(baseDir, name string) *PreviewDir {
	return &PreviewDir{
		baseDir: baseDir,
		name:    name,
	}
}

func (d *PreviewDir) tempDir() string {
	return filepath.Join(d.baseDir, d.name+".tmp")
}

func (d *PreviewDir) finalDir() string {
	return filepath.Join(d.baseDir, d.name)
}

// Save writes content as <slug>.md.
func (d *PreviewDir) Save(slug, content string) error {
	if slug == "" || strings.ContainsAny(slug, `/\`) || slug == "." || slug == ".." {
		return transpress.Errorf(transpress.EINVALID, "invalid preview name %q", slug)
	}
	if err := os.MkdirAll(d.tempDir(), 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.tempDir(), slug+".md"), []byte(content), 0644)
}

// Commit replaces the final directory with the saved previews.
func (d *PreviewDir) Commit() error {
	if _, err := os.Stat(d.tempDir()); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(d.finalDir()); err != nil {
		return err
	}
	return os.Rename(d.tempDir(), d.finalDir())
}

// Abort discards the saved previews.
func (d *PreviewDir) Abort() error {
	return os.RemoveAll(d.tempDir())
}
