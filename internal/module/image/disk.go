package image

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Disk stores uploaded files below a root directory.
type Disk struct {
	root string
}

// NewDisk returns a Disk rooted at root. The directory is created on the
// first Save.
func NewDisk(root string) *Disk {
	return &Disk{root: filepath.Clean(root)}
}

// Save writes data to a new file named <uuid><ext> in dir below the root
// and returns its path.
func (d *Disk) Save(dir, ext string, data []byte) (string, error) {
	target := filepath.Join(d.root, dir)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("image: create dir: %w", err)
	}
	path := filepath.Join(target, uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("image: write file: %w", err)
	}
	return path, nil
}

// Remove deletes a file written by Save. A missing file is not an error;
// a path outside the root is.
func (d *Disk) Remove(path string) error {
	rel, err := filepath.Rel(d.root, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("image: %q is outside %q", path, d.root)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("image: remove file: %w", err)
	}
	return nil
}
