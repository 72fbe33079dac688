package faces

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/dwe-corp/facial-auth/internal/imaging"
)

// Archive stores raw enrollment crops under <root>/<name>/<timestamp>.jpg.
// Files are append-only and never overwritten; nothing in the matcher ever
// reads them back. They exist for audit and debugging only.
type Archive struct {
	root string
}

// NewArchive creates an archive rooted at dir.
func NewArchive(dir string) *Archive {
	return &Archive{root: dir}
}

// SaveCrop writes one enrollment crop for the identity and returns the file
// path. A short random suffix keeps two enrollments within the same second
// from colliding.
func (a *Archive) SaveCrop(name string, crop image.Image) (string, error) {
	dir := filepath.Join(a.root, name)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	data, err := imaging.EncodeJPEG(crop)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%d_%s.jpg", time.Now().Unix(), uuid.NewString()[:8])
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// Remove deletes the identity's crops and their containing directory.
// Removing an identity that has no directory is a no-op.
func (a *Archive) Remove(name string) error {
	return os.RemoveAll(filepath.Join(a.root, name))
}
