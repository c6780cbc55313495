package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Disk stores uploads in a local directory. Suitable for single-instance
// deployments and development.
type Disk struct {
	dir string
}

// NewDisk creates a disk-backed store rooted at dir, creating it if needed.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %q: %w", dir, err)
	}
	return &Disk{dir: dir}, nil
}

// Save writes the content to a file under the store's directory.
// The name is flattened to its base to keep writes inside the directory.
func (d *Disk) Save(ctx context.Context, name string, data []byte) (string, error) {
	path := filepath.Join(d.dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload %q: %w", path, err)
	}
	return path, nil
}

var _ Store = (*Disk)(nil)
