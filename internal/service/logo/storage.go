package logo

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// diskStorage writes logo files under <dir>/logos and serves them at
// /uploads/logos/<name>.
type diskStorage struct {
	dir string
}

func NewDiskStorage(dir string) (Storage, error) {
	logoDir := filepath.Join(dir, "logos")
	if err := os.MkdirAll(logoDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &diskStorage{dir: logoDir}, nil
}

func (d *diskStorage) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String() + ext

	f, err := os.Create(filepath.Join(d.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path.Join("/uploads/logos", name), nil
}

func (d *diskStorage) Remove(ctx context.Context, url string) error {
	name := path.Base(url)
	if err := os.Remove(filepath.Join(d.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
