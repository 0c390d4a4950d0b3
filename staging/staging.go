// Package staging copies an upload into a temporary file owned by one request.
package staging

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// File is an upload staged on local disk.
type File struct {
	ID     string
	Name   string
	Path   string
	Size   int64
	SHA256 string
}

// Stage copies src into a new file under dir (the system temp dir when dir is
// empty). The original extension is kept so external tools can sniff the
// container. Nothing is left on disk when staging fails.
func Stage(src io.Reader, dir, name string) (*File, error) {
	if dir != "" {
		if err := ensureDirectory(dir); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(name))
	dst, err := os.CreateTemp(dir, "upload-"+id+"-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(dst, hasher), src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst.Name())
		return nil, fmt.Errorf("failed to copy upload %s: %w", name, err)
	}

	return &File{
		ID:     id,
		Name:   filepath.Base(name),
		Path:   dst.Name(),
		Size:   n,
		SHA256: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Remove deletes the staged copy. Removing twice is not an error.
func (f *File) Remove() error {
	if f == nil {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// HumanSize renders the staged size for people: "1.2 MB".
func (f *File) HumanSize() string {
	return humanize.Bytes(uint64(f.Size))
}

// ensureDirectory creates a directory if it doesn't exist
func ensureDirectory(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}
