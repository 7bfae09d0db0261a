package output

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/cannon-dev/cannon/internal/errors"
	"github.com/cannon-dev/cannon/pkg/router"
)

// FileWriter writes documents into a directory.
type FileWriter struct {
	dir string
}

// NewFileWriter creates a writer for dir. The directory is created on the
// first write.
func NewFileWriter(dir string) *FileWriter {
	return &FileWriter{dir: dir}
}

// Path returns the destination of doc.
func (w *FileWriter) Path(doc *router.Document) string {
	return filepath.Join(w.dir, doc.FileName())
}

// Write implements Writer. The file is replaced atomically.
func (w *FileWriter) Write(ctx context.Context, doc *router.Document) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	path := w.Path(doc)
	if existing, err := os.ReadFile(path); err == nil && sameContent(existing, doc) {
		return Result{Location: path, Unchanged: true}, nil
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return Result{}, errors.New("E150").Wrap(err).WithDetail(w.dir)
	}

	tmp, err := os.CreateTemp(w.dir, "."+doc.Name+"-*.tmp")
	if err != nil {
		return Result{}, errors.New("E150").Wrap(err).WithDetail(path)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(doc.Source); err != nil {
		tmp.Close()
		return Result{}, errors.New("E150").Wrap(err).WithDetail(path)
	}
	if err := tmp.Close(); err != nil {
		return Result{}, errors.New("E150").Wrap(err).WithDetail(path)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return Result{}, errors.New("E150").Wrap(err).WithDetail(path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return Result{}, errors.New("E150").Wrap(err).WithDetail(path)
	}

	return Result{Location: path}, nil
}

func sameContent(existing []byte, doc *router.Document) bool {
	if doc.Checksum == "" {
		return bytes.Equal(existing, []byte(doc.Source))
	}
	sum := sha256.Sum256(existing)
	return hex.EncodeToString(sum[:]) == doc.Checksum
}
