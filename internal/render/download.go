package render

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileDownloader writes documents into a directory.
type FileDownloader struct {
	dir string
}

// NewFileDownloader returns a downloader that writes into dir, creating it
// on first use.
func NewFileDownloader(dir string) *FileDownloader {
	return &FileDownloader{dir: dir}
}

// Save writes data to dir/filename and returns the path. Only the base name
// of filename is used.
func (d *FileDownloader) Save(filename string, data []byte) (string, error) {
	name := filepath.Base(filepath.Clean(filename))
	if name == "." || name == string(filepath.Separator) || name == ".." {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(d.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
