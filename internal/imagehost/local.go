package imagehost

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader writes images under a directory that the server exposes
// at /uploads/.
type LocalUploader struct {
	dir     string
	baseURL string
}

// NewLocalUploader creates the directory if needed. baseURL is the
// public origin of the server, e.g. http://localhost:8080.
func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory images are written to.
func (l *LocalUploader) Dir() string {
	return l.dir
}

func (l *LocalUploader) Upload(_ context.Context, name string, data []byte, _ string) (string, error) {
	abs, err := l.Path(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("creating image directory: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}
	return l.baseURL + "/uploads/" + filepath.ToSlash(name), nil
}

// Path resolves a stored image name to a file path, rejecting anything
// that would escape the upload directory.
func (l *LocalUploader) Path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("image name is required")
	}
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid image name: %s", name)
	}
	root, err := filepath.Abs(l.dir)
	if err != nil {
		return "", fmt.Errorf("resolving upload directory: %w", err)
	}
	abs := filepath.Join(root, cleaned)
	if !strings.HasPrefix(abs, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes upload directory")
	}
	return abs, nil
}
