// Package objectstore publishes generated assets.
package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"ProblemRadar/internal/domain"
	"ProblemRadar/internal/ports"
)

// Filesystem writes objects under a root directory and serves them below baseURL.
type Filesystem struct {
	root    string
	baseURL string
}

var _ ports.ObjectStorage = (*Filesystem)(nil)

// NewFilesystem creates the root directory if needed.
func NewFilesystem(root, baseURL string) (*Filesystem, error) {
	if root == "" {
		return nil, fmt.Errorf("storage dir is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Filesystem{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory objects are written to.
func (f *Filesystem) Root() string {
	return f.root
}

// Put writes data atomically and returns its public URL.
func (f *Filesystem) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: invalid object key %q", domain.ErrValidation, key)
	}
	rel := strings.TrimPrefix(clean, "/")
	target := filepath.Join(f.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp object: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("publish object: %w", err)
	}

	segments := strings.Split(rel, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return f.baseURL + "/" + strings.Join(segments, "/"), nil
}
