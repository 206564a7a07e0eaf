package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Sink stores an uploaded file and returns a stable public URL for it.
// The media host is a collaborator; DiskSink is the default implementation.
type Sink interface {
	Store(ctx context.Context, name string, r io.Reader) (string, error)
}

// DiskSink writes uploads under a media directory and builds URLs from a
// configured host prefix.
type DiskSink struct {
	dir     string
	urlHost string
}

// NewDiskSink creates the media directory if needed.
func NewDiskSink(dir, urlHost string) (*DiskSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &DiskSink{dir: dir, urlHost: strings.TrimRight(urlHost, "/")}, nil
}

// Store streams the file to disk under a random name, keeping the original
// extension.
func (s *DiskSink) Store(_ context.Context, name string, r io.Reader) (string, error) {
	ext := filepath.Ext(name)
	stored := uuid.NewString() + ext

	f, err := os.Create(filepath.Join(s.dir, stored))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return s.urlHost + "/media/" + stored, nil
}
