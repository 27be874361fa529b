package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"trending_digest/internal/domain"
)

// Store writes one <date>.json file per digest under a data directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the digest and returns the file path. An existing file for the same date is replaced.
func (s *Store) Save(_ context.Context, digest *domain.Digest) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(digest); err != nil {
		return "", fmt.Errorf("encode digest: %w", err)
	}

	path := filepath.Join(s.dir, digest.Date+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("rename digest: %w", err)
	}

	return path, nil
}
