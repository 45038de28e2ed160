package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes images below Dir and serves them under URLPrefix.
type LocalStore struct {
	Dir       string
	URLPrefix string
}

func NewLocalStore(dir, urlPrefix string) *LocalStore {
	return &LocalStore{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	full := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path.Join(s.URLPrefix, key), nil
}

// Delete removes the file behind ref. Refs outside URLPrefix are ignored.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, s.URLPrefix+"/")
	if !ok || strings.Contains(key, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.Dir, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove image: %w", err)
	}
	return nil
}
