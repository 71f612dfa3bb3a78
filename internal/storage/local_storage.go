package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"mutuelle-membership/internal/logger"
	"mutuelle-membership/internal/security"
)

// LocalStorage implements DocumentStorage on the local filesystem. Download
// links carry a signed token naming the key, served by the document handler.
type LocalStorage struct {
	baseURL string // Server URL (e.g., "http://localhost:8080")
	rootDir string
	tokens  security.TokenManager
}

// NewLocalStorage creates the root directory if needed.
func NewLocalStorage(baseURL, rootDir string, tokens security.TokenManager) (*LocalStorage, error) {
	if err := os.MkdirAll(rootDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create document directory: %w", err)
	}
	return &LocalStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		rootDir: rootDir,
		tokens:  tokens,
	}, nil
}

// Save writes to a temporary file first so readers never see partial content.
func (s *LocalStorage) Save(ctx context.Context, key string, data []byte) error {
	fullPath, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return fmt.Errorf("failed to store file: %w", err)
	}

	logger.Debug("Document stored", "key", key, "size", len(data))
	return nil
}

func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	fullPath, err := s.pathFor(key)
	if err != nil {
		return nil, 0, err
	}
	file, err := os.Open(fullPath)
	if os.IsNotExist(err) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, err
	}
	return file, info.Size(), nil
}

func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := s.pathFor(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(fullPath)
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStorage) DownloadURL(key, requestID string, ttl time.Duration) (string, error) {
	if _, err := s.pathFor(key); err != nil {
		return "", err
	}
	token, err := s.tokens.GenerateDownloadToken(key, requestID, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to sign download link: %w", err)
	}
	return fmt.Sprintf("%s/api/v1/documents/%s", s.baseURL, token), nil
}

// pathFor maps a key to a path inside rootDir, refusing keys that escape it.
func (s *LocalStorage) pathFor(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	clean := path.Clean(key)
	if clean != key || clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.rootDir, filepath.FromSlash(clean)), nil
}
