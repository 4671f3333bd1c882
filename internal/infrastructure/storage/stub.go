package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	ledgerapp "github.com/ecsledger/backend/internal/application/ledger"
)

var _ ledgerapp.ObjectStorage = (*StubObjectStorage)(nil)

// StubObjectStorage writes documents to a local directory for development.
// The server exposes that directory under /static/uploads, so BaseURL
// should point there.
type StubObjectStorage struct {
	Dir     string
	BaseURL string
}

// NewStubObjectStorage creates a stub rooted at dir
func NewStubObjectStorage(dir, baseURL string) *StubObjectStorage {
	return &StubObjectStorage{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *StubObjectStorage) path(storageKey string) (string, error) {
	if storageKey == "" {
		return "", errEmptyKey
	}
	clean := filepath.Clean("/" + storageKey)
	if clean == "/" {
		return "", errors.New("invalid storage key")
	}
	return filepath.Join(s.Dir, filepath.FromSlash(clean)), nil
}

// Upload copies body to Dir/storageKey
func (s *StubObjectStorage) Upload(_ context.Context, storageKey string, body io.Reader, _ int64, _ string) error {
	p, err := s.path(storageKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return f.Close()
}

// DeleteObject removes Dir/storageKey
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	p, err := s.path(storageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// PublicURL returns BaseURL/storageKey
func (s *StubObjectStorage) PublicURL(storageKey string) string {
	return s.BaseURL + "/" + storageKey
}

// GenerateDownloadURL returns the public URL; local files need no signing
func (s *StubObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errEmptyKey
	}
	return s.PublicURL(storageKey), time.Now().Add(expiresIn), nil
}
