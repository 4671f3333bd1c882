package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubObjectStorage(t *testing.T) {
	dir := t.TempDir()
	s := NewStubObjectStorage(dir, "http://localhost:8080/static/uploads/")
	ctx := context.Background()
	key := "packages/2/invoice.pdf"

	require.NoError(t, s.Upload(ctx, key, strings.NewReader("%PDF-1.4"), 8, "application/pdf"))

	data, err := os.ReadFile(filepath.Join(dir, "packages", "2", "invoice.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	assert.Equal(t, "http://localhost:8080/static/uploads/packages/2/invoice.pdf", s.PublicURL(key))

	link, _, err := s.GenerateDownloadURL(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, s.PublicURL(key), link)

	require.NoError(t, s.DeleteObject(ctx, key))
	_, err = os.Stat(filepath.Join(dir, "packages", "2", "invoice.pdf"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, s.DeleteObject(ctx, key), "second delete reports the missing file")
}

func TestStubObjectStorage_KeysStayInsideDir(t *testing.T) {
	dir := t.TempDir()
	s := NewStubObjectStorage(dir, "http://x")

	p, err := s.path("../../etc/passwd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, dir))

	_, err = s.path("")
	assert.ErrorIs(t, err, errEmptyKey)
	_, err = s.path("/")
	assert.Error(t, err)
}
