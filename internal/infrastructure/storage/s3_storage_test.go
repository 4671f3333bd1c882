package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ecsledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func baseS3Config() *config.StorageConfig {
	return &config.StorageConfig{
		Bucket:       "ecs-documents",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	}
}

func TestNewS3ObjectStorage(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewS3ObjectStorage(nil)
		assert.Error(t, err)
	})

	t.Run("required fields", func(t *testing.T) {
		for name, mutate := range map[string]func(*config.StorageConfig){
			"bucket":     func(c *config.StorageConfig) { c.Bucket = "" },
			"access key": func(c *config.StorageConfig) { c.AccessKey = "" },
			"secret key": func(c *config.StorageConfig) { c.SecretKey = "" },
		} {
			cfg := baseS3Config()
			mutate(cfg)
			_, err := NewS3ObjectStorage(cfg)
			require.Error(t, err, name)
			assert.Contains(t, err.Error(), name)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		cfg := baseS3Config()
		cfg.Endpoint = ""
		s, err := NewS3ObjectStorage(cfg, WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000", s.endpoint)
		assert.Equal(t, 15*time.Minute, s.presignExpiration)
		assert.Equal(t, "ecs-documents", s.Bucket())
	})

	t.Run("presign option", func(t *testing.T) {
		s, err := NewS3ObjectStorage(baseS3Config(), WithPresignExpiration(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestNormalizeEndpoint(t *testing.T) {
	got, err := normalizeEndpoint("minio:9000", false)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000", got)

	got, err = normalizeEndpoint("s3.example.com/", true)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com", got)
}

func TestS3ObjectStorage_PublicURL(t *testing.T) {
	t.Run("path style", func(t *testing.T) {
		s, err := NewS3ObjectStorage(baseS3Config())
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/ecs-documents/companies/1/a.pdf", s.PublicURL("companies/1/a.pdf"))
	})

	t.Run("virtual host style", func(t *testing.T) {
		cfg := baseS3Config()
		cfg.Endpoint = "https://s3.example.com"
		cfg.UsePathStyle = false
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://ecs-documents.s3.example.com/a.pdf", s.PublicURL("a.pdf"))
	})

	t.Run("base url wins", func(t *testing.T) {
		cfg := baseS3Config()
		cfg.BaseURL = "https://cdn.example.com/docs/"
		s, err := NewS3ObjectStorage(cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/docs/a.pdf", s.PublicURL("a.pdf"))
	})
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(baseS3Config())
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = s.GenerateDownloadURL(ctx, "", time.Minute)
	assert.ErrorIs(t, err, errEmptyKey)

	link, expiresAt, err := s.GenerateDownloadURL(ctx, "packages/2/invoice.pdf", 0)
	require.NoError(t, err)
	assert.True(t, strings.Contains(link, "localhost:9000"))
	assert.True(t, strings.Contains(link, "ecs-documents"))
	assert.Contains(t, link, "X-Amz-Signature")
	assert.True(t, expiresAt.After(time.Now()))
}

func TestS3ObjectStorage_EmptyKey(t *testing.T) {
	s, err := NewS3ObjectStorage(baseS3Config())
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, s.Upload(ctx, "", strings.NewReader("x"), 1, "text/plain"), errEmptyKey)
	assert.ErrorIs(t, s.DeleteObject(ctx, ""), errEmptyKey)
}
