package ledger

import (
	"context"
	"io"
	"time"
)

// ObjectStorage stores document assets. It is implemented by the S3 and
// local stub backends in infrastructure/storage.
type ObjectStorage interface {
	// Upload writes body under storageKey
	Upload(ctx context.Context, storageKey string, body io.Reader, size int64, contentType string) error

	// DeleteObject removes the object. Missing objects are not an error.
	DeleteObject(ctx context.Context, storageKey string) error

	// PublicURL returns the stable URL recorded on the document
	PublicURL(storageKey string) string

	// GenerateDownloadURL returns a time-limited download URL and its expiry
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// Metrics receives ledger instrumentation events.
// telemetry.LedgerMetrics implements it.
type Metrics interface {
	RecordMutation(ctx context.Context, kind, operation string)
	RecordPropagationFailure(ctx context.Context, kind, level string)
	RecordStatsDuration(ctx context.Context, d time.Duration, err error)
}

// NopMetrics discards every event
type NopMetrics struct{}

func (NopMetrics) RecordMutation(context.Context, string, string)            {}
func (NopMetrics) RecordPropagationFailure(context.Context, string, string)  {}
func (NopMetrics) RecordStatsDuration(context.Context, time.Duration, error) {}

// Mutation operation labels
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)
