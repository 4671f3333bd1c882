package ledger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/domain/shared"
	"github.com/ecsledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	documentKind = "document"

	// maxStoredFileName keeps storage keys well inside their column
	maxStoredFileName = 200
)

// AllowedContentTypes is the upload whitelist. SVG is excluded because it
// can carry script.
var AllowedContentTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/plain":               true,
	"text/csv":                 true,
	"application/zip":          true,
	"application/octet-stream": true,
}

// DocumentServiceConfig holds configuration for the document service
type DocumentServiceConfig struct {
	MaxUploadSize     int64
	DownloadURLExpiry time.Duration
}

// DefaultDocumentServiceConfig returns the default configuration
func DefaultDocumentServiceConfig() DocumentServiceConfig {
	return DocumentServiceConfig{
		MaxUploadSize:     25 << 20,
		DownloadURLExpiry: 15 * time.Minute,
	}
}

// DocumentService uploads, renames and deletes documents owned by a company
// or a package, propagating review flags like any other leaf.
type DocumentService struct {
	documents  ledger.DocumentRepository
	storage    ObjectStorage
	propagator *Propagator
	metrics    Metrics
	logger     *zap.Logger
	config     DocumentServiceConfig
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documents ledger.DocumentRepository,
	storage ObjectStorage,
	propagator *Propagator,
	metrics Metrics,
	logger *zap.Logger,
) *DocumentService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		documents:  documents,
		storage:    storage,
		propagator: propagator,
		metrics:    metrics,
		logger:     logger,
		config:     DefaultDocumentServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *DocumentService) SetConfig(config DocumentServiceConfig) {
	s.config = config
}

// Upload stores the file and records a document under its owner
func (s *DocumentService) Upload(ctx context.Context, in UploadDocumentInput) (resp *DocumentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, documentKind, "upload")
	defer func() { telemetry.EndSpan(span, err) }()

	chain, err := s.propagator.OwnerChain(ctx, in.Owner)
	if err != nil {
		return nil, err
	}

	contentType := normalizeContentType(in.ContentType)
	if err = s.validateUpload(in, contentType); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = in.FileName
	}

	key := storageKey(in.Owner, in.FileName)
	if err = s.storage.Upload(ctx, key, in.Body, in.Size, contentType); err != nil {
		return nil, shared.NewStorageFailure("upload document", err)
	}

	doc, err := ledger.NewDocument(in.Owner, name, s.storage.PublicURL(key), contentType, key)
	if err != nil {
		s.removeAsset(ctx, key)
		return nil, err
	}
	if err = s.documents.Create(ctx, doc); err != nil {
		s.removeAsset(ctx, key)
		return nil, shared.NewStorageFailure("create document", err)
	}
	s.metrics.RecordMutation(ctx, documentKind, OpCreate)

	if err = s.propagator.Propagate(ctx, documentKind, chain); err != nil {
		return nil, err
	}

	s.logger.Info("Document uploaded",
		zap.Uint64("id", doc.ID),
		zap.String("owner", in.Owner.String()),
		zap.String("storage_key", key),
		zap.Int64("size", in.Size),
	)
	out := ToDocumentResponse(doc)
	return &out, nil
}

func (s *DocumentService) validateUpload(in UploadDocumentInput, contentType string) error {
	if strings.TrimSpace(in.FileName) == "" {
		return shared.NewValidationError("file is required")
	}
	if in.Body == nil || in.Size <= 0 {
		return shared.NewValidationError("file is empty")
	}
	if s.config.MaxUploadSize > 0 && in.Size > s.config.MaxUploadSize {
		return shared.NewValidationError(fmt.Sprintf("file exceeds %d bytes", s.config.MaxUploadSize))
	}
	if !AllowedContentTypes[contentType] {
		return shared.NewValidationError("content type " + contentType + " is not allowed")
	}
	return nil
}

// Rename changes a document's display name. It is treated as an edit and
// propagates to the owner chain.
func (s *DocumentService) Rename(ctx context.Context, id uint64, req RenameDocumentRequest) (resp *DocumentResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, documentKind, "rename")
	defer func() { telemetry.EndSpan(span, err) }()

	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, documentKind, id)
	}
	if err = doc.Rename(req.Name); err != nil {
		return nil, err
	}
	chain, err := s.propagator.OwnerChain(ctx, doc.Owner)
	if err != nil {
		return nil, err
	}

	if err = s.documents.Rename(ctx, id, doc.Name); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError(documentKind, id)
		}
		return nil, shared.NewStorageFailure("rename document", err)
	}
	s.metrics.RecordMutation(ctx, documentKind, OpUpdate)

	if err = s.propagator.Propagate(ctx, documentKind, chain); err != nil {
		return nil, err
	}
	out := ToDocumentResponse(doc)
	return &out, nil
}

// Delete removes the document row, flags the captured owner chain and then
// removes the stored asset. Asset removal failures are logged only.
func (s *DocumentService) Delete(ctx context.Context, id uint64) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, documentKind, "delete")
	defer func() { telemetry.EndSpan(span, err) }()

	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, documentKind, id)
	}
	chain, err := s.propagator.OwnerChain(ctx, doc.Owner)
	if err != nil {
		return err
	}

	if err = s.documents.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError(documentKind, id)
		}
		return shared.NewStorageFailure("delete document", err)
	}
	s.metrics.RecordMutation(ctx, documentKind, OpDelete)

	err = s.propagator.Propagate(ctx, documentKind, chain)
	s.removeAsset(ctx, doc.StorageKey)
	return err
}

// ListByOwner returns the documents attached directly to owner
func (s *DocumentService) ListByOwner(ctx context.Context, owner ledger.DocumentOwner) ([]DocumentResponse, error) {
	if _, err := s.propagator.OwnerChain(ctx, owner); err != nil {
		return nil, err
	}
	docs, err := s.documents.FindByOwner(ctx, owner)
	if err != nil {
		return nil, shared.NewStorageFailure("list documents", err)
	}
	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		out[i] = ToDocumentResponse(&docs[i])
	}
	return out, nil
}

// DownloadURL returns a time-limited link to the stored asset
func (s *DocumentService) DownloadURL(ctx context.Context, id uint64) (*DownloadURLResponse, error) {
	doc, err := s.documents.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, documentKind, id)
	}
	if doc.StorageKey == "" {
		return &DownloadURLResponse{URL: doc.URL}, nil
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, doc.StorageKey, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, shared.NewStorageFailure("generate download url", err)
	}
	return &DownloadURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}

func (s *DocumentService) removeAsset(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		s.logger.Warn("Failed to remove document asset",
			zap.String("storage_key", key),
			zap.Error(err),
		)
	}
}

// storageKey builds documents/<owner-kind>/<owner-id>/<uuid>-<file>
func storageKey(owner ledger.DocumentOwner, fileName string) string {
	return fmt.Sprintf("documents/%s/%d/%s-%s",
		strings.ToLower(string(owner.Kind)), owner.ID, uuid.New().String(), sanitizeFileName(fileName))
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" || out == "." || out == ".." {
		return "file"
	}
	// keep the tail so the extension survives
	if len(out) > maxStoredFileName {
		out = out[len(out)-maxStoredFileName:]
	}
	return out
}

func normalizeContentType(ct string) string {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" {
		return "application/octet-stream"
	}
	return ct
}
