package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/domain/shared"
	"github.com/ecsledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// EntryService creates, edits and deletes one kind of entry (charges or
// payments, decided by the repository) and propagates review flags upward.
type EntryService struct {
	entries    ledger.EntryRepository
	propagator *Propagator
	metrics    Metrics
	logger     *zap.Logger
}

// NewEntryService creates a new EntryService
func NewEntryService(
	entries ledger.EntryRepository,
	propagator *Propagator,
	metrics Metrics,
	logger *zap.Logger,
) *EntryService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntryService{entries: entries, propagator: propagator, metrics: metrics, logger: logger}
}

// Kind returns the entry kind this service manages
func (s *EntryService) Kind() ledger.EntryKind {
	return s.entries.Kind()
}

func (s *EntryService) label() string {
	return s.entries.Kind().Label()
}

// Create records a new entry under packageID. The parent is resolved first,
// then the amount is validated, so a bad amount never reaches the store.
func (s *EntryService) Create(ctx context.Context, packageID uint64, req CreateEntryRequest) (resp *EntryResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.label(), "create", telemetry.AttrEntityKind.String(s.label()))
	defer func() { telemetry.EndSpan(span, err) }()

	pkg, chain, err := s.propagator.PackageChain(ctx, packageID)
	if err != nil {
		return nil, err
	}

	amount, err := ledger.ParseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	var entryDate time.Time
	if date != nil {
		entryDate = *date
	}

	entry, err := ledger.NewEntry(s.Kind(), pkg.ID, req.Description, amount, entryDate)
	if err != nil {
		return nil, err
	}
	if err = s.entries.Create(ctx, entry); err != nil {
		return nil, shared.NewStorageFailure("create "+s.label(), err)
	}
	s.metrics.RecordMutation(ctx, s.label(), OpCreate)

	if err = s.propagator.Propagate(ctx, s.label(), chain); err != nil {
		return nil, err
	}

	s.logger.Info("Entry created",
		zap.String("kind", s.label()),
		zap.Uint64("id", entry.ID),
		zap.Uint64("package_id", pkg.ID),
	)
	out := ToEntryResponse(entry)
	return &out, nil
}

// Update writes only the supplied fields and always raises the entry's own
// review flag, even when nothing changed.
func (s *EntryService) Update(ctx context.Context, id uint64, req UpdateEntryRequest) (resp *EntryResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.label(), "update", telemetry.AttrEntityKind.String(s.label()))
	defer func() { telemetry.EndSpan(span, err) }()

	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, s.label(), id)
	}

	update, err := req.toUpdate()
	if err != nil {
		return nil, err
	}
	_, chain, err := s.propagator.PackageChain(ctx, entry.PackageID)
	if err != nil {
		return nil, err
	}

	if err = s.entries.Update(ctx, id, update); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError(s.label(), id)
		}
		return nil, shared.NewStorageFailure("update "+s.label(), err)
	}
	entry.Apply(update)
	s.metrics.RecordMutation(ctx, s.label(), OpUpdate)

	if err = s.propagator.Propagate(ctx, s.label(), chain); err != nil {
		return nil, err
	}

	out := ToEntryResponse(entry)
	return &out, nil
}

// Delete removes the entry and flags the ancestors captured before removal
func (s *EntryService) Delete(ctx context.Context, id uint64) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, s.label(), "delete", telemetry.AttrEntityKind.String(s.label()))
	defer func() { telemetry.EndSpan(span, err) }()

	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return lookupError(err, s.label(), id)
	}
	_, chain, err := s.propagator.PackageChain(ctx, entry.PackageID)
	if err != nil {
		return err
	}

	if err = s.entries.Delete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError(s.label(), id)
		}
		return shared.NewStorageFailure("delete "+s.label(), err)
	}
	s.metrics.RecordMutation(ctx, s.label(), OpDelete)

	if err = s.propagator.Propagate(ctx, s.label(), chain); err != nil {
		return err
	}

	s.logger.Info("Entry deleted",
		zap.String("kind", s.label()),
		zap.Uint64("id", id),
		zap.Uint64("package_id", chain.PackageID),
	)
	return nil
}

// GetByID returns a single entry
func (s *EntryService) GetByID(ctx context.Context, id uint64) (*EntryResponse, error) {
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, s.label(), id)
	}
	out := ToEntryResponse(entry)
	return &out, nil
}

// ListByPackage returns the package's entries, oldest first
func (s *EntryService) ListByPackage(ctx context.Context, packageID uint64) ([]EntryResponse, error) {
	if _, _, err := s.propagator.PackageChain(ctx, packageID); err != nil {
		return nil, err
	}
	entries, err := s.entries.FindByPackage(ctx, packageID)
	if err != nil {
		return nil, shared.NewStorageFailure("list "+s.label()+"s", err)
	}
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = ToEntryResponse(&entries[i])
	}
	return out, nil
}
