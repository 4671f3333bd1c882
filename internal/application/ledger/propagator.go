package ledger

import (
	"context"
	"errors"

	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Propagator resolves ownership chains and raises the review flags above a
// mutated leaf. Flags are written package first, then company, as
// independent idempotent updates with no enclosing transaction.
type Propagator struct {
	packages  ledger.PackageRepository
	companies ledger.CompanyRepository
	metrics   Metrics
	logger    *zap.Logger
}

// NewPropagator creates a new Propagator
func NewPropagator(
	packages ledger.PackageRepository,
	companies ledger.CompanyRepository,
	metrics Metrics,
	logger *zap.Logger,
) *Propagator {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Propagator{packages: packages, companies: companies, metrics: metrics, logger: logger}
}

// Propagate marks chain.PackageID (when set) and then chain.CompanyID as
// needing review. A failure is reported as PropagationFailure; the caller's
// leaf write stands.
func (p *Propagator) Propagate(ctx context.Context, kind string, chain ledger.OwnershipChain) error {
	if chain.HasPackage() {
		if err := p.packages.MarkNeedsReview(ctx, chain.PackageID); err != nil {
			return p.fail(ctx, kind, "package", chain, err)
		}
	}
	if err := p.companies.MarkNeedsReview(ctx, chain.CompanyID); err != nil {
		return p.fail(ctx, kind, "company", chain, err)
	}
	return nil
}

func (p *Propagator) fail(ctx context.Context, kind, level string, chain ledger.OwnershipChain, err error) error {
	p.metrics.RecordPropagationFailure(ctx, kind, level)
	p.logger.Error("Review flag propagation failed",
		zap.String("kind", kind),
		zap.String("level", level),
		zap.Uint64("package_id", chain.PackageID),
		zap.Uint64("company_id", chain.CompanyID),
		zap.Error(err),
	)
	return shared.NewPropagationFailure(err)
}

// PackageChain loads the package and returns the chain above anything it owns
func (p *Propagator) PackageChain(ctx context.Context, packageID uint64) (*ledger.Package, ledger.OwnershipChain, error) {
	pkg, err := p.packages.FindByID(ctx, packageID)
	if err != nil {
		return nil, ledger.OwnershipChain{}, lookupError(err, "package", packageID)
	}
	return pkg, ledger.OwnershipChain{PackageID: pkg.ID, CompanyID: pkg.CompanyID}, nil
}

// CompanyChain loads the company and returns the chain above anything it owns directly
func (p *Propagator) CompanyChain(ctx context.Context, companyID uint64) (*ledger.Company, ledger.OwnershipChain, error) {
	company, err := p.companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, ledger.OwnershipChain{}, lookupError(err, "company", companyID)
	}
	return company, ledger.OwnershipChain{CompanyID: company.ID}, nil
}

// OwnerChain resolves a document owner. Package-owned documents get the
// extra package to company hop.
func (p *Propagator) OwnerChain(ctx context.Context, owner ledger.DocumentOwner) (ledger.OwnershipChain, error) {
	if err := owner.Validate(); err != nil {
		return ledger.OwnershipChain{}, err
	}
	if owner.Kind == ledger.OwnerPackage {
		_, chain, err := p.PackageChain(ctx, owner.ID)
		return chain, err
	}
	_, chain, err := p.CompanyChain(ctx, owner.ID)
	return chain, err
}

// lookupError maps a repository read error to NotFound or StorageFailure
func lookupError(err error, resource string, id uint64) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError(resource, id)
	}
	return shared.NewStorageFailure("load "+resource, err)
}
