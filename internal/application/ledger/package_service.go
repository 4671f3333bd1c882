package ledger

import (
	"context"
	"time"

	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PackageService is the pass-through CRUD surface for packages
type PackageService struct {
	packages   ledger.PackageRepository
	propagator *Propagator
	logger     *zap.Logger
}

// NewPackageService creates a new PackageService
func NewPackageService(packages ledger.PackageRepository, propagator *Propagator, logger *zap.Logger) *PackageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PackageService{packages: packages, propagator: propagator, logger: logger}
}

// Create opens a package under an existing company
func (s *PackageService) Create(ctx context.Context, companyID uint64, req CreatePackageRequest) (*PackageResponse, error) {
	if _, _, err := s.propagator.CompanyChain(ctx, companyID); err != nil {
		return nil, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	var d time.Time
	if date != nil {
		d = *date
	}
	pkg, err := ledger.NewPackage(companyID, d, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.packages.Create(ctx, pkg); err != nil {
		return nil, shared.NewStorageFailure("create package", err)
	}
	s.logger.Info("Package created", zap.Uint64("id", pkg.ID), zap.Uint64("company_id", companyID))
	resp := ToPackageResponse(pkg)
	return &resp, nil
}

// GetByID returns a package
func (s *PackageService) GetByID(ctx context.Context, id uint64) (*PackageResponse, error) {
	pkg, _, err := s.propagator.PackageChain(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPackageResponse(pkg)
	return &resp, nil
}

// ListByCompany returns a company's packages
func (s *PackageService) ListByCompany(ctx context.Context, companyID uint64) ([]PackageResponse, error) {
	if _, _, err := s.propagator.CompanyChain(ctx, companyID); err != nil {
		return nil, err
	}
	pkgs, err := s.packages.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, shared.NewStorageFailure("list packages", err)
	}
	out := make([]PackageResponse, len(pkgs))
	for i := range pkgs {
		out[i] = ToPackageResponse(&pkgs[i])
	}
	return out, nil
}

// Update changes the package description or date. Ownership is fixed.
func (s *PackageService) Update(ctx context.Context, id uint64, req UpdatePackageRequest) (*PackageResponse, error) {
	pkg, _, err := s.propagator.PackageChain(ctx, id)
	if err != nil {
		return nil, err
	}
	var date *time.Time
	if req.Date != nil {
		if date, err = parseDate(*req.Date); err != nil {
			return nil, err
		}
	}
	if err := pkg.Update(date, req.Description); err != nil {
		return nil, err
	}
	if err := s.packages.Update(ctx, pkg); err != nil {
		return nil, writeError(err, "package", id, "update package")
	}
	resp := ToPackageResponse(pkg)
	return &resp, nil
}

// Delete removes a package with no remaining charges, payments or documents
func (s *PackageService) Delete(ctx context.Context, id uint64) error {
	if _, _, err := s.propagator.PackageChain(ctx, id); err != nil {
		return err
	}
	hasChildren, err := s.packages.HasChildren(ctx, id)
	if err != nil {
		return shared.NewStorageFailure("check package children", err)
	}
	if hasChildren {
		return shared.NewValidationError("package still has charges, payments or documents")
	}
	if err := s.packages.Delete(ctx, id); err != nil {
		return writeError(err, "package", id, "delete package")
	}
	s.logger.Info("Package deleted", zap.Uint64("id", id))
	return nil
}

// MarkReviewed clears the package's review flag
func (s *PackageService) MarkReviewed(ctx context.Context, id uint64) (*PackageResponse, error) {
	if err := s.packages.ClearNeedsReview(ctx, id); err != nil {
		return nil, writeError(err, "package", id, "mark package reviewed")
	}
	return s.GetByID(ctx, id)
}
