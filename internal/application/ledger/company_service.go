package ledger

import (
	"context"
	"errors"

	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CompanyService is the pass-through CRUD surface for companies. It never
// raises review flags; MarkReviewed is the operator's clearing action.
type CompanyService struct {
	companies ledger.CompanyRepository
	logger    *zap.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companies ledger.CompanyRepository, logger *zap.Logger) *CompanyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{companies: companies, logger: logger}
}

// Create creates a new company
func (s *CompanyService) Create(ctx context.Context, req CreateCompanyRequest) (*CompanyResponse, error) {
	classification, err := ledger.ParseClassification(req.Classification)
	if err != nil {
		return nil, err
	}
	company, err := ledger.NewCompany(req.Name, classification)
	if err != nil {
		return nil, err
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, shared.NewStorageFailure("create company", err)
	}
	s.logger.Info("Company created", zap.Uint64("id", company.ID), zap.String("classification", classification.String()))
	resp := ToCompanyResponse(company)
	return &resp, nil
}

// GetByID returns a company
func (s *CompanyService) GetByID(ctx context.Context, id uint64) (*CompanyResponse, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "company", id)
	}
	resp := ToCompanyResponse(company)
	return &resp, nil
}

// List returns a page of companies
func (s *CompanyService) List(ctx context.Context, filter CompanyListFilter) (*shared.Paginated[CompanyResponse], error) {
	f := filter.toShared()
	companies, total, err := s.companies.FindAll(ctx, f)
	if err != nil {
		return nil, shared.NewStorageFailure("list companies", err)
	}
	items := make([]CompanyResponse, len(companies))
	for i := range companies {
		items[i] = ToCompanyResponse(&companies[i])
	}
	page := shared.NewPaginated(items, total, f.Page, f.PageSize)
	return &page, nil
}

// Update changes the company's name or classification
func (s *CompanyService) Update(ctx context.Context, id uint64, req UpdateCompanyRequest) (*CompanyResponse, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "company", id)
	}

	name := company.Name
	if req.Name != nil {
		name = *req.Name
	}
	classification := company.Classification
	if req.Classification != nil {
		if classification, err = ledger.ParseClassification(*req.Classification); err != nil {
			return nil, err
		}
	}
	if err := company.Update(name, classification); err != nil {
		return nil, err
	}
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, writeError(err, "company", id, "update company")
	}
	resp := ToCompanyResponse(company)
	return &resp, nil
}

// Delete removes a company that no longer owns packages or documents
func (s *CompanyService) Delete(ctx context.Context, id uint64) error {
	if _, err := s.companies.FindByID(ctx, id); err != nil {
		return lookupError(err, "company", id)
	}
	hasChildren, err := s.companies.HasChildren(ctx, id)
	if err != nil {
		return shared.NewStorageFailure("check company children", err)
	}
	if hasChildren {
		return shared.NewValidationError("company still has packages or documents")
	}
	if err := s.companies.Delete(ctx, id); err != nil {
		return writeError(err, "company", id, "delete company")
	}
	s.logger.Info("Company deleted", zap.Uint64("id", id))
	return nil
}

// MarkReviewed clears the company's review flag
func (s *CompanyService) MarkReviewed(ctx context.Context, id uint64) (*CompanyResponse, error) {
	if err := s.companies.ClearNeedsReview(ctx, id); err != nil {
		return nil, writeError(err, "company", id, "mark company reviewed")
	}
	return s.GetByID(ctx, id)
}

// writeError maps a repository write error to NotFound or StorageFailure
func writeError(err error, resource string, id uint64, op string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError(resource, id)
	}
	return shared.NewStorageFailure(op, err)
}
