package ledger

import (
	"context"

	"github.com/ecsledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CompanyRepository defines the interface for company persistence
type CompanyRepository interface {
	FindByID(ctx context.Context, id uint64) (*Company, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Company, int64, error)
	Create(ctx context.Context, company *Company) error
	Update(ctx context.Context, company *Company) error
	Delete(ctx context.Context, id uint64) error

	// MarkNeedsReview raises the review flag. It is idempotent.
	MarkNeedsReview(ctx context.Context, id uint64) error
	// ClearNeedsReview lowers the review flag
	ClearNeedsReview(ctx context.Context, id uint64) error

	CountByClassification(ctx context.Context, classification Classification) (int64, error)
	// HasChildren reports whether any package or document still references the company
	HasChildren(ctx context.Context, id uint64) (bool, error)
}

// PackageRepository defines the interface for package persistence
type PackageRepository interface {
	FindByID(ctx context.Context, id uint64) (*Package, error)
	FindByCompany(ctx context.Context, companyID uint64) ([]Package, error)
	Create(ctx context.Context, pkg *Package) error
	Update(ctx context.Context, pkg *Package) error
	Delete(ctx context.Context, id uint64) error

	// MarkNeedsReview raises the review flag. It is idempotent.
	MarkNeedsReview(ctx context.Context, id uint64) error
	// ClearNeedsReview lowers the review flag
	ClearNeedsReview(ctx context.Context, id uint64) error

	// HasChildren reports whether any charge, payment or document still references the package
	HasChildren(ctx context.Context, id uint64) (bool, error)
}

// EntryRepository persists one kind of entry (charges or payments) and
// answers the aggregate sums the balance calculations need.
type EntryRepository interface {
	Kind() EntryKind
	FindByID(ctx context.Context, id uint64) (*Entry, error)
	FindByPackage(ctx context.Context, packageID uint64) ([]Entry, error)
	Create(ctx context.Context, entry *Entry) error
	// Update writes only the supplied fields and raises the entry's review flag
	Update(ctx context.Context, id uint64, update EntryUpdate) error
	Delete(ctx context.Context, id uint64) error

	// Sums return zero when no rows match
	SumByPackage(ctx context.Context, packageID uint64) (decimal.Decimal, error)
	SumByCompany(ctx context.Context, companyID uint64) (decimal.Decimal, error)
	SumByClassification(ctx context.Context, classification Classification) (decimal.Decimal, error)
}

// DocumentRepository defines the interface for document persistence
type DocumentRepository interface {
	FindByID(ctx context.Context, id uint64) (*Document, error)
	FindByOwner(ctx context.Context, owner DocumentOwner) ([]Document, error)
	Create(ctx context.Context, doc *Document) error
	Rename(ctx context.Context, id uint64, name string) error
	Delete(ctx context.Context, id uint64) error
}
