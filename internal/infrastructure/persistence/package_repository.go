package persistence

import (
	"context"

	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPackageRepository implements ledger.PackageRepository using GORM
type GormPackageRepository struct {
	db *gorm.DB
}

// NewGormPackageRepository creates a new GormPackageRepository
func NewGormPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

// FindByID finds a package by ID
func (r *GormPackageRepository) FindByID(ctx context.Context, id uint64) (*ledger.Package, error) {
	var model models.PackageModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "package", id)
	}
	return model.ToDomain(), nil
}

// FindByCompany lists a company's packages, newest first
func (r *GormPackageRepository) FindByCompany(ctx context.Context, companyID uint64) ([]ledger.Package, error) {
	var rows []models.PackageModel
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("date DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	packages := make([]ledger.Package, len(rows))
	for i := range rows {
		packages[i] = *rows[i].ToDomain()
	}
	return packages, nil
}

// Create inserts a package and assigns its ID
func (r *GormPackageRepository) Create(ctx context.Context, pkg *ledger.Package) error {
	model := models.PackageModelFromDomain(pkg)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	pkg.ID = model.ID
	pkg.CreatedAt = model.CreatedAt
	pkg.UpdatedAt = model.UpdatedAt
	return nil
}

// Update writes the package's date and description
func (r *GormPackageRepository) Update(ctx context.Context, pkg *ledger.Package) error {
	result := r.db.WithContext(ctx).
		Model(&models.PackageModel{}).
		Where("id = ?", pkg.ID).
		Updates(map[string]any{
			"date":        pkg.Date,
			"description": pkg.Description,
		})
	return affectedOrNotFound(result, "package", pkg.ID)
}

// Delete removes a package
func (r *GormPackageRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.PackageModel{}, "id = ?", id)
	return affectedOrNotFound(result, "package", id)
}

// MarkNeedsReview raises the package's review flag
func (r *GormPackageRepository) MarkNeedsReview(ctx context.Context, id uint64) error {
	return r.setNeedsReview(ctx, id, true)
}

// ClearNeedsReview lowers the package's review flag
func (r *GormPackageRepository) ClearNeedsReview(ctx context.Context, id uint64) error {
	return r.setNeedsReview(ctx, id, false)
}

func (r *GormPackageRepository) setNeedsReview(ctx context.Context, id uint64, value bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.PackageModel{}).
		Where("id = ?", id).
		Update("needs_review", value)
	return affectedOrNotFound(result, "package", id)
}

// HasChildren reports whether charges, payments or documents still reference the package
func (r *GormPackageRepository) HasChildren(ctx context.Context, id uint64) (bool, error) {
	for _, table := range []string{models.ChargesTable, models.PaymentsTable, models.DocumentsTable} {
		var count int64
		if err := r.db.WithContext(ctx).Table(table).Where("package_id = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}
