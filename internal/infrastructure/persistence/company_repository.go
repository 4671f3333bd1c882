package persistence

import (
	"context"
	"fmt"

	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/domain/shared"
	"github.com/ecsledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCompanyRepository implements ledger.CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds a company by ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uint64) (*ledger.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "company", id)
	}
	return model.ToDomain(), nil
}

// FindAll returns one page of companies and the total count
func (r *GormCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ledger.Company, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.CompanyModel{})
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+filter.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortField := ValidateSortField(filter.OrderBy, CompanySortFields, "id")
	sortOrder := ValidateSortOrder(filter.OrderDir)

	var rows []models.CompanyModel
	err := query.
		Order(fmt.Sprintf("%s %s", sortField, sortOrder)).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	companies := make([]ledger.Company, len(rows))
	for i := range rows {
		companies[i] = *rows[i].ToDomain()
	}
	return companies, total, nil
}

// Create inserts a company and assigns its ID
func (r *GormCompanyRepository) Create(ctx context.Context, company *ledger.Company) error {
	model := models.CompanyModelFromDomain(company)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	company.ID = model.ID
	company.CreatedAt = model.CreatedAt
	company.UpdatedAt = model.UpdatedAt
	return nil
}

// Update writes the company's name and classification. The review flag has
// its own writers and is not touched here.
func (r *GormCompanyRepository) Update(ctx context.Context, company *ledger.Company) error {
	result := r.db.WithContext(ctx).
		Model(&models.CompanyModel{}).
		Where("id = ?", company.ID).
		Updates(map[string]any{
			"name":           company.Name,
			"classification": string(company.Classification),
		})
	return affectedOrNotFound(result, "company", company.ID)
}

// Delete removes a company
func (r *GormCompanyRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.CompanyModel{}, "id = ?", id)
	return affectedOrNotFound(result, "company", id)
}

// MarkNeedsReview raises the company's review flag
func (r *GormCompanyRepository) MarkNeedsReview(ctx context.Context, id uint64) error {
	return r.setNeedsReview(ctx, id, true)
}

// ClearNeedsReview lowers the company's review flag
func (r *GormCompanyRepository) ClearNeedsReview(ctx context.Context, id uint64) error {
	return r.setNeedsReview(ctx, id, false)
}

func (r *GormCompanyRepository) setNeedsReview(ctx context.Context, id uint64, value bool) error {
	result := r.db.WithContext(ctx).
		Model(&models.CompanyModel{}).
		Where("id = ?", id).
		Update("needs_review", value)
	return affectedOrNotFound(result, "company", id)
}

// CountByClassification counts companies of one classification
func (r *GormCompanyRepository) CountByClassification(ctx context.Context, classification ledger.Classification) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CompanyModel{}).
		Where("classification = ?", string(classification)).
		Count(&count).Error
	return count, err
}

// HasChildren reports whether packages or documents still reference the company
func (r *GormCompanyRepository) HasChildren(ctx context.Context, id uint64) (bool, error) {
	var packages int64
	if err := r.db.WithContext(ctx).Model(&models.PackageModel{}).Where("company_id = ?", id).Count(&packages).Error; err != nil {
		return false, err
	}
	if packages > 0 {
		return true, nil
	}
	var documents int64
	if err := r.db.WithContext(ctx).Model(&models.DocumentModel{}).Where("company_id = ?", id).Count(&documents).Error; err != nil {
		return false, err
	}
	return documents > 0, nil
}
