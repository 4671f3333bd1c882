package persistence

import (
	"context"
	"time"

	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormEntryRepository implements ledger.EntryRepository over either the
// charges or the payments table.
type GormEntryRepository struct {
	db    *gorm.DB
	kind  ledger.EntryKind
	table string
}

// NewGormChargeRepository creates an entry repository over the charges table
func NewGormChargeRepository(db *gorm.DB) *GormEntryRepository {
	return newGormEntryRepository(db, ledger.EntryKindCharge)
}

// NewGormPaymentRepository creates an entry repository over the payments table
func NewGormPaymentRepository(db *gorm.DB) *GormEntryRepository {
	return newGormEntryRepository(db, ledger.EntryKindPayment)
}

func newGormEntryRepository(db *gorm.DB, kind ledger.EntryKind) *GormEntryRepository {
	return &GormEntryRepository{db: db, kind: kind, table: models.EntryTable(kind)}
}

// Kind returns the entry kind this repository stores
func (r *GormEntryRepository) Kind() ledger.EntryKind {
	return r.kind
}

func (r *GormEntryRepository) scoped(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

// FindByID finds an entry by ID
func (r *GormEntryRepository) FindByID(ctx context.Context, id uint64) (*ledger.Entry, error) {
	var model models.EntryModel
	if err := r.scoped(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		return nil, notFoundOr(err, r.kind.Label(), id)
	}
	return model.ToDomain(r.kind), nil
}

// FindByPackage lists a package's entries by date
func (r *GormEntryRepository) FindByPackage(ctx context.Context, packageID uint64) ([]ledger.Entry, error) {
	var rows []models.EntryModel
	err := r.scoped(ctx).
		Where("package_id = ?", packageID).
		Order("date ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	entries := make([]ledger.Entry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain(r.kind)
	}
	return entries, nil
}

// Create inserts an entry and assigns its ID
func (r *GormEntryRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	model := models.EntryModelFromDomain(entry)
	if err := r.scoped(ctx).Create(model).Error; err != nil {
		return err
	}
	entry.ID = model.ID
	entry.CreatedAt = model.CreatedAt
	entry.UpdatedAt = model.UpdatedAt
	return nil
}

// Update writes only the supplied fields and always raises needs_review
func (r *GormEntryRepository) Update(ctx context.Context, id uint64, update ledger.EntryUpdate) error {
	columns := map[string]any{
		"needs_review": true,
		"updated_at":   time.Now(),
	}
	if update.Description != nil {
		columns["description"] = *update.Description
	}
	if update.Amount != nil {
		columns["amount"] = *update.Amount
	}
	if update.Date != nil {
		columns["date"] = *update.Date
	}

	result := r.scoped(ctx).Where("id = ?", id).Updates(columns)
	return affectedOrNotFound(result, r.kind.Label(), id)
}

// Delete hard-deletes an entry
func (r *GormEntryRepository) Delete(ctx context.Context, id uint64) error {
	result := r.scoped(ctx).Where("id = ?", id).Delete(&models.EntryModel{})
	return affectedOrNotFound(result, r.kind.Label(), id)
}

type sumResult struct {
	Total decimal.Decimal
}

// SumByPackage totals the amounts recorded under one package
func (r *GormEntryRepository) SumByPackage(ctx context.Context, packageID uint64) (decimal.Decimal, error) {
	var result sumResult
	err := r.scoped(ctx).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("package_id = ?", packageID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumByCompany totals the amounts across every package of one company
func (r *GormEntryRepository) SumByCompany(ctx context.Context, companyID uint64) (decimal.Decimal, error) {
	var result sumResult
	err := r.db.WithContext(ctx).
		Table(r.table+" AS e").
		Select("COALESCE(SUM(e.amount), 0) AS total").
		Joins("JOIN packages AS p ON p.id = e.package_id").
		Where("p.company_id = ?", companyID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumByClassification totals the amounts across every company of one classification
func (r *GormEntryRepository) SumByClassification(ctx context.Context, classification ledger.Classification) (decimal.Decimal, error) {
	var result sumResult
	err := r.db.WithContext(ctx).
		Table(r.table+" AS e").
		Select("COALESCE(SUM(e.amount), 0) AS total").
		Joins("JOIN packages AS p ON p.id = e.package_id").
		Joins("JOIN companies AS c ON c.id = p.company_id").
		Where("c.classification = ?", string(classification)).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}
