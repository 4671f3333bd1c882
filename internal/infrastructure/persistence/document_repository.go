package persistence

import (
	"context"

	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDocumentRepository implements ledger.DocumentRepository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByID finds a document by ID
func (r *GormDocumentRepository) FindByID(ctx context.Context, id uint64) (*ledger.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "document", id)
	}
	return model.ToDomain()
}

// FindByOwner lists the documents attached directly to owner
func (r *GormDocumentRepository) FindByOwner(ctx context.Context, owner ledger.DocumentOwner) ([]ledger.Document, error) {
	var rows []models.DocumentModel
	err := r.db.WithContext(ctx).
		Where(models.OwnerColumn(owner)+" = ?", owner.ID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	docs := make([]ledger.Document, 0, len(rows))
	for i := range rows {
		doc, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// Create inserts a document and assigns its ID
func (r *GormDocumentRepository) Create(ctx context.Context, doc *ledger.Document) error {
	model := models.DocumentModelFromDomain(doc)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	doc.ID = model.ID
	doc.CreatedAt = model.CreatedAt
	doc.UpdatedAt = model.UpdatedAt
	return nil
}

// Rename changes a document's display name
func (r *GormDocumentRepository) Rename(ctx context.Context, id uint64, name string) error {
	result := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("id = ?", id).
		Update("name", name)
	return affectedOrNotFound(result, "document", id)
}

// Delete hard-deletes a document row. The stored asset is removed by the caller.
func (r *GormDocumentRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.DocumentModel{}, "id = ?", id)
	return affectedOrNotFound(result, "document", id)
}
