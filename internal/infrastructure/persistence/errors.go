package persistence

import (
	"errors"

	"github.com/ecsledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND domain error for the
// named resource and returns any other error unchanged.
func notFoundOr(err error, resource string, id uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource, id)
	}
	return err
}

// affectedOrNotFound turns a write that matched no rows into NOT_FOUND
func affectedOrNotFound(result *gorm.DB, resource string, id uint64) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError(resource, id)
	}
	return nil
}
