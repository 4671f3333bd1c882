package ledger

import (
	"strings"
	"time"

	"github.com/ecsledger/backend/internal/domain/shared"
)

// Package is a billable engagement with a single company.
type Package struct {
	shared.BaseEntity
	CompanyID   uint64
	Date        time.Time
	Description string
	NeedsReview bool
}

// NewPackage creates a new package owned by companyID
func NewPackage(companyID uint64, date time.Time, description string) (*Package, error) {
	if companyID == 0 {
		return nil, shared.NewValidationError("company id is required")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.NewValidationError("package description cannot be empty")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Package{
		BaseEntity:  shared.NewBaseEntity(),
		CompanyID:   companyID,
		Date:        date,
		Description: description,
	}, nil
}

// Update changes the package description and date. Ownership is fixed.
func (p *Package) Update(date *time.Time, description *string) error {
	if description != nil {
		d := strings.TrimSpace(*description)
		if d == "" {
			return shared.NewValidationError("package description cannot be empty")
		}
		p.Description = d
	}
	if date != nil && !date.IsZero() {
		p.Date = *date
	}
	p.UpdatedAt = time.Now()
	return nil
}
