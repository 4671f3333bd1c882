package ledger

import (
	"strings"
	"time"

	"github.com/ecsledger/backend/internal/domain/shared"
)

// Classification separates the companies the consultancy bills from the
// companies it pays.
type Classification string

const (
	ClassificationClient Classification = "CLIENT"
	ClassificationVendor Classification = "VENDOR"
)

// IsValid checks if the classification is a known value
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationClient, ClassificationVendor:
		return true
	}
	return false
}

// String returns the string representation of Classification
func (c Classification) String() string {
	return string(c)
}

// ParseClassification normalizes and validates a classification string
func ParseClassification(s string) (Classification, error) {
	c := Classification(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", shared.NewValidationError("classification must be CLIENT or VENDOR")
	}
	return c, nil
}

// Company is the root of the ownership hierarchy.
type Company struct {
	shared.BaseEntity
	Name           string
	Classification Classification
	NeedsReview    bool
}

// NewCompany creates a new company
func NewCompany(name string, classification Classification) (*Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("company name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("company name cannot exceed 200 characters")
	}
	if !classification.IsValid() {
		return nil, shared.NewValidationError("classification must be CLIENT or VENDOR")
	}
	return &Company{
		BaseEntity:     shared.NewBaseEntity(),
		Name:           name,
		Classification: classification,
	}, nil
}

// Update changes the mutable company attributes
func (c *Company) Update(name string, classification Classification) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("company name cannot be empty")
	}
	if !classification.IsValid() {
		return shared.NewValidationError("classification must be CLIENT or VENDOR")
	}
	c.Name = name
	c.Classification = classification
	c.UpdatedAt = time.Now()
	return nil
}
