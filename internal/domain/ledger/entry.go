package ledger

import (
	"strings"
	"time"

	"github.com/ecsledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EntryKind distinguishes the two financial record types under a package.
type EntryKind string

const (
	// EntryKindCharge is an amount owed by the counterparty
	EntryKindCharge EntryKind = "CHARGE"
	// EntryKindPayment is an amount received from or paid to the counterparty
	EntryKindPayment EntryKind = "PAYMENT"
)

// IsValid checks if the kind is a known value
func (k EntryKind) IsValid() bool {
	return k == EntryKindCharge || k == EntryKindPayment
}

// String returns the string representation of EntryKind
func (k EntryKind) String() string {
	return string(k)
}

// Label returns the lower-case resource name used in messages
func (k EntryKind) Label() string {
	switch k {
	case EntryKindCharge:
		return "charge"
	case EntryKindPayment:
		return "payment"
	}
	return strings.ToLower(string(k))
}

// Entry is a Charge or a Payment. Both share the same shape and lifecycle;
// they live in separate tables and are summed independently.
type Entry struct {
	shared.BaseEntity
	Kind        EntryKind
	PackageID   uint64
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	NeedsReview bool
}

// NewEntry creates a new entry under packageID. New entries start with
// NeedsReview unset; only edits raise it.
func NewEntry(kind EntryKind, packageID uint64, description string, amount decimal.Decimal, date time.Time) (*Entry, error) {
	if !kind.IsValid() {
		return nil, shared.NewValidationError("unknown entry kind")
	}
	if packageID == 0 {
		return nil, shared.NewValidationError("package id is required")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &Entry{
		BaseEntity:  shared.NewBaseEntity(),
		Kind:        kind,
		PackageID:   packageID,
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Date:        date,
	}, nil
}

// EntryUpdate lists the fields an edit may touch. Nil fields are left as stored.
type EntryUpdate struct {
	Description *string
	Amount      *decimal.Decimal
	Date        *time.Time
}

// Apply writes the supplied fields onto e and raises its review flag.
// The flag is raised even when no value changed.
func (e *Entry) Apply(u EntryUpdate) {
	if u.Description != nil {
		e.Description = strings.TrimSpace(*u.Description)
	}
	if u.Amount != nil {
		e.Amount = *u.Amount
	}
	if u.Date != nil && !u.Date.IsZero() {
		e.Date = *u.Date
	}
	e.NeedsReview = true
	e.UpdatedAt = time.Now()
}
