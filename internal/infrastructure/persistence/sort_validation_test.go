package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty defaults to ASC", "", "ASC"},
		{"ASC", "ASC", "ASC"},
		{"desc lowercase", "desc", "DESC"},
		{"DESC", "DESC", "DESC"},
		{"padded desc", "  desc  ", "DESC"},
		{"unknown value", "sideways", "ASC"},
		{"injection attempt", "DESC; DROP TABLE companies;--", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty returns default", "", "id"},
		{"whitelisted field", "name", "name"},
		{"review flag", "needs_review", "needs_review"},
		{"padded field", "  classification ", "classification"},
		{"unknown field", "password_hash", "id"},
		{"case sensitive", "NAME", "id"},
		{"injection attempt", "name; DROP TABLE companies;--", "id"},
		{"quoted injection", "name'--", "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, CompanySortFields, "id"))
		})
	}
}

func TestCompanySortFieldsAreColumns(t *testing.T) {
	db := setupLedgerTestDB(t)
	for field := range CompanySortFields {
		assert.True(t, db.Migrator().HasColumn("companies", field), field)
	}
}
