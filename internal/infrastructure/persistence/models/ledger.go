package models

import (
	"fmt"
	"time"

	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// Table names
const (
	CompaniesTable = "companies"
	PackagesTable  = "packages"
	ChargesTable   = "charges"
	PaymentsTable  = "payments"
	DocumentsTable = "documents"
)

// CompanyModel is the persistence model for ledger.Company
type CompanyModel struct {
	BaseModel
	Name           string `gorm:"type:varchar(200);not null"`
	Classification string `gorm:"type:varchar(10);not null;index"`
	NeedsReview    bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return CompaniesTable
}

// ToDomain converts the persistence model to a domain Company
func (m *CompanyModel) ToDomain() *ledger.Company {
	return &ledger.Company{
		BaseEntity:     m.BaseModel.ToDomain(),
		Name:           m.Name,
		Classification: ledger.Classification(m.Classification),
		NeedsReview:    m.NeedsReview,
	}
}

// CompanyModelFromDomain creates a persistence model from a domain Company
func CompanyModelFromDomain(c *ledger.Company) *CompanyModel {
	m := &CompanyModel{
		Name:           c.Name,
		Classification: string(c.Classification),
		NeedsReview:    c.NeedsReview,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// PackageModel is the persistence model for ledger.Package
type PackageModel struct {
	BaseModel
	CompanyID   uint64    `gorm:"not null;index"`
	Date        time.Time `gorm:"not null"`
	Description string    `gorm:"type:varchar(500);not null"`
	NeedsReview bool      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PackageModel) TableName() string {
	return PackagesTable
}

// ToDomain converts the persistence model to a domain Package
func (m *PackageModel) ToDomain() *ledger.Package {
	return &ledger.Package{
		BaseEntity:  m.BaseModel.ToDomain(),
		CompanyID:   m.CompanyID,
		Date:        m.Date,
		Description: m.Description,
		NeedsReview: m.NeedsReview,
	}
}

// PackageModelFromDomain creates a persistence model from a domain Package
func PackageModelFromDomain(p *ledger.Package) *PackageModel {
	m := &PackageModel{
		CompanyID:   p.CompanyID,
		Date:        p.Date,
		Description: p.Description,
		NeedsReview: p.NeedsReview,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// EntryModel holds the columns shared by the charges and payments tables.
// Queries select the table explicitly; ChargeModel and PaymentModel exist
// so each table gets its own schema and index names.
type EntryModel struct {
	BaseModel
	PackageID   uint64          `gorm:"not null;index"`
	Description string          `gorm:"type:varchar(500);not null;default:''"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Date        time.Time       `gorm:"not null"`
	NeedsReview bool            `gorm:"not null"`
}

// ToDomain converts the persistence model to a domain Entry of the given kind
func (m *EntryModel) ToDomain(kind ledger.EntryKind) *ledger.Entry {
	return &ledger.Entry{
		BaseEntity:  m.BaseModel.ToDomain(),
		Kind:        kind,
		PackageID:   m.PackageID,
		Description: m.Description,
		Amount:      m.Amount,
		Date:        m.Date,
		NeedsReview: m.NeedsReview,
	}
}

// EntryModelFromDomain creates a persistence model from a domain Entry
func EntryModelFromDomain(e *ledger.Entry) *EntryModel {
	m := &EntryModel{
		PackageID:   e.PackageID,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date,
		NeedsReview: e.NeedsReview,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// EntryTable returns the table that stores entries of kind
func EntryTable(kind ledger.EntryKind) string {
	if kind == ledger.EntryKindPayment {
		return PaymentsTable
	}
	return ChargesTable
}

// ChargeModel is the schema of the charges table
type ChargeModel struct {
	EntryModel
}

// TableName returns the table name for GORM
func (ChargeModel) TableName() string {
	return ChargesTable
}

// PaymentModel is the schema of the payments table
type PaymentModel struct {
	EntryModel
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return PaymentsTable
}

// DocumentModel is the persistence model for ledger.Document
type DocumentModel struct {
	BaseModel
	CompanyID  *uint64 `gorm:"index"`
	PackageID  *uint64 `gorm:"index"`
	Name       string  `gorm:"type:varchar(255);not null"`
	URL        string  `gorm:"type:varchar(1000);not null"`
	MimeType   string  `gorm:"type:varchar(100);not null"`
	StorageKey string  `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return DocumentsTable
}

// Owner decodes the two foreign key columns into the tagged owner. Rows with
// both or neither column set are rejected.
func (m *DocumentModel) Owner() (ledger.DocumentOwner, error) {
	switch {
	case m.CompanyID != nil && m.PackageID == nil:
		return ledger.OwnedByCompany(*m.CompanyID), nil
	case m.PackageID != nil && m.CompanyID == nil:
		return ledger.OwnedByPackage(*m.PackageID), nil
	}
	return ledger.DocumentOwner{}, fmt.Errorf("document %d has ambiguous ownership", m.ID)
}

// ToDomain converts the persistence model to a domain Document
func (m *DocumentModel) ToDomain() (*ledger.Document, error) {
	owner, err := m.Owner()
	if err != nil {
		return nil, err
	}
	return &ledger.Document{
		BaseEntity: m.BaseModel.ToDomain(),
		Owner:      owner,
		Name:       m.Name,
		URL:        m.URL,
		MimeType:   m.MimeType,
		StorageKey: m.StorageKey,
	}, nil
}

// DocumentModelFromDomain creates a persistence model from a domain Document
func DocumentModelFromDomain(d *ledger.Document) *DocumentModel {
	m := &DocumentModel{
		Name:       d.Name,
		URL:        d.URL,
		MimeType:   d.MimeType,
		StorageKey: d.StorageKey,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	id := d.Owner.ID
	switch d.Owner.Kind {
	case ledger.OwnerCompany:
		m.CompanyID = &id
	case ledger.OwnerPackage:
		m.PackageID = &id
	}
	return m
}

// OwnerColumn returns the foreign key column that holds owner
func OwnerColumn(owner ledger.DocumentOwner) string {
	if owner.Kind == ledger.OwnerPackage {
		return "package_id"
	}
	return "company_id"
}

// AllModels lists every model in dependency order, for AutoMigrate in tests
// and sqlite development databases.
func AllModels() []any {
	return []any{
		&UserModel{},
		&CompanyModel{},
		&PackageModel{},
		&ChargeModel{},
		&PaymentModel{},
		&DocumentModel{},
	}
}
