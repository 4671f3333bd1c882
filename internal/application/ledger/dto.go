package ledger

import (
	"io"
	"strings"
	"time"

	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Accepted date layouts for request bodies
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDate parses an optional date. Empty input yields nil.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, shared.NewValidationError("date must be YYYY-MM-DD or RFC 3339")
}

// ---------------------------------------------------------------------------
// Companies
// ---------------------------------------------------------------------------

// CreateCompanyRequest represents a request to create a company
type CreateCompanyRequest struct {
	Name           string `json:"name" binding:"required,min=1,max=200"`
	Classification string `json:"classification" binding:"required,oneof=CLIENT VENDOR client vendor"`
}

// UpdateCompanyRequest represents a request to update a company
type UpdateCompanyRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=200"`
	Classification *string `json:"classification" binding:"omitempty,oneof=CLIENT VENDOR client vendor"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Classification string    `json:"classification"`
	NeedsReview    bool      `json:"needs_review"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ToCompanyResponse converts a domain company to its response
func ToCompanyResponse(c *ledger.Company) CompanyResponse {
	return CompanyResponse{
		ID:             c.ID,
		Name:           c.Name,
		Classification: c.Classification.String(),
		NeedsReview:    c.NeedsReview,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// CompanyListFilter narrows company listings
type CompanyListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f CompanyListFilter) toShared() shared.Filter {
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalize()
}

// ---------------------------------------------------------------------------
// Packages
// ---------------------------------------------------------------------------

// CreatePackageRequest represents a request to open a package under a company
type CreatePackageRequest struct {
	Description string `json:"description" binding:"required,min=1,max=500"`
	Date        string `json:"date"`
}

// UpdatePackageRequest represents a request to update a package
type UpdatePackageRequest struct {
	Description *string `json:"description" binding:"omitempty,min=1,max=500"`
	Date        *string `json:"date"`
}

// PackageResponse represents a package in API responses
type PackageResponse struct {
	ID          uint64    `json:"id"`
	CompanyID   uint64    `json:"company_id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	NeedsReview bool      `json:"needs_review"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToPackageResponse converts a domain package to its response
func ToPackageResponse(p *ledger.Package) PackageResponse {
	return PackageResponse{
		ID:          p.ID,
		CompanyID:   p.CompanyID,
		Date:        p.Date,
		Description: p.Description,
		NeedsReview: p.NeedsReview,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// Charges and payments
// ---------------------------------------------------------------------------

// CreateEntryRequest represents a request to record a charge or payment.
// Amount accepts a JSON number or numeric string.
type CreateEntryRequest struct {
	Description string           `json:"description" binding:"max=500"`
	Amount      ledger.RawAmount `json:"amount"`
	Date        string           `json:"date"`
}

// UpdateEntryRequest represents a partial edit. Absent fields are kept.
type UpdateEntryRequest struct {
	Description *string           `json:"description" binding:"omitempty,max=500"`
	Amount      *ledger.RawAmount `json:"amount"`
	Date        *string           `json:"date"`
}

func (r UpdateEntryRequest) toUpdate() (ledger.EntryUpdate, error) {
	var u ledger.EntryUpdate
	if r.Description != nil {
		description := strings.TrimSpace(*r.Description)
		u.Description = &description
	}
	if r.Amount != nil {
		amount, err := ledger.ParseAmount(*r.Amount)
		if err != nil {
			return u, err
		}
		u.Amount = &amount
	}
	if r.Date != nil {
		d, err := parseDate(*r.Date)
		if err != nil {
			return u, err
		}
		u.Date = d
	}
	return u, nil
}

// EntryResponse represents a charge or payment in API responses
type EntryResponse struct {
	ID          uint64          `json:"id"`
	Kind        string          `json:"kind"`
	PackageID   uint64          `json:"package_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	NeedsReview bool            `json:"needs_review"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToEntryResponse converts a domain entry to its response
func ToEntryResponse(e *ledger.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		Kind:        e.Kind.String(),
		PackageID:   e.PackageID,
		Description: e.Description,
		Amount:      e.Amount,
		Date:        e.Date,
		NeedsReview: e.NeedsReview,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// Documents
// ---------------------------------------------------------------------------

// UploadDocumentInput carries a multipart file to attach to an owner
type UploadDocumentInput struct {
	Owner       ledger.DocumentOwner
	Name        string // display name; defaults to FileName
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// RenameDocumentRequest represents a document rename
type RenameDocumentRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// DocumentResponse represents a document in API responses
type DocumentResponse struct {
	ID        uint64    `json:"id"`
	OwnerKind string    `json:"owner_kind"`
	CompanyID *uint64   `json:"company_id,omitempty"`
	PackageID *uint64   `json:"package_id,omitempty"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

// ToDocumentResponse converts a domain document to its response
func ToDocumentResponse(d *ledger.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:        d.ID,
		OwnerKind: string(d.Owner.Kind),
		Name:      d.Name,
		URL:       d.URL,
		MimeType:  d.MimeType,
		CreatedAt: d.CreatedAt,
	}
	id := d.Owner.ID
	if d.Owner.Kind == ledger.OwnerCompany {
		resp.CompanyID = &id
	} else {
		resp.PackageID = &id
	}
	return resp
}

// DownloadURLResponse is a time-limited link to a document asset
type DownloadURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ---------------------------------------------------------------------------
// Balances
// ---------------------------------------------------------------------------

// DueResponse is the running balance of one package or company
type DueResponse struct {
	Scope    string  `json:"scope"`
	ID       uint64  `json:"id"`
	Charges  float64 `json:"charges"`
	Payments float64 `json:"payments"`
	Due      float64 `json:"due"`
}

// PortfolioStats summarizes every client and vendor relationship
type PortfolioStats struct {
	TotalClients   int64   `json:"totalClients"`
	TotalVendors   int64   `json:"totalVendors"`
	TotalClientDue float64 `json:"totalClientDue"`
	TotalVendorDue float64 `json:"totalVendorDue"`
	EcsIncome      float64 `json:"ecsIncome"`
}
