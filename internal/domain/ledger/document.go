package ledger

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ecsledger/backend/internal/domain/shared"
)

// OwnerKind tags which parent a document hangs off.
type OwnerKind string

const (
	OwnerCompany OwnerKind = "COMPANY"
	OwnerPackage OwnerKind = "PACKAGE"
)

// DocumentOwner is the owning parent of a document: exactly one company or
// exactly one package, never both.
type DocumentOwner struct {
	Kind OwnerKind
	ID   uint64
}

// OwnedByCompany returns an owner pointing at a company
func OwnedByCompany(companyID uint64) DocumentOwner {
	return DocumentOwner{Kind: OwnerCompany, ID: companyID}
}

// OwnedByPackage returns an owner pointing at a package
func OwnedByPackage(packageID uint64) DocumentOwner {
	return DocumentOwner{Kind: OwnerPackage, ID: packageID}
}

// Validate checks the owner is a well-formed variant
func (o DocumentOwner) Validate() error {
	if o.Kind != OwnerCompany && o.Kind != OwnerPackage {
		return shared.NewValidationError("document owner must be a company or a package")
	}
	if o.ID == 0 {
		return shared.NewValidationError("document owner id is required")
	}
	return nil
}

// String implements fmt.Stringer
func (o DocumentOwner) String() string {
	return fmt.Sprintf("%s:%d", strings.ToLower(string(o.Kind)), o.ID)
}

// MaxDocumentNameLength is the longest display name a document may carry
const MaxDocumentNameLength = 255

func validateDocumentName(name string) error {
	if name == "" {
		return shared.NewValidationError("document name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxDocumentNameLength {
		return shared.NewValidationError(fmt.Sprintf("document name cannot exceed %d characters", MaxDocumentNameLength))
	}
	return nil
}

// Document is an uploaded file attached to a company or a package.
type Document struct {
	shared.BaseEntity
	Owner      DocumentOwner
	Name       string
	URL        string
	MimeType   string
	StorageKey string
}

// NewDocument creates a new document record for an already stored asset
func NewDocument(owner DocumentOwner, name, url, mimeType, storageKey string) (*Document, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateDocumentName(name); err != nil {
		return nil, err
	}
	if url == "" {
		return nil, shared.NewValidationError("document url cannot be empty")
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &Document{
		BaseEntity: shared.NewBaseEntity(),
		Owner:      owner,
		Name:       name,
		URL:        url,
		MimeType:   mimeType,
		StorageKey: storageKey,
	}, nil
}

// Rename changes the display name of the document
func (d *Document) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateDocumentName(name); err != nil {
		return err
	}
	d.Name = name
	d.UpdatedAt = time.Now()
	return nil
}
