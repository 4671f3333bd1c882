package ledger

// OwnershipChain is the resolved ancestor path above a leaf record. PackageID
// is zero for documents owned directly by a company.
type OwnershipChain struct {
	PackageID uint64
	CompanyID uint64
}

// HasPackage reports whether the chain passes through a package
func (c OwnershipChain) HasPackage() bool {
	return c.PackageID != 0
}
