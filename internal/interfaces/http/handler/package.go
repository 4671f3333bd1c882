package handler

import (
	ledgerapp "github.com/ecsledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// PackageHandler handles package endpoints
type PackageHandler struct {
	BaseHandler
	packages *ledgerapp.PackageService
	balances *ledgerapp.BalanceService
}

// NewPackageHandler creates a new PackageHandler
func NewPackageHandler(packages *ledgerapp.PackageService, balances *ledgerapp.BalanceService) *PackageHandler {
	return &PackageHandler{packages: packages, balances: balances}
}

// Create godoc
//
//	@Summary		Open a package under a company
//	@Description	Flags the package and its company for review
//	@Tags			packages
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Company ID"
//	@Param			request	body		ledgerapp.CreatePackageRequest	true	"Package"
//	@Success		201		{object}	dto.Response{data=ledgerapp.PackageResponse}
//	@Failure		404		{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/companies/{id}/packages [post]
func (h *PackageHandler) Create(c *gin.Context) {
	companyID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.CreatePackageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	pkg, err := h.packages.Create(c.Request.Context(), companyID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pkg)
}

// ListByCompany godoc
//
//	@Summary		List a company's packages
//	@Tags			packages
//	@Produce		json
//	@Param			id	path		int	true	"Company ID"
//	@Success		200	{object}	dto.Response{data=[]ledgerapp.PackageResponse}
//	@Router			/companies/{id}/packages [get]
func (h *PackageHandler) ListByCompany(c *gin.Context) {
	companyID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	pkgs, err := h.packages.ListByCompany(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pkgs)
}

// GetByID godoc
//
//	@Summary		Get a package
//	@Tags			packages
//	@Produce		json
//	@Param			id	path		int	true	"Package ID"
//	@Success		200	{object}	dto.Response{data=ledgerapp.PackageResponse}
//	@Failure		404	{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/packages/{id} [get]
func (h *PackageHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	pkg, err := h.packages.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pkg)
}

// Update godoc
//
//	@Summary		Update a package
//	@Tags			packages
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Package ID"
//	@Param			request	body		ledgerapp.UpdatePackageRequest	true	"Fields to change"
//	@Success		200		{object}	dto.Response{data=ledgerapp.PackageResponse}
//	@Router			/packages/{id} [put]
func (h *PackageHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.UpdatePackageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	pkg, err := h.packages.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pkg)
}

// Delete godoc
//
//	@Summary		Delete a package
//	@Description	Fails while the package still has charges, payments or documents
//	@Tags			packages
//	@Param			id	path	int	true	"Package ID"
//	@Success		204
//	@Router			/packages/{id} [delete]
func (h *PackageHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.packages.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// MarkReviewed godoc
//
//	@Summary	Clear the package's review flag
//	@Tags		packages
//	@Produce	json
//	@Param		id	path		int	true	"Package ID"
//	@Success	200	{object}	dto.Response{data=ledgerapp.PackageResponse}
//	@Router		/packages/{id}/review [post]
func (h *PackageHandler) MarkReviewed(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	pkg, err := h.packages.MarkReviewed(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pkg)
}

// Due godoc
//
//	@Summary	Outstanding balance of a package
//	@Tags		packages
//	@Produce	json
//	@Param		id	path		int	true	"Package ID"
//	@Success	200	{object}	dto.Response{data=ledgerapp.DueResponse}
//	@Router		/packages/{id}/due [get]
func (h *PackageHandler) Due(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	due, err := h.balances.PackageDue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, due)
}
