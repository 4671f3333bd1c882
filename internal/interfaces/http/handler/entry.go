package handler

import (
	ledgerapp "github.com/ecsledger/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// EntryHandler serves one entry kind. The server mounts one for charges
// and one for payments; the routes differ only in their prefix.
type EntryHandler struct {
	BaseHandler
	entries *ledgerapp.EntryService
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(entries *ledgerapp.EntryService) *EntryHandler {
	return &EntryHandler{entries: entries}
}

// Create godoc
//
//	@Summary		Record a charge or payment on a package
//	@Description	Amount accepts a JSON number or a numeric string and must be positive
//	@Tags			entries
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Package ID"
//	@Param			request	body		ledgerapp.CreateEntryRequest	true	"Entry"
//	@Success		201		{object}	dto.Response{data=ledgerapp.EntryResponse}
//	@Failure		400		{object}	dto.Response{error=dto.ErrorInfo}
//	@Failure		404		{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/packages/{id}/charges [post]
//	@Router			/packages/{id}/payments [post]
func (h *EntryHandler) Create(c *gin.Context) {
	packageID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.CreateEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.entries.Create(c.Request.Context(), packageID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// ListByPackage godoc
//
//	@Summary	List a package's charges or payments
//	@Tags		entries
//	@Produce	json
//	@Param		id	path		int	true	"Package ID"
//	@Success	200	{object}	dto.Response{data=[]ledgerapp.EntryResponse}
//	@Router		/packages/{id}/charges [get]
//	@Router		/packages/{id}/payments [get]
func (h *EntryHandler) ListByPackage(c *gin.Context) {
	packageID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	entries, err := h.entries.ListByPackage(c.Request.Context(), packageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Update godoc
//
//	@Summary	Edit a charge or payment
//	@Tags		entries
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int								true	"Entry ID"
//	@Param		request	body		ledgerapp.UpdateEntryRequest	true	"Fields to change"
//	@Success	200		{object}	dto.Response{data=ledgerapp.EntryResponse}
//	@Router		/charges/{id} [patch]
//	@Router		/payments/{id} [patch]
func (h *EntryHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.UpdateEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	entry, err := h.entries.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Delete godoc
//
//	@Summary	Delete a charge or payment
//	@Tags		entries
//	@Param		id	path	int	true	"Entry ID"
//	@Success	204
//	@Router		/charges/{id} [delete]
//	@Router		/payments/{id} [delete]
func (h *EntryHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.entries.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
