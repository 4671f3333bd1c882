package handler

import (
	"net/http"

	ledgerapp "github.com/ecsledger/backend/internal/application/ledger"
	"github.com/ecsledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CompanyHandler handles company endpoints
type CompanyHandler struct {
	BaseHandler
	companies *ledgerapp.CompanyService
	balances  *ledgerapp.BalanceService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companies *ledgerapp.CompanyService, balances *ledgerapp.BalanceService) *CompanyHandler {
	return &CompanyHandler{companies: companies, balances: balances}
}

// List godoc
//
//	@Summary		List companies
//	@Tags			companies
//	@Produce		json
//	@Param			search		query		string	false	"Name contains"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	dto.Response{data=[]ledgerapp.CompanyResponse}
//	@Failure		400			{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/companies [get]
func (h *CompanyHandler) List(c *gin.Context) {
	var filter ledgerapp.CompanyListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "Invalid query parameters")
		return
	}

	page, err := h.companies.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListResponse(page))
}

// Create godoc
//
//	@Summary		Create a company
//	@Tags			companies
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ledgerapp.CreateCompanyRequest	true	"Company"
//	@Success		201		{object}	dto.Response{data=ledgerapp.CompanyResponse}
//	@Failure		400		{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/companies [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var req ledgerapp.CreateCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	company, err := h.companies.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, company)
}

// GetByID godoc
//
//	@Summary		Get a company
//	@Tags			companies
//	@Produce		json
//	@Param			id	path		int	true	"Company ID"
//	@Success		200	{object}	dto.Response{data=ledgerapp.CompanyResponse}
//	@Failure		404	{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/companies/{id} [get]
func (h *CompanyHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	company, err := h.companies.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Update godoc
//
//	@Summary		Update a company
//	@Tags			companies
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int								true	"Company ID"
//	@Param			request	body		ledgerapp.UpdateCompanyRequest	true	"Fields to change"
//	@Success		200		{object}	dto.Response{data=ledgerapp.CompanyResponse}
//	@Failure		404		{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/companies/{id} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.UpdateCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	company, err := h.companies.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Delete godoc
//
//	@Summary		Delete a company
//	@Description	Fails while the company still has packages or documents
//	@Tags			companies
//	@Param			id	path	int	true	"Company ID"
//	@Success		204
//	@Failure		400	{object}	dto.Response{error=dto.ErrorInfo}
//	@Failure		404	{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/companies/{id} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.companies.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// MarkReviewed godoc
//
//	@Summary		Clear the company's review flag
//	@Tags			companies
//	@Produce		json
//	@Param			id	path		int	true	"Company ID"
//	@Success		200	{object}	dto.Response{data=ledgerapp.CompanyResponse}
//	@Router			/companies/{id}/review [post]
func (h *CompanyHandler) MarkReviewed(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	company, err := h.companies.MarkReviewed(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Due godoc
//
//	@Summary		Outstanding balance of a company across its packages
//	@Tags			companies
//	@Produce		json
//	@Param			id	path		int	true	"Company ID"
//	@Success		200	{object}	dto.Response{data=ledgerapp.DueResponse}
//	@Failure		404	{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/companies/{id}/due [get]
func (h *CompanyHandler) Due(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	due, err := h.balances.CompanyDue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, due)
}

