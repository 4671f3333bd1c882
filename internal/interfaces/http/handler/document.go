package handler

import (
	"errors"
	"net/http"

	ledgerapp "github.com/ecsledger/backend/internal/application/ledger"
	"github.com/ecsledger/backend/internal/domain/ledger"
	"github.com/ecsledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// DocumentHandler handles document uploads and their metadata
type DocumentHandler struct {
	BaseHandler
	documents *ledgerapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documents *ledgerapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// UploadForCompany godoc
//
//	@Summary	Attach a document to a company
//	@Tags		documents
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		id		path		int		true	"Company ID"
//	@Param		file	formData	file	true	"File"
//	@Param		name	formData	string	false	"Display name, defaults to the file name"
//	@Success	201		{object}	dto.Response{data=ledgerapp.DocumentResponse}
//	@Failure	400		{object}	dto.Response{error=dto.ErrorInfo}
//	@Failure	413		{object}	dto.Response{error=dto.ErrorInfo}
//	@Router		/companies/{id}/documents [post]
func (h *DocumentHandler) UploadForCompany(c *gin.Context) {
	h.upload(c, ledger.OwnerCompany)
}

// UploadForPackage godoc
//
//	@Summary	Attach a document to a package
//	@Tags		documents
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		id		path		int		true	"Package ID"
//	@Param		file	formData	file	true	"File"
//	@Param		name	formData	string	false	"Display name, defaults to the file name"
//	@Success	201		{object}	dto.Response{data=ledgerapp.DocumentResponse}
//	@Router		/packages/{id}/documents [post]
func (h *DocumentHandler) UploadForPackage(c *gin.Context) {
	h.upload(c, ledger.OwnerPackage)
}

func (h *DocumentHandler) upload(c *gin.Context, kind ledger.OwnerKind) {
	ownerID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge, "Upload exceeds the request size limit")
			return
		}
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	doc, err := h.documents.Upload(c.Request.Context(), ledgerapp.UploadDocumentInput{
		Owner:       ledger.DocumentOwner{Kind: kind, ID: ownerID},
		Name:        c.PostForm("name"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, doc)
}

// ListForCompany godoc
//
//	@Summary	List a company's documents
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		int	true	"Company ID"
//	@Success	200	{object}	dto.Response{data=[]ledgerapp.DocumentResponse}
//	@Router		/companies/{id}/documents [get]
func (h *DocumentHandler) ListForCompany(c *gin.Context) {
	h.list(c, ledger.OwnerCompany)
}

// ListForPackage godoc
//
//	@Summary	List a package's documents
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		int	true	"Package ID"
//	@Success	200	{object}	dto.Response{data=[]ledgerapp.DocumentResponse}
//	@Router		/packages/{id}/documents [get]
func (h *DocumentHandler) ListForPackage(c *gin.Context) {
	h.list(c, ledger.OwnerPackage)
}

func (h *DocumentHandler) list(c *gin.Context, kind ledger.OwnerKind) {
	ownerID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	docs, err := h.documents.ListByOwner(c.Request.Context(), ledger.DocumentOwner{Kind: kind, ID: ownerID})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, docs)
}

// Rename godoc
//
//	@Summary	Rename a document
//	@Tags		documents
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int								true	"Document ID"
//	@Param		request	body		ledgerapp.RenameDocumentRequest	true	"New name"
//	@Success	200		{object}	dto.Response{data=ledgerapp.DocumentResponse}
//	@Router		/documents/{id} [patch]
func (h *DocumentHandler) Rename(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.RenameDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	doc, err := h.documents.Rename(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, doc)
}

// Delete godoc
//
//	@Summary	Delete a document and its stored file
//	@Tags		documents
//	@Param		id	path	int	true	"Document ID"
//	@Success	204
//	@Router		/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.documents.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Download godoc
//
//	@Summary		Download a document
//	@Description	Redirects to a time-limited link. With format=json the link is returned instead.
//	@Tags			documents
//	@Produce		json
//	@Param			id		path		int		true	"Document ID"
//	@Param			format	query		string	false	"json to return the link"
//	@Success		200		{object}	dto.Response{data=ledgerapp.DownloadURLResponse}
//	@Success		307
//	@Router			/documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	link, err := h.documents.DownloadURL(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if c.Query("format") == "json" {
		h.Success(c, link)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, link.URL)
}
