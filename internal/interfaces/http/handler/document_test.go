package handler_test

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	ledgerapp "github.com/ecsledger/backend/internal/application/ledger"
	"github.com/ecsledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func documentPath(id uint64, suffix string) string {
	return "/api/v1/documents/" + strconv.FormatUint(id, 10) + suffix
}

func TestDocumentUploadForPackage(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Globex", "CLIENT")
	pkg := api.createPackage(t, company.ID, "Tax filing")

	w := api.upload(t, packagePath(pkg.ID, "/documents"), "invoice 01.pdf", "application/pdf", []byte("%PDF-1.7"), "Invoice")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	doc := decodeData[ledgerapp.DocumentResponse](t, w)
	assert.Equal(t, "Invoice", doc.Name)
	assert.Equal(t, "PACKAGE", doc.OwnerKind)
	require.NotNil(t, doc.PackageID)
	assert.Equal(t, pkg.ID, *doc.PackageID)
	assert.Nil(t, doc.CompanyID)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.True(t, strings.HasPrefix(doc.URL, "/static/uploads/documents/package/"), doc.URL)

	stored := filepath.Join(api.storageDir, filepath.FromSlash(strings.TrimPrefix(doc.URL, "/static/uploads/")))
	content, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(content))

	w = api.do(t, http.MethodGet, packagePath(pkg.ID, "/documents"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]ledgerapp.DocumentResponse](t, w), 1)

	w = api.do(t, http.MethodGet, packagePath(pkg.ID, ""), nil)
	assert.True(t, decodeData[ledgerapp.PackageResponse](t, w).NeedsReview)
}

func TestDocumentUploadDefaultsNameToFileName(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Hooli", "VENDOR")

	w := api.upload(t, companyPath(company.ID, "/documents"), "contract.txt", "text/plain", []byte("terms"), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	doc := decodeData[ledgerapp.DocumentResponse](t, w)
	assert.Equal(t, "contract.txt", doc.Name)
	assert.Equal(t, "COMPANY", doc.OwnerKind)
	require.NotNil(t, doc.CompanyID)
	assert.Equal(t, company.ID, *doc.CompanyID)
}

func TestDocumentUploadRejections(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Pied Piper", "CLIENT")

	tests := []struct {
		name        string
		path        string
		contentType string
		content     []byte
		status      int
	}{
		{"content type not allowed", companyPath(company.ID, "/documents"), "image/svg+xml", []byte("<svg/>"), http.StatusBadRequest},
		{"empty file", companyPath(company.ID, "/documents"), "text/plain", nil, http.StatusBadRequest},
		{"missing owner", companyPath(404, "/documents"), "text/plain", []byte("x"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.upload(t, tt.path, "file", tt.contentType, tt.content, "")
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestDocumentRenameDownloadDelete(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Stark", "CLIENT")

	w := api.upload(t, companyPath(company.ID, "/documents"), "scan.png", "image/png", []byte("png"), "Scan")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	doc := decodeData[ledgerapp.DocumentResponse](t, w)

	w = api.do(t, http.MethodPatch, documentPath(doc.ID, ""), map[string]string{"name": "Passport scan"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Passport scan", decodeData[ledgerapp.DocumentResponse](t, w).Name)

	w = api.do(t, http.MethodPatch, documentPath(doc.ID, ""), map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, documentPath(doc.ID, "/download?format=json"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, doc.URL, decodeData[ledgerapp.DownloadURLResponse](t, w).URL)

	w = api.do(t, http.MethodGet, documentPath(doc.ID, "/download"), nil)
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, doc.URL, w.Header().Get("Location"))

	w = api.do(t, http.MethodDelete, documentPath(doc.ID, ""), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, documentPath(doc.ID, "/download"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decode(t, w).Error.Code)

	w = api.do(t, http.MethodGet, companyPath(company.ID, "/documents"), nil)
	assert.Empty(t, decodeData[[]ledgerapp.DocumentResponse](t, w))
}

func TestDocumentUploadWithoutFile(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Wayne", "CLIENT")

	w := api.do(t, http.MethodPost, companyPath(company.ID, "/documents"), map[string]string{"name": "nothing"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeBadRequest, decode(t, w).Error.Code)
}

func TestDocumentUploadAboveJSONBodyLimit(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Hooli", "CLIENT")
	pkg := api.createPackage(t, company.ID, "Due diligence")

	scan := bytes.Repeat([]byte("%"), 2<<20)
	w := api.upload(t, packagePath(pkg.ID, "/documents"), "scan.pdf", "application/pdf", scan, "Signed scan")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	doc := decodeData[ledgerapp.DocumentResponse](t, w)
	info, err := os.Stat(filepath.Join(api.storageDir, filepath.FromSlash(strings.TrimPrefix(doc.URL, "/static/uploads/"))))
	require.NoError(t, err)
	assert.Equal(t, int64(len(scan)), info.Size())

	w = api.upload(t, companyPath(company.ID, "/documents"), "scan.pdf", "application/pdf", scan, "")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestDocumentUploadSizeCaps(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Massive Dynamic", "CLIENT")

	// fits the request cap but not the file cap
	w := api.upload(t, companyPath(company.ID, "/documents"), "big.zip", "application/zip", make([]byte, testUploadLimit+1), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decode(t, w).Error.Code)

	w = api.upload(t, companyPath(company.ID, "/documents"), "huge.zip", "application/zip", make([]byte, testUploadLimit+testBodyLimit+1), "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrCodePayloadTooLarge, decode(t, w).Error.Code)
}

func TestJSONBodyAboveLimitRejected(t *testing.T) {
	api := newLedgerAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/companies", map[string]string{
		"name":           strings.Repeat("x", testBodyLimit),
		"classification": "CLIENT",
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, dto.ErrCodePayloadTooLarge, decode(t, w).Error.Code)
}
