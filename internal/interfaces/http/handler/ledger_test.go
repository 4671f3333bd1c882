package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	ledgerapp "github.com/ecsledger/backend/internal/application/ledger"
	"github.com/ecsledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyLifecycle(t *testing.T) {
	api := newLedgerAPI(t)

	created := api.createCompany(t, "Acme Holdings", "client")
	assert.Equal(t, "CLIENT", created.Classification)
	assert.NotZero(t, created.ID)

	w := api.do(t, http.MethodGet, companyPath(created.ID, ""), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acme Holdings", decodeData[ledgerapp.CompanyResponse](t, w).Name)

	w = api.do(t, http.MethodPut, companyPath(created.ID, ""), map[string]string{"name": "Acme Group"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeData[ledgerapp.CompanyResponse](t, w)
	assert.Equal(t, "Acme Group", updated.Name)
	assert.Equal(t, "CLIENT", updated.Classification)

	w = api.do(t, http.MethodDelete, companyPath(created.ID, ""), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, companyPath(created.ID, ""), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decode(t, w).Error.Code)
}

func TestCompanyListPagination(t *testing.T) {
	api := newLedgerAPI(t)
	for _, name := range []string{"Alpha", "Beta", "Gamma"} {
		api.createCompany(t, name, "VENDOR")
	}

	w := api.do(t, http.MethodGet, "/api/v1/companies?page=1&page_size=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env := decode(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(3), env.Meta.Total)
	assert.Equal(t, 2, env.Meta.TotalPages)
	assert.Len(t, decodeData[[]ledgerapp.CompanyResponse](t, w), 2)

	w = api.do(t, http.MethodGet, "/api/v1/companies?page_size=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCompanyCreateValidation(t *testing.T) {
	api := newLedgerAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/companies", map[string]string{"name": "Nameless", "classification": "PARTNER"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "classification", env.Error.Details[0].Field)
}

func TestInvalidPathID(t *testing.T) {
	api := newLedgerAPI(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/companies/abc"},
		{http.MethodGet, "/api/v1/packages/0/due"},
		{http.MethodDelete, "/api/v1/charges/-1"},
	}
	for _, tt := range tests {
		w := api.do(t, tt.method, tt.path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, tt.path)
		assert.Equal(t, dto.ErrCodeInvalidID, decode(t, w).Error.Code, tt.path)
	}
}

func TestPackageCreationFlagsCompany(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Northwind", "CLIENT")

	w := api.do(t, http.MethodPost, companyPath(company.ID, "/review"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeData[ledgerapp.CompanyResponse](t, w).NeedsReview)

	pkg := api.createPackage(t, company.ID, "Q1 audit")
	assert.Equal(t, company.ID, pkg.CompanyID)

	w = api.do(t, http.MethodGet, companyPath(company.ID, ""), nil)
	assert.True(t, decodeData[ledgerapp.CompanyResponse](t, w).NeedsReview)

	w = api.do(t, http.MethodGet, companyPath(company.ID, "/packages"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	pkgs := decodeData[[]ledgerapp.PackageResponse](t, w)
	require.Len(t, pkgs, 1)
	assert.Equal(t, "Q1 audit", pkgs[0].Description)
}

func TestPackageUnderMissingCompany(t *testing.T) {
	api := newLedgerAPI(t)

	w := api.do(t, http.MethodPost, companyPath(999, "/packages"), map[string]string{"description": "orphan"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntriesDriveDue(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Contoso", "CLIENT")
	pkg := api.createPackage(t, company.ID, "Retainer")

	api.createEntry(t, pkg.ID, "charges", 1000)
	charge := api.createEntry(t, pkg.ID, "charges", "250.50")
	api.createEntry(t, pkg.ID, "payments", 400)

	w := api.do(t, http.MethodGet, packagePath(pkg.ID, "/due"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	due := decodeData[ledgerapp.DueResponse](t, w)
	assert.InDelta(t, 1250.50, due.Charges, 0.001)
	assert.InDelta(t, 400, due.Payments, 0.001)
	assert.InDelta(t, 850.50, due.Due, 0.001)

	w = api.do(t, http.MethodPatch, entryPath("charges", charge.ID), map[string]any{"amount": 50})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	edited := decodeData[ledgerapp.EntryResponse](t, w)
	assert.True(t, edited.NeedsReview)
	assert.Equal(t, "charges", edited.Description)

	w = api.do(t, http.MethodGet, companyPath(company.ID, "/due"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 650, decodeData[ledgerapp.DueResponse](t, w).Due, 0.001)

	w = api.do(t, http.MethodGet, packagePath(pkg.ID, "/charges"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]ledgerapp.EntryResponse](t, w), 2)

	w = api.do(t, http.MethodDelete, entryPath("charges", charge.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(t, http.MethodGet, packagePath(pkg.ID, "/due"), nil)
	assert.InDelta(t, 600, decodeData[ledgerapp.DueResponse](t, w).Due, 0.001)
}

func TestEntryKindsDoNotCross(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Fabrikam", "VENDOR")
	pkg := api.createPackage(t, company.ID, "Hardware")
	payment := api.createEntry(t, pkg.ID, "payments", 10)

	w := api.do(t, http.MethodDelete, entryPath("charges", payment.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodDelete, entryPath("payments", payment.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestEntryRejectsNonNumericAmount(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Initech", "CLIENT")
	pkg := api.createPackage(t, company.ID, "Consulting")

	w := api.do(t, http.MethodPost, packagePath(pkg.ID, "/charges"), map[string]any{"amount": "ten"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decode(t, w).Error.Code)
}

func TestEntryEditStoresTrimmedDescription(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Vandelay", "CLIENT")
	pkg := api.createPackage(t, company.ID, "Import review")
	charge := api.createEntry(t, pkg.ID, "charges", 90)

	w := api.do(t, http.MethodPatch, entryPath("charges", charge.ID), map[string]any{"description": "  padded  "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "padded", decodeData[ledgerapp.EntryResponse](t, w).Description)

	w = api.do(t, http.MethodGet, packagePath(pkg.ID, "/charges"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	stored := decodeData[[]ledgerapp.EntryResponse](t, w)
	require.Len(t, stored, 1)
	assert.Equal(t, "padded", stored[0].Description)
}

func TestLedgerInputsBoundedByColumns(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Globex", "VENDOR")
	pkg := api.createPackage(t, company.ID, "Supply audit")
	payment := api.createEntry(t, pkg.ID, "payments", "10.25")
	tooLong := strings.Repeat("d", 501)

	tests := []struct {
		name   string
		method string
		path   string
		body   map[string]any
	}{
		{"package description", http.MethodPost, companyPath(company.ID, "/packages"), map[string]any{"description": tooLong}},
		{"package edit description", http.MethodPut, packagePath(pkg.ID, ""), map[string]any{"description": tooLong}},
		{"entry description", http.MethodPost, packagePath(pkg.ID, "/payments"), map[string]any{"description": tooLong, "amount": 1}},
		{"entry edit description", http.MethodPatch, entryPath("payments", payment.ID), map[string]any{"description": tooLong}},
		{"three decimal places", http.MethodPost, packagePath(pkg.ID, "/charges"), map[string]any{"amount": 10.125}},
		{"three decimal places as text", http.MethodPatch, entryPath("payments", payment.ID), map[string]any{"amount": "0.001"}},
		{"beyond the column range", http.MethodPost, packagePath(pkg.ID, "/charges"), map[string]any{"amount": "10000000000000000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, dto.ErrCodeValidation, decode(t, w).Error.Code)
		})
	}

	// rejected edits leave the payment untouched
	w := api.do(t, http.MethodGet, packagePath(pkg.ID, "/payments"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	stored := decodeData[[]ledgerapp.EntryResponse](t, w)
	require.Len(t, stored, 1)
	assert.Equal(t, "payments", stored[0].Description)
	assert.Equal(t, "10.25", stored[0].Amount.StringFixed(2))
	assert.False(t, stored[0].NeedsReview)

	// the widest storable values are accepted
	api.createEntry(t, pkg.ID, "charges", "9999999999999999.99")
	w = api.do(t, http.MethodPost, companyPath(company.ID, "/packages"), map[string]any{"description": strings.Repeat("d", 500)})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestDeleteCompanyWithPackages(t *testing.T) {
	api := newLedgerAPI(t)
	company := api.createCompany(t, "Umbrella", "CLIENT")
	api.createPackage(t, company.ID, "Open matter")

	w := api.do(t, http.MethodDelete, companyPath(company.ID, ""), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, companyPath(company.ID, ""), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPortfolioStats(t *testing.T) {
	api := newLedgerAPI(t)

	client := api.createCompany(t, "Client Co", "CLIENT")
	clientPkg := api.createPackage(t, client.ID, "Engagement")
	api.createEntry(t, clientPkg.ID, "charges", 1000)
	api.createEntry(t, clientPkg.ID, "payments", 700)

	vendor := api.createCompany(t, "Vendor Co", "VENDOR")
	vendorPkg := api.createPackage(t, vendor.ID, "Subcontract")
	api.createEntry(t, vendorPkg.ID, "charges", 300)
	api.createEntry(t, vendorPkg.ID, "payments", 200)

	w := api.do(t, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	stats := decodeData[ledgerapp.PortfolioStats](t, w)
	assert.Equal(t, int64(1), stats.TotalClients)
	assert.Equal(t, int64(1), stats.TotalVendors)
	assert.InDelta(t, 300, stats.TotalClientDue, 0.001)
	assert.InDelta(t, 100, stats.TotalVendorDue, 0.001)
	assert.InDelta(t, 500, stats.EcsIncome, 0.001)
	assert.Contains(t, w.Body.String(), `"totalClientDue"`)
}

func TestUnauthenticatedRequests(t *testing.T) {
	api := newLedgerAPI(t)

	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeSessionRejected, decode(t, w).Error.Code)

	w = httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/companies", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}
