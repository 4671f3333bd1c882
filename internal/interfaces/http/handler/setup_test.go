package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"
	"time"

	identityapp "github.com/ecsledger/backend/internal/application/identity"
	ledgerapp "github.com/ecsledger/backend/internal/application/ledger"
	"github.com/ecsledger/backend/internal/infrastructure/auth"
	"github.com/ecsledger/backend/internal/infrastructure/config"
	"github.com/ecsledger/backend/internal/infrastructure/persistence"
	"github.com/ecsledger/backend/internal/infrastructure/storage"
	"github.com/ecsledger/backend/internal/interfaces/http/dto"
	"github.com/ecsledger/backend/internal/interfaces/http/handler"
	"github.com/ecsledger/backend/internal/interfaces/http/middleware"
	"github.com/ecsledger/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testUsername = "operator"
	testPassword = "correct-horse-battery"

	// match the production defaults for http.max_body_size and
	// http.max_upload_size
	testBodyLimit   = 1 << 20
	testUploadLimit = 25 << 20
)

// ledgerAPI is the full HTTP stack over an in-memory sqlite database and a
// stub object store in a temp dir
type ledgerAPI struct {
	engine     *gin.Engine
	db         *persistence.Database
	sessions   *auth.SessionService
	storageDir string
	token      string
}

func newLedgerAPI(t *testing.T) *ledgerAPI {
	t.Helper()
	log := zap.NewNop()

	db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.AutoMigrate())

	companies := persistence.NewGormCompanyRepository(db.DB)
	packages := persistence.NewGormPackageRepository(db.DB)
	charges := persistence.NewGormChargeRepository(db.DB)
	payments := persistence.NewGormPaymentRepository(db.DB)
	documents := persistence.NewGormDocumentRepository(db.DB)
	users := persistence.NewGormUserRepository(db.DB)

	dir := t.TempDir()
	store := storage.NewStubObjectStorage(dir, "/static/uploads")

	sessions := auth.NewSessionService(config.JWTConfig{
		Secret:     "handler-test-secret-0123456789abcdef",
		SessionTTL: time.Hour,
		Issuer:     "ecs-ledger",
	})
	revocations := auth.NewInMemoryRevocationList()

	propagator := ledgerapp.NewPropagator(packages, companies, nil, log)
	balances := ledgerapp.NewBalanceService(charges, payments, companies, propagator, nil, log)
	authService := identityapp.NewAuthService(users, sessions, revocations, log)

	handlers := router.Handlers{
		Auth:      handler.NewAuthHandler(authService, config.CookieConfig{Name: "session", Path: "/", SameSite: "lax"}),
		Companies: handler.NewCompanyHandler(ledgerapp.NewCompanyService(companies, log), balances),
		Packages:  handler.NewPackageHandler(ledgerapp.NewPackageService(packages, propagator, log), balances),
		Charges:   handler.NewEntryHandler(ledgerapp.NewEntryService(charges, propagator, nil, log)),
		Payments:  handler.NewEntryHandler(ledgerapp.NewEntryService(payments, propagator, nil, log)),
		Documents: handler.NewDocumentHandler(ledgerapp.NewDocumentService(documents, store, propagator, nil, log)),
		Stats:     handler.NewStatsHandler(balances),
		System:    handler.NewSystemHandler(db, "ecs-ledger", "test"),
	}

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Session(middleware.SessionConfig{
			Sessions:    sessions,
			Revocations: revocations,
			CookieName:  "session",
			Logger:      log,
		}),
	)
	engine.GET("/health", handlers.System.Health)
	router.NewRouter(engine).Register(router.LedgerGroups(handlers, router.RouteLimits{
		Body:   middleware.BodyLimit(testBodyLimit),
		Upload: middleware.BodyLimit(testUploadLimit + testBodyLimit),
	})...).Setup()

	result, err := authService.Signup(context.Background(), identityapp.SignupInput{
		Username: testUsername,
		Password: testPassword,
	})
	require.NoError(t, err)

	return &ledgerAPI{
		engine:     engine,
		db:         db,
		sessions:   sessions,
		storageDir: dir,
		token:      result.Token,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

// do sends an authenticated JSON request
func (a *ledgerAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.AddCookie(&http.Cookie{Name: "session", Value: a.token})
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// upload posts a multipart file with the given part content type
func (a *ledgerAPI) upload(t *testing.T, path, fileName, contentType string, content []byte, name string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	if name != "" {
		require.NoError(t, mw.WriteField("name", name))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "session", Value: a.token})
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// decodeData unmarshals the envelope's data into T
func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (a *ledgerAPI) createCompany(t *testing.T, name, classification string) ledgerapp.CompanyResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/companies", map[string]string{
		"name":           name,
		"classification": classification,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[ledgerapp.CompanyResponse](t, w)
}

func (a *ledgerAPI) createPackage(t *testing.T, companyID uint64, description string) ledgerapp.PackageResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, companyPath(companyID, "/packages"), map[string]string{
		"description": description,
		"date":        "2026-03-01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[ledgerapp.PackageResponse](t, w)
}

func (a *ledgerAPI) createEntry(t *testing.T, packageID uint64, kind string, amount any) ledgerapp.EntryResponse {
	t.Helper()
	w := a.do(t, http.MethodPost, packagePath(packageID, "/"+kind), map[string]any{
		"description": kind,
		"amount":      amount,
		"date":        "2026-03-02",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeData[ledgerapp.EntryResponse](t, w)
}

func companyPath(id uint64, suffix string) string {
	return "/api/v1/companies/" + strconv.FormatUint(id, 10) + suffix
}

func packagePath(id uint64, suffix string) string {
	return "/api/v1/packages/" + strconv.FormatUint(id, 10) + suffix
}

func entryPath(kind string, id uint64) string {
	return "/api/v1/" + kind + "/" + strconv.FormatUint(id, 10)
}
