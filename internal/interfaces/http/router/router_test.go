package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	stats := NewDomainGroup("stats", "/stats")
	stats.GET("", func(c *gin.Context) { c.String(http.StatusOK, "stats") })

	r.Register(stats).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/stats")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stats", w.Body.String())
}

func TestRouterMiddlewareScopedToAPI(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	r := NewRouter(engine).Use(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusUnauthorized)
	})
	stats := NewDomainGroup("stats", "/stats")
	stats.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.Register(stats).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(engine, http.MethodGet, "/api/v1/stats").Code)
}

func TestDomainGroupVerbs(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("charges", "/charges")
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
	g.GET("/:id", ok).
		POST("", ok).
		PUT("/:id", ok).
		PATCH("/:id", ok).
		DELETE("/:id", ok)

	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/charges/1"},
		{http.MethodPost, "/api/v1/charges"},
		{http.MethodPut, "/api/v1/charges/1"},
		{http.MethodPatch, "/api/v1/charges/1"},
		{http.MethodDelete, "/api/v1/charges/1"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.method, w.Body.String())
		})
	}
}

func TestDomainGroupMiddleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("auth", "/auth").Use(func(c *gin.Context) {
		c.Header("X-Group", "auth")
		c.Next()
	})
	g.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	other := NewDomainGroup("stats", "/stats")
	other.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })

	NewRouter(engine).Register(g, other).Setup()

	assert.Equal(t, "auth", serve(engine, http.MethodPost, "/api/v1/auth/login").Header().Get("X-Group"))
	assert.Empty(t, serve(engine, http.MethodGet, "/api/v1/stats").Header().Get("X-Group"))
}

func TestDomainGroupSubgroups(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("packages", "/packages")
	g.Group("charges", "/:id/charges").GET("", func(c *gin.Context) {
		c.String(http.StatusOK, "charges of "+c.Param("id"))
	})

	NewRouter(engine).Register(g).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/packages/7/charges")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "charges of 7", w.Body.String())

	assert.Equal(t, "packages", g.Name())
	assert.Equal(t, "/packages", g.Prefix())
}
