package router

import (
	"github.com/ecsledger/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the endpoints of the ledger API
type Handlers struct {
	Auth      *handler.AuthHandler
	Companies *handler.CompanyHandler
	Packages  *handler.PackageHandler
	Charges   *handler.EntryHandler
	Payments  *handler.EntryHandler
	Documents *handler.DocumentHandler
	Stats     *handler.StatsHandler
	System    *handler.SystemHandler
}

// RouteLimits are the guards installed in front of API routes. A nil field
// installs nothing.
type RouteLimits struct {
	// Auth throttles signup and login attempts
	Auth gin.HandlerFunc
	// Body caps request bodies on every group except uploads
	Body gin.HandlerFunc
	// Upload caps the multipart document upload routes
	Upload gin.HandlerFunc
}

func limitedGroup(name, prefix string, limit gin.HandlerFunc) *DomainGroup {
	dg := NewDomainGroup(name, prefix)
	if limit != nil {
		dg.Use(limit)
	}
	return dg
}

// LedgerGroups builds the API route table. Document uploads live in their
// own group so the shared body cap never runs ahead of the upload cap.
func LedgerGroups(h Handlers, limits RouteLimits) []RouteRegistrar {
	credentials := func(next gin.HandlerFunc) []gin.HandlerFunc {
		if limits.Auth == nil {
			return []gin.HandlerFunc{next}
		}
		return []gin.HandlerFunc{limits.Auth, next}
	}

	auth := limitedGroup("auth", "/auth", limits.Body)
	auth.POST("/signup", credentials(h.Auth.Signup)...)
	auth.POST("/login", credentials(h.Auth.Login)...)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)

	companies := limitedGroup("companies", "/companies", limits.Body)
	companies.GET("", h.Companies.List)
	companies.POST("", h.Companies.Create)
	companies.GET("/:id", h.Companies.GetByID)
	companies.PUT("/:id", h.Companies.Update)
	companies.DELETE("/:id", h.Companies.Delete)
	companies.GET("/:id/due", h.Companies.Due)
	companies.POST("/:id/review", h.Companies.MarkReviewed)
	companies.GET("/:id/packages", h.Packages.ListByCompany)
	companies.POST("/:id/packages", h.Packages.Create)
	companies.GET("/:id/documents", h.Documents.ListForCompany)

	packages := limitedGroup("packages", "/packages", limits.Body)
	packages.GET("/:id", h.Packages.GetByID)
	packages.PUT("/:id", h.Packages.Update)
	packages.DELETE("/:id", h.Packages.Delete)
	packages.GET("/:id/due", h.Packages.Due)
	packages.POST("/:id/review", h.Packages.MarkReviewed)
	packages.GET("/:id/charges", h.Charges.ListByPackage)
	packages.POST("/:id/charges", h.Charges.Create)
	packages.GET("/:id/payments", h.Payments.ListByPackage)
	packages.POST("/:id/payments", h.Payments.Create)
	packages.GET("/:id/documents", h.Documents.ListForPackage)

	uploads := limitedGroup("uploads", "", limits.Upload)
	uploads.POST("/companies/:id/documents", h.Documents.UploadForCompany)
	uploads.POST("/packages/:id/documents", h.Documents.UploadForPackage)

	charges := limitedGroup("charges", "/charges", limits.Body)
	charges.PATCH("/:id", h.Charges.Update)
	charges.DELETE("/:id", h.Charges.Delete)

	payments := limitedGroup("payments", "/payments", limits.Body)
	payments.PATCH("/:id", h.Payments.Update)
	payments.DELETE("/:id", h.Payments.Delete)

	documents := limitedGroup("documents", "/documents", limits.Body)
	documents.PATCH("/:id", h.Documents.Rename)
	documents.DELETE("/:id", h.Documents.Delete)
	documents.GET("/:id/download", h.Documents.Download)

	stats := limitedGroup("stats", "/stats", limits.Body)
	stats.GET("", h.Stats.Get)

	system := limitedGroup("system", "/system", limits.Body)
	system.GET("/info", h.System.GetSystemInfo)

	return []RouteRegistrar{auth, companies, packages, uploads, charges, payments, documents, stats, system}
}
