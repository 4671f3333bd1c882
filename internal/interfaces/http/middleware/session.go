package middleware

import (
	"net/http"
	"strings"

	"github.com/ecsledger/backend/internal/infrastructure/auth"
	"github.com/ecsledger/backend/internal/infrastructure/logger"
	"github.com/ecsledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionClaimsKey is the gin context key holding *auth.SessionClaims
const SessionClaimsKey = "session_claims"

const apiPrefix = "/api/"

// SessionConfig wires the session middleware
type SessionConfig struct {
	Sessions    *auth.SessionService
	Revocations auth.RevocationList
	CookieName  string
	Logger      *zap.Logger
}

// Session guards every route with the access gate. A browser request that
// is turned away is redirected to the login page; API requests get a 401.
// A token that passes the gate but was revoked by logout is turned away the
// same way. When the revocation store cannot be reached the request is
// refused.
func Session(cfg SessionConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		token := extractToken(c, cfg.CookieName)
		decision := cfg.Sessions.Gate(c.Request.URL.Path, token)
		if !decision.Allowed() {
			rejectSession(c, decision.Location)
			return
		}

		claims := decision.Claims
		if claims == nil {
			// public path
			c.Next()
			return
		}

		revoked, err := cfg.Revocations.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Warn("Revocation check failed", zap.Error(err), zap.String("jti", claims.ID))
		}
		if err != nil || revoked {
			rejectSession(c, auth.LoginPath)
			return
		}

		c.Set(SessionClaimsKey, claims)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

func extractToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			return token
		}
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func rejectSession(c *gin.Context, location string) {
	if strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeSessionRejected,
			"Authentication required",
			GetRequestID(c),
		))
		return
	}
	c.Redirect(http.StatusFound, location)
	c.Abort()
}

// GetSessionClaims returns the claims stored by Session
func GetSessionClaims(c *gin.Context) (*auth.SessionClaims, bool) {
	v, ok := c.Get(SessionClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.SessionClaims)
	return claims, ok && claims != nil
}

// GetSessionUserID returns the authenticated user's id, zero if none
func GetSessionUserID(c *gin.Context) uint64 {
	if claims, ok := GetSessionClaims(c); ok {
		return claims.UserID
	}
	return 0
}
