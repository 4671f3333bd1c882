package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/ecsledger/backend/internal/application/identity"
	"github.com/ecsledger/backend/internal/infrastructure/config"
	"github.com/ecsledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles signup, login and logout. Sessions travel in an
// HttpOnly cookie; the token is echoed in the body for API clients.
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	cookie      config.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, cookie config.CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "session"
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &AuthHandler{authService: authService, cookie: cookie}
}

// LogoutResponse confirms a logout
type LogoutResponse struct {
	Message string `json:"message"`
}

// Signup godoc
//
//	@Summary	Create an operator account
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		identity.SignupInput	true	"Credentials"
//	@Success	201		{object}	dto.Response{data=identity.SessionResult}
//	@Failure	400		{object}	dto.Response{error=dto.ErrorInfo}
//	@Failure	409		{object}	dto.Response{error=dto.ErrorInfo}
//	@Router		/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req identity.SignupInput
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	h.Created(c, result)
}

// Login godoc
//
//	@Summary	Sign in
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		identity.LoginInput	true	"Credentials"
//	@Success	200		{object}	dto.Response{data=identity.SessionResult}
//	@Failure	401		{object}	dto.Response{error=dto.ErrorInfo}
//	@Failure	429		{object}	dto.Response{error=dto.ErrorInfo}
//	@Router		/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginInput
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	h.Success(c, result)
}

// Logout godoc
//
//	@Summary		Sign out
//	@Description	Revokes the current session and clears the cookie
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=LogoutResponse}
//	@Failure		401	{object}	dto.Response{error=dto.ErrorInfo}
//	@Router			/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetSessionClaims(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	input := identity.LogoutInput{UserID: claims.UserID, JTI: claims.ID}
	if claims.ExpiresAt != nil {
		input.ExpiresAt = claims.ExpiresAt.Time
	}
	if err := h.authService.Logout(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearSessionCookie(c)
	h.Success(c, LogoutResponse{Message: "Logged out successfully"})
}

// Me godoc
//
//	@Summary	Current operator
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	dto.Response{data=identity.UserInfo}
//	@Failure	401	{object}	dto.Response{error=dto.ErrorInfo}
//	@Router		/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.GetSessionUserID(c)
	if userID == 0 {
		h.Unauthorized(c, "Authentication required")
		return
	}

	user, err := h.authService.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(h.cookie.Name, token, maxAge, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(sameSite(h.cookie.SameSite))
	c.SetCookie(h.cookie.Name, "", -1, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}

func sameSite(policy string) http.SameSite {
	switch strings.ToLower(policy) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
