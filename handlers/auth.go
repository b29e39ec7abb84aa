package handlers

import (
	"net/http"
	"strings"
	"time"

	"roaddarts/middleware"
	"roaddarts/models"
	"roaddarts/services/user"
	"roaddarts/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CookieConfig controls the auth cookies.
type CookieConfig struct {
	Domain     string
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type AuthHandler struct {
	Service     user.UserService
	Cookies     CookieConfig
	FrontendURL string
}

func NewAuthHandler(svc user.UserService, cookies CookieConfig, frontendURL string) *AuthHandler {
	return &AuthHandler{Service: svc, Cookies: cookies, FrontendURL: strings.TrimRight(frontendURL, "/")}
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	if h.Cookies.Secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(name, value, int(ttl.Seconds()), "/", h.Cookies.Domain, h.Cookies.Secure, true)
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, res *user.AuthResult) {
	h.setCookie(c, utils.AccessCookie, res.AccessToken, h.Cookies.AccessTTL)
	h.setCookie(c, utils.RefreshCookie, res.RefreshToken, h.Cookies.RefreshTTL)
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	h.setCookie(c, utils.AccessCookie, "", -time.Second)
	h.setCookie(c, utils.RefreshCookie, "", -time.Second)
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Service.Signup(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to sign up")
		return
	}
	h.setAuthCookies(c, res)
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "data": res})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Service.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to log in")
		return
	}
	h.setAuthCookies(c, res)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "data": res})
}

type googleRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

func (h *AuthHandler) Google(c *gin.Context) {
	var req googleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := h.Service.GoogleSignIn(c.Request.Context(), req.IDToken)
	if err != nil {
		respondError(c, err, "Google sign-in failed")
		return
	}
	h.setAuthCookies(c, res)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful via Google", "data": res})
}

func (h *AuthHandler) Me(c *gin.Context) {
	p, err := h.Service.Me(c.Request.Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		respondError(c, err, "Failed to load account")
		return
	}
	c.JSON(http.StatusOK, p)
}

// refreshToken reads the refresh cookie, or a JSON body for non-browser clients.
func refreshToken(c *gin.Context) string {
	if token, err := c.Cookie(utils.RefreshCookie); err == nil && token != "" {
		return token
	}
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&body)
	return body.RefreshToken
}

// Refresh handles GET /api/auth/verify-token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	res, err := h.Service.Refresh(c.Request.Context(), refreshToken(c))
	if err != nil {
		respondError(c, err, "Failed to refresh session")
		return
	}
	h.setCookie(c, utils.AccessCookie, res.AccessToken, h.Cookies.AccessTTL)
	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Service.Logout(c.Request.Context(), refreshToken(c)); err != nil {
		getLogger(c).Warn("Failed to revoke refresh token", zap.Error(err))
	}
	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// VerifyEmail redirects back to the frontend with the outcome.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	outcome := "success"
	if err := h.Service.VerifyEmail(c.Request.Context(), c.Query("token")); err != nil {
		getLogger(c).Warn("Email verification failed", zap.Error(err))
		outcome = "failed"
	}
	c.Redirect(http.StatusFound, h.FrontendURL+"/?emailverification="+outcome)
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.ResendVerification(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, "Failed to resend verification email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Verification email sent"})
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.ChangePassword(c.Request.Context(), middleware.ActorFrom(c).UserID, req); err != nil {
		respondError(c, err, "Failed to update password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, "Failed to send password reset email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent successfully"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Token == "" {
		req.Token = c.Query("token")
	}
	if err := h.Service.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, err, "Failed to reset password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
}
