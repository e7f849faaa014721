package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Khizarkk7/storefront-backend/services/auth-service/models"
	"github.com/Khizarkk7/storefront-backend/services/auth-service/services"
	apperrors "github.com/Khizarkk7/storefront-backend/services/common/errors"
	"github.com/Khizarkk7/storefront-backend/services/common/middleware"
)

const (
	AccessCookie  = "token"
	RefreshCookie = "refresh_token"
)

// CookieConfig controls the HttpOnly token cookies.
type CookieConfig struct {
	Domain string
	Secure bool
}

type AuthController struct {
	authService services.AuthService
	cookies     CookieConfig
}

func NewAuthController(authService services.AuthService, cookies CookieConfig) *AuthController {
	return &AuthController{authService: authService, cookies: cookies}
}

// Register handles POST /auth/register.
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}

	user, svcErr := ac.authService.Register(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Account created successfully", "user": user})
}

// Login handles POST /auth/login.
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}

	res, svcErr := ac.authService.Login(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ac.writeSession(c, res, "Logged in successfully")
}

// Refresh handles POST /auth/refresh; the token comes from the cookie or the body.
func (ac *AuthController) Refresh(c *gin.Context) {
	res, svcErr := ac.authService.Refresh(c.Request.Context(), refreshTokenFrom(c))
	if svcErr != nil {
		ac.clearCookies(c)
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ac.writeSession(c, res, "Token refreshed")
}

// Logout handles POST /auth/logout.
func (ac *AuthController) Logout(c *gin.Context) {
	if svcErr := ac.authService.Logout(c.Request.Context(), refreshTokenFrom(c)); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	ac.clearCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ForgotPassword handles POST /auth/forgot-password. The response does not
// depend on whether the account exists.
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	if svcErr := ac.authService.ForgotPassword(c.Request.Context(), req.Email); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If the email is registered, a reset code has been sent"})
}

// ResetPassword handles POST /auth/reset-password.
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": apperrors.Details(err)})
		return
	}
	if svcErr := ac.authService.ResetPassword(c.Request.Context(), &req); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset"})
}

// Me handles GET /auth/me.
func (ac *AuthController) Me(c *gin.Context) {
	user, svcErr := ac.authService.Me(c.Request.Context(), middleware.CurrentIdentity(c).UserID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Roles handles GET /auth/roles.
func (ac *AuthController) Roles(c *gin.Context) {
	roles, svcErr := ac.authService.Roles(c.Request.Context())
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

func (ac *AuthController) writeSession(c *gin.Context, res *models.LoginResult, msg string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, res.Tokens.AccessToken, maxAge(res.Tokens.AccessExpiresAt), "/", ac.cookies.Domain, ac.cookies.Secure, true)
	c.SetCookie(RefreshCookie, res.Tokens.RefreshToken, maxAge(res.Tokens.RefreshExpiresAt), "/", ac.cookies.Domain, ac.cookies.Secure, true)
	c.JSON(http.StatusOK, gin.H{
		"message":       msg,
		"token":         res.Tokens.AccessToken,
		"refresh_token": res.Tokens.RefreshToken,
		"expires_at":    res.Tokens.AccessExpiresAt,
		"user":          res.User,
	})
}

func (ac *AuthController) clearCookies(c *gin.Context) {
	c.SetCookie(AccessCookie, "", -1, "/", ac.cookies.Domain, ac.cookies.Secure, true)
	c.SetCookie(RefreshCookie, "", -1, "/", ac.cookies.Domain, ac.cookies.Secure, true)
}

func refreshTokenFrom(c *gin.Context) string {
	if v, err := c.Cookie(RefreshCookie); err == nil && v != "" {
		return v
	}
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&body)
	return body.RefreshToken
}

func maxAge(exp time.Time) int {
	if s := int(time.Until(exp).Seconds()); s > 0 {
		return s
	}
	return 0
}
