package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/lostfound/config"
	"github.com/cppla/lostfound/middleware"
	"github.com/cppla/lostfound/services"
	"github.com/cppla/lostfound/utils"
)

// AuthController handles login, logout and the current identity.
type AuthController struct {
	users *services.UserService
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{users: users}
}

// Login verifies credentials and issues a JWT, returned in the body and as an HttpOnly cookie.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		UserID   string `json:"user_id" form:"user_id" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	user, err := a.users.Authenticate(ctx.Request.Context(), req.UserID, req.Password)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	cfg := config.Get()
	token, expiresAt, err := utils.GenerateToken(user.UserID, user.UserName, cfg.TokenTTL)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to generate token")
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middleware.TokenCookieName, token, int(time.Until(expiresAt).Seconds()), "/", "", ctx.Request.TLS != nil, true)
	utils.Success(ctx, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user_id":    user.UserID,
		"user_name":  user.UserName,
		"is_admin":   a.users.IsAdmin(user),
	})
}

// Logout revokes the presented token until it would have expired and clears the cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	claims, ok := middleware.CurrentClaims(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40108, "unauthorized")
		return
	}
	expiresAt := time.Now().Add(config.Get().TokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	utils.BlacklistToken(ctx.Request.Context(), ctx.GetString(middleware.ContextTokenKey), expiresAt)

	ctx.SetCookie(middleware.TokenCookieName, "", -1, "/", "", ctx.Request.TLS != nil, true)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	user, err := a.users.Get(ctx.Request.Context(), userID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"user_id":      user.UserID,
		"user_name":    user.UserName,
		"is_admin":     a.users.IsAdmin(user),
		"is_confirmed": user.IsConfirmed,
	})
}
