package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/lostfound/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUserNameKey stores the display name inside Gin context.
	ContextUserNameKey = "user_name"
	// ContextClaimsKey stores the parsed *utils.Claims.
	ContextClaimsKey = "jwt_claims"
	// ContextTokenKey stores the raw token so logout can revoke it.
	ContextTokenKey = "jwt_token"

	// TokenCookieName is the HttpOnly cookie set at login.
	TokenCookieName = "token"
)

// AuthRequired ensures the request carries a valid JWT, either as a Bearer
// header or in the login cookie. The header wins when both are present.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, code, msg := extractToken(ctx)
		if tokenString == "" {
			utils.Error(ctx, http.StatusUnauthorized, code, msg)
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(ctx.Request.Context(), tokenString) {
			utils.Error(ctx, http.StatusUnauthorized, 40104, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(tokenString)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40105, "invalid token")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUserNameKey, claims.UserName)
		ctx.Set(ContextClaimsKey, claims)
		ctx.Set(ContextTokenKey, tokenString)
		ctx.Next()
	}
}

func extractToken(ctx *gin.Context) (string, int, string) {
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", 40102, "invalid authorization header format"
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			return "", 40103, "empty bearer token"
		}
		return token, 0, ""
	}
	if cookie, err := ctx.Cookie(TokenCookieName); err == nil && cookie != "" {
		return cookie, 0, ""
	}
	return "", 40101, "authentication required"
}

// CurrentUserID returns the verified user id set by AuthRequired.
func CurrentUserID(ctx *gin.Context) (string, bool) {
	id := ctx.GetString(ContextUserIDKey)
	return id, id != ""
}

// CurrentClaims returns the verified claims set by AuthRequired.
func CurrentClaims(ctx *gin.Context) (*utils.Claims, bool) {
	v, ok := ctx.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
