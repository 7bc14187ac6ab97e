package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/lostfound/config"
	"github.com/cppla/lostfound/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.Set(config.AppConfig{Server: config.Server{JWTSecret: "middleware-secret"}})
	os.Exit(m.Run())
}

func authEngine() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(), func(ctx *gin.Context) {
		id, _ := CurrentUserID(ctx)
		ctx.String(http.StatusOK, id)
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	token, _, err := utils.GenerateToken("kim", "Kim", time.Hour)
	require.NoError(t, err)
	r := authEngine()

	cases := []struct {
		name   string
		header string
		cookie string
		status int
		body   string
	}{
		{name: "bearer", header: "Bearer " + token, status: http.StatusOK, body: "kim"},
		{name: "lowercase scheme", header: "bearer " + token, status: http.StatusOK, body: "kim"},
		{name: "cookie", cookie: token, status: http.StatusOK, body: "kim"},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer   ", status: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "header beats cookie", header: "Bearer nope", cookie: token, status: http.StatusUnauthorized},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			if c.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: c.cookie})
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, c.status, w.Code)
			if c.body != "" {
				assert.Equal(t, c.body, w.Body.String())
			}
		})
	}
}

func TestAuthRejectsRevokedToken(t *testing.T) {
	token, expiresAt, err := utils.GenerateToken("lee", "Lee", time.Hour)
	require.NoError(t, err)
	utils.BlacklistToken(context.Background(), token, expiresAt)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	authEngine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "40104")
}

func TestIPRateLimiterPerIP(t *testing.T) {
	l := NewIPRateLimiter(4)
	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"), "burst is half the per-minute rate")
	assert.True(t, l.Allow("2.2.2.2"))
}

func TestRateLimitSkipsReads(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(NewIPRateLimiter(1)))
	r.Any("/x", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

	do := func(method string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, "/x", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, do(http.MethodPost))
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodPost))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, do(http.MethodGet))
	}
}
