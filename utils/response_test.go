package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr struct {
	status int
	msg    string
}

func (e statusErr) Error() string   { return e.msg }
func (e statusErr) HTTPStatus() int { return e.status }

func failWith(t *testing.T, err error) (int, JSONResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/api/v1/x", nil)

	Fail(ctx, err)

	var body JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestFailUsesCarriedStatus(t *testing.T) {
	status, body := failWith(t, statusErr{status: http.StatusNotFound, msg: "post not found"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 40400, body.Code)
	assert.Equal(t, "post not found", body.Message)

	wrapped := errors.Join(statusErr{status: http.StatusForbidden, msg: "admins only"})
	status, body = failWith(t, wrapped)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, 40300, body.Code)
}

func TestFailHidesUnknownErrors(t *testing.T) {
	status, body := failWith(t, errors.New("dial tcp 10.0.0.5:3306: refused"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, 50000, body.Code)
	assert.Equal(t, "internal server error", body.Message)
}
