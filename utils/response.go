package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Created is Success with 201.
func Created(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusCreated, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// StatusCoder is implemented by errors that know their HTTP status.
type StatusCoder interface {
	error
	HTTPStatus() int
}

// Fail writes err with the status it carries. Anything else is an opaque 500
// and is logged, since its text may leak internals.
func Fail(ctx *gin.Context, err error) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		status := sc.HTTPStatus()
		if status >= http.StatusInternalServerError {
			Logger.Error("request failed", zap.String("path", ctx.Request.URL.Path), zap.Error(err))
		}
		Error(ctx, status, status*100, sc.Error())
		return
	}
	Logger.Error("unhandled error", zap.String("path", ctx.Request.URL.Path), zap.Error(err))
	Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
}
