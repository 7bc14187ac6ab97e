package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/lostfound/middleware"
	"github.com/cppla/lostfound/utils"
)

// parseID reads the :id path parameter. It answers 400 itself and returns false
// when the value is not a number. Zero parses and is left to the service's 404.
func parseID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param("id")), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// parsePagination returns 0 for missing or malformed values so the service defaults apply.
func parsePagination(pageStr, limitStr string) (int, int) {
	page, _ := strconv.Atoi(strings.TrimSpace(pageStr))
	limit, _ := strconv.Atoi(strings.TrimSpace(limitStr))
	return page, limit
}

func getUserID(ctx *gin.Context) (string, bool) {
	id, ok := middleware.CurrentUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	}
	return id, ok
}
