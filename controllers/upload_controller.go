package controllers

import (
	"errors"
	"mime"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"github.com/cppla/lostfound/services"
	"github.com/cppla/lostfound/utils"
)

// UploadController streams stored images back under /static/uploads.
type UploadController struct {
	storage services.Storage
}

// NewUploadController creates a new UploadController instance.
func NewUploadController(storage services.Storage) *UploadController {
	return &UploadController{storage: storage}
}

// Serve writes the bytes of :name with a content type derived from its extension.
func (u *UploadController) Serve(ctx *gin.Context) {
	name := ctx.Param("name")
	if !services.IsUploadName(name) {
		utils.Error(ctx, http.StatusNotFound, 40440, "file not found")
		return
	}

	rc, err := u.storage.Open(ctx.Request.Context(), name)
	if err != nil {
		if errors.Is(err, services.ErrObjectNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "file not found")
			return
		}
		utils.Sugar.Errorf("open upload %s: %v", name, err)
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to read file")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ctx.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}
