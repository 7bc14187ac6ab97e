package controllers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/lostfound/services"
	"github.com/cppla/lostfound/utils"
)

// imagesField is the multipart field carrying attachments.
const imagesField = "images"

// PostController exposes one board over HTTP.
type PostController[T any, P services.PostPtr[T]] struct {
	svc *services.ListingService[T, P]
}

// NewPostController creates a PostController for svc's board.
func NewPostController[T any, P services.PostPtr[T]](svc *services.ListingService[T, P]) *PostController[T, P] {
	return &PostController[T, P]{svc: svc}
}

// Register mounts the board routes. Mutations go through auth.
func (p *PostController[T, P]) Register(group *gin.RouterGroup, auth gin.HandlerFunc) {
	group.GET("", p.List)
	group.GET("/:id", p.Get)
	group.POST("", auth, p.Create)
	group.PUT("/:id", auth, p.Update)
	group.DELETE("/:id", auth, p.Delete)
}

// List returns a page of posts filtered by the optional keyword.
func (p *PostController[T, P]) List(ctx *gin.Context) {
	page, limit := parsePagination(ctx.Query("page"), ctx.Query("limit"))
	result, err := p.svc.List(ctx.Request.Context(), page, limit, ctx.Query("keyword"))
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// Get returns one post and counts the view.
func (p *PostController[T, P]) Get(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	post, err := p.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, post)
}

// Create accepts multipart form fields plus "images" files, or a JSON body without files.
func (p *PostController[T, P]) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}

	post := P(new(T))
	if err := ctx.ShouldBind(post); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	var files []*multipart.FileHeader
	if form, err := ctx.MultipartForm(); err == nil && form != nil {
		files = form.File[imagesField]
	}

	id, err := p.svc.Create(ctx.Request.Context(), userID, post, files)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Created(ctx, gin.H{"id": id, "image_urls": post.Base().ImageURLs})
}

// Update applies a partial update from a JSON object or form fields.
func (p *PostController[T, P]) Update(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	fields, ok := bindFields(ctx)
	if !ok {
		return
	}

	post, err := p.svc.Update(ctx.Request.Context(), userID, id, fields)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, post)
}

// Delete removes a post.
func (p *PostController[T, P]) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := p.svc.Delete(ctx.Request.Context(), userID, id); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// bindFields turns the request body into a column map. Form values are single
// strings except image_urls, which keeps every value.
func bindFields(ctx *gin.Context) (map[string]any, bool) {
	fields := map[string]any{}
	if strings.HasPrefix(ctx.ContentType(), "application/json") {
		if err := ctx.ShouldBindJSON(&fields); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
			return nil, false
		}
		return fields, true
	}

	var values map[string][]string
	if form, err := ctx.MultipartForm(); err == nil && form != nil {
		values = form.Value
	} else if err := ctx.Request.ParseForm(); err == nil {
		values = ctx.Request.PostForm
	} else {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return nil, false
	}
	for key, vs := range values {
		if len(vs) == 0 {
			continue
		}
		if key == "image_urls" {
			fields[key] = vs
			continue
		}
		fields[key] = vs[0]
	}
	return fields, true
}
