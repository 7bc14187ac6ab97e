package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/lostfound/services"
	"github.com/cppla/lostfound/utils"
)

// CommentController serves /comments.
type CommentController struct {
	svc *services.CommentService
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(svc *services.CommentService) *CommentController {
	return &CommentController{svc: svc}
}

// List returns comments, optionally narrowed by ?category= and ?post_id=.
func (c *CommentController) List(ctx *gin.Context) {
	filter := services.CommentFilter{Category: strings.TrimSpace(ctx.Query("category"))}
	if v := strings.TrimSpace(ctx.Query("post_id")); v != "" {
		postID, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40001, "invalid post_id")
			return
		}
		filter.PostID = uint(postID)
	}
	comments, err := c.svc.List(ctx.Request.Context(), filter)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": comments})
}

// Get returns one comment.
func (c *CommentController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	comment, err := c.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, comment)
}

// Create stores a comment authored by the caller.
func (c *CommentController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		return
	}
	var req services.CommentInput
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	id, err := c.svc.Create(ctx.Request.Context(), userID, req)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Created(ctx, gin.H{"comment_id": id})
}

// Update changes content or category.
func (c *CommentController) Update(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var req services.CommentUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	comment, err := c.svc.Update(ctx.Request.Context(), id, req)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, comment)
}

// Delete removes a comment.
func (c *CommentController) Delete(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		return
	}
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	if err := c.svc.Delete(ctx.Request.Context(), id); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}
