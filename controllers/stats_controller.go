package controllers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/cppla/lostfound/services"
	"github.com/cppla/lostfound/utils"
)

// Counter is anything that can count its rows.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// StatsController provides board statistics such as post, user and comment counts.
type StatsController struct {
	boards   map[string]Counter
	users    *services.UserService
	comments Counter
}

// NewStatsController creates a new StatsController instance. boards is keyed by board name.
func NewStatsController(boards map[string]Counter, users *services.UserService, comments Counter) *StatsController {
	return &StatsController{boards: boards, users: users, comments: comments}
}

// GetStats returns aggregate counts. A failing count reports 0 instead of failing the endpoint.
func (s *StatsController) GetStats(ctx *gin.Context) {
	rctx := ctx.Request.Context()

	posts := make(map[string]int64, len(s.boards))
	var postTotal int64
	for name, c := range s.boards {
		n, err := c.Count(rctx)
		if err != nil {
			utils.Sugar.Warnf("count %s posts: %v", name, err)
			n = 0
		}
		posts[name] = n
		postTotal += n
	}

	userCount, pendingCount, err := s.users.CountAll(rctx)
	if err != nil {
		utils.Sugar.Warnf("count users: %v", err)
		userCount, pendingCount = 0, 0
	}

	commentCount, err := s.comments.Count(rctx)
	if err != nil {
		utils.Sugar.Warnf("count comments: %v", err)
		commentCount = 0
	}

	utils.Success(ctx, gin.H{
		"posts":              posts,
		"post_count":         postTotal,
		"user_count":         userCount,
		"pending_user_count": pendingCount,
		"comment_count":      commentCount,
	})
}
