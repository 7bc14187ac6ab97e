package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/lostfound/models"
	"github.com/cppla/lostfound/utils"
)

// PostChecker reports whether a post exists on one board. ListingService implements it.
type PostChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// CommentInput is a new comment as received from a client.
type CommentInput struct {
	Category        string `json:"category" form:"category"`
	PostID          uint   `json:"post_id" form:"post_id"`
	Content         string `json:"content" form:"content"`
	ParentCommentID *uint  `json:"parent_comment_id" form:"parent_comment_id"`
}

// CommentUpdate carries the mutable comment fields. Nil means unchanged.
type CommentUpdate struct {
	Category *string `json:"category"`
	Content  *string `json:"content"`
}

// CommentFilter narrows List. Zero values mean no filter.
type CommentFilter struct {
	Category string
	PostID   uint
}

// CommentService stores threaded comments on lost, found and share posts.
type CommentService struct {
	db    *gorm.DB
	users UserDirectory
	posts map[models.CommentCategory]PostChecker
	log   *zap.Logger
}

// NewCommentService wires the boards comments can point at.
func NewCommentService(db *gorm.DB, users UserDirectory, posts map[models.CommentCategory]PostChecker, log *zap.Logger) *CommentService {
	return &CommentService{db: db, users: users, posts: posts, log: log}
}

// Create validates the target post and optional parent, then stores the comment.
func (s *CommentService) Create(ctx context.Context, actorID string, in CommentInput) (uint, error) {
	category, err := models.ParseCommentCategory(strings.TrimSpace(in.Category))
	if err != nil {
		return 0, validationError("invalid category %q", in.Category)
	}
	user, err := s.users.Lookup(ctx, actorID)
	if err != nil {
		return 0, storageError("failed to look up user", err)
	}
	if user == nil {
		return 0, validationError("invalid user")
	}
	content := utils.Sanitize(strings.TrimSpace(in.Content))
	if content == "" {
		return 0, validationError("content is required")
	}
	if err := s.checkPost(ctx, category, in.PostID); err != nil {
		return 0, err
	}
	if in.ParentCommentID != nil {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Comment{}).
			Where("id = ? AND category = ? AND post_id = ?", *in.ParentCommentID, string(category), in.PostID).
			Count(&n).Error; err != nil {
			return 0, storageError("failed to load parent comment", err)
		}
		if n == 0 {
			return 0, validationError("parent comment %d not found on this post", *in.ParentCommentID)
		}
	}

	c := models.Comment{
		Category:        category,
		PostID:          in.PostID,
		AuthorID:        user.UserID,
		Content:         content,
		ParentCommentID: in.ParentCommentID,
	}
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return 0, storageError("failed to save comment", err)
	}
	s.log.Info("comment created", zap.Uint("id", c.ID), zap.String("category", string(category)), zap.Uint("post_id", c.PostID))
	return c.ID, nil
}

// List returns comments in creation order, oldest first.
func (s *CommentService) List(ctx context.Context, f CommentFilter) ([]models.Comment, error) {
	q := s.db.WithContext(ctx).Model(&models.Comment{})
	if f.Category != "" {
		category, err := models.ParseCommentCategory(f.Category)
		if err != nil {
			return nil, validationError("invalid category %q", f.Category)
		}
		q = q.Where("category = ?", string(category))
	}
	if f.PostID != 0 {
		q = q.Where("post_id = ?", f.PostID)
	}
	comments := make([]models.Comment, 0)
	if err := q.Order("created_at ASC").Order("id ASC").Find(&comments).Error; err != nil {
		return nil, storageError("failed to list comments", err)
	}
	return comments, nil
}

// Get returns one comment.
func (s *CommentService) Get(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("comment")
		}
		return nil, storageError("failed to load comment", err)
	}
	return &c, nil
}

// Update changes category or content. Author and post stay fixed.
func (s *CommentService) Update(ctx context.Context, id uint, in CommentUpdate) (*models.Comment, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := make(map[string]any)
	if in.Category != nil {
		category, err := models.ParseCommentCategory(strings.TrimSpace(*in.Category))
		if err != nil {
			return nil, validationError("invalid category %q", *in.Category)
		}
		if category != c.Category {
			if err := s.checkPost(ctx, category, c.PostID); err != nil {
				return nil, err
			}
		}
		updates["category"] = category
	}
	if in.Content != nil {
		content := utils.Sanitize(strings.TrimSpace(*in.Content))
		if content == "" {
			return nil, validationError("content is required")
		}
		updates["content"] = content
	}
	if len(updates) == 0 {
		return c, nil
	}
	if err := s.db.WithContext(ctx).Model(c).Updates(updates).Error; err != nil {
		return nil, storageError("failed to update comment", err)
	}
	return s.Get(ctx, id)
}

// Delete removes one comment. Replies keep their dangling parent id.
func (s *CommentService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return storageError("failed to delete comment", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFoundError("comment")
	}
	return nil
}

// Count returns the number of stored comments.
func (s *CommentService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).Count(&n).Error
	return n, err
}

func (s *CommentService) checkPost(ctx context.Context, category models.CommentCategory, postID uint) error {
	checker, ok := s.posts[category]
	if !ok {
		return validationError("comments are not enabled for %s", category)
	}
	exists, err := checker.Exists(ctx, postID)
	if err != nil {
		return storageError("failed to check post", err)
	}
	if !exists {
		return validationError("%s post %d not found", category, postID)
	}
	return nil
}
