package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/lostfound/models"
	"github.com/cppla/lostfound/utils"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PostPtr constrains P to a pointer to a board model.
type PostPtr[T any] interface {
	*T
	models.Post
}

// FieldKind tells Update how to coerce a request value for a column.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldBool
	FieldImages
)

// Category describes one board.
type Category[T any, P PostPtr[T]] struct {
	Name string
	// SearchColumns are matched case-insensitively by List keyword search.
	SearchColumns []string
	// Updatable maps column name to the kind of value Update accepts for it.
	Updatable map[string]FieldKind
	// AdminOnly boards reject create, update and delete from non-admins.
	AdminOnly bool
	// Prepare normalizes and validates board specific fields before insert.
	Prepare func(P) error
	// Defaults fills flags the poster left unset.
	Defaults func(P)
}

// UserDirectory resolves actors. Lookup returns nil, nil for an unknown id.
type UserDirectory interface {
	Lookup(ctx context.Context, id string) (*models.User, error)
	IsAdmin(u *models.User) bool
}

// Page is one slice of a board listing.
type Page[T any] struct {
	Items       []T   `json:"items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	TotalItems  int64 `json:"total_items"`
}

// ListingService implements create, list, get, update and delete for one board.
type ListingService[T any, P PostPtr[T]] struct {
	db      *gorm.DB
	users   UserDirectory
	uploads *UploadHandler
	cat     Category[T, P]
	log     *zap.Logger
}

// NewListingService binds cat to the shared database, user directory and upload handler.
func NewListingService[T any, P PostPtr[T]](db *gorm.DB, users UserDirectory, uploads *UploadHandler, cat Category[T, P], log *zap.Logger) *ListingService[T, P] {
	return &ListingService[T, P]{
		db:      db,
		users:   users,
		uploads: uploads,
		cat:     cat,
		log:     log.With(zap.String("category", cat.Name)),
	}
}

// Name returns the board name, e.g. "lost_item".
func (s *ListingService[T, P]) Name() string { return s.cat.Name }

// Create stores post with its uploaded images and returns the new id.
// Id, author, views and image urls on post are overwritten.
func (s *ListingService[T, P]) Create(ctx context.Context, actorID string, post P, files []*multipart.FileHeader) (uint, error) {
	user, err := s.users.Lookup(ctx, actorID)
	if err != nil {
		return 0, storageError("failed to look up user", err)
	}
	if user == nil {
		return 0, validationError("invalid user")
	}
	if s.cat.AdminOnly && !s.users.IsAdmin(user) {
		return 0, authorizationError("admin privileges required")
	}

	base := post.Base()
	base.Title = utils.SanitizeText(base.Title)
	base.Content = utils.Sanitize(strings.TrimSpace(base.Content))
	if base.Title == "" {
		return 0, validationError("title is required")
	}
	if base.Content == "" {
		return 0, validationError("content is required")
	}
	if s.cat.Prepare != nil {
		if err := s.cat.Prepare(post); err != nil {
			return 0, err
		}
	}

	urls, err := s.uploads.Store(ctx, files)
	if err != nil {
		return 0, err
	}

	base.ID = 0
	base.AuthorID = user.UserID
	base.Views = 0
	base.ImageURLs = urls
	if s.cat.Defaults != nil {
		s.cat.Defaults(post)
	}

	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		if len(urls) > 0 {
			s.log.Error("post insert failed, uploaded files are orphaned",
				zap.Strings("urls", urls), zap.Error(err))
		}
		return 0, storageError("failed to save post", err)
	}
	s.log.Info("post created", zap.Uint("id", base.ID), zap.String("author", base.AuthorID), zap.Int("images", len(urls)))
	return base.ID, nil
}

// List returns one page, newest first. page < 1 means 1, limit < 1 means
// DefaultPageSize and limit is capped at MaxPageSize. A keyword that is not
// all whitespace is matched as given, surrounding spaces included.
func (s *ListingService[T, P]) List(ctx context.Context, page, limit int, keyword string) (*Page[T], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	q := s.db.WithContext(ctx).Model(new(T))
	if strings.TrimSpace(keyword) != "" && len(s.cat.SearchColumns) > 0 {
		pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
		conds := make([]string, len(s.cat.SearchColumns))
		args := make([]any, len(s.cat.SearchColumns))
		for i, col := range s.cat.SearchColumns {
			conds[i] = "LOWER(" + col + ") LIKE ? ESCAPE '!'"
			args[i] = pattern
		}
		q = q.Where(strings.Join(conds, " OR "), args...)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, storageError("failed to count posts", err)
	}

	items := make([]T, 0, limit)
	if err := q.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, storageError("failed to list posts", err)
	}

	return &Page[T]{
		Items:       items,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
		CurrentPage: page,
		TotalItems:  total,
	}, nil
}

// Get returns the post and counts the view. The increment is a single
// UPDATE, so concurrent readers never lose a view in storage, but the count
// each of them sees may lag behind the others.
func (s *ListingService[T, P]) Get(ctx context.Context, id uint) (P, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(post).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		return nil, storageError("failed to count view", err)
	}
	post.Base().Views++
	return post, nil
}

// Update writes the updatable keys present in fields and ignores the rest.
func (s *ListingService[T, P]) Update(ctx context.Context, actorID string, id uint, fields map[string]any) (P, error) {
	if err := s.authorizeWrite(ctx, actorID); err != nil {
		return nil, err
	}
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	for key, raw := range fields {
		kind, ok := s.cat.Updatable[key]
		if !ok {
			continue
		}
		v, err := coerceField(key, kind, raw)
		if err != nil {
			return nil, err
		}
		// every text column is required at create, so it cannot be blanked later
		if text, ok := v.(string); ok && text == "" {
			return nil, validationError("%s is required", key)
		}
		updates[key] = v
	}
	if len(updates) == 0 {
		return post, nil
	}

	if err := s.db.WithContext(ctx).Model(post).Updates(updates).Error; err != nil {
		return nil, storageError("failed to update post", err)
	}
	return s.find(ctx, id)
}

// Delete removes the row. Images stay in storage.
func (s *ListingService[T, P]) Delete(ctx context.Context, actorID string, id uint) error {
	if err := s.authorizeWrite(ctx, actorID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Delete(P(new(T)), id)
	if res.Error != nil {
		return storageError("failed to delete post", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFoundError("post")
	}
	s.log.Info("post deleted", zap.Uint("id", id), zap.String("actor", actorID))
	return nil
}

// Exists reports whether a post with id is on this board.
func (s *ListingService[T, P]) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Count returns the number of posts on this board.
func (s *ListingService[T, P]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(new(T)).Count(&n).Error
	return n, err
}

func (s *ListingService[T, P]) find(ctx context.Context, id uint) (P, error) {
	post := P(new(T))
	if err := s.db.WithContext(ctx).First(post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("post")
		}
		return nil, storageError("failed to load post", err)
	}
	return post, nil
}

func (s *ListingService[T, P]) authorizeWrite(ctx context.Context, actorID string) error {
	if !s.cat.AdminOnly {
		return nil
	}
	user, err := s.users.Lookup(ctx, actorID)
	if err != nil {
		return storageError("failed to look up user", err)
	}
	if user == nil || !s.users.IsAdmin(user) {
		return authorizationError("admin privileges required")
	}
	return nil
}

func coerceField(key string, kind FieldKind, raw any) (any, error) {
	switch kind {
	case FieldBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, validationError("%s must be a boolean", key)
			}
			return b, nil
		}
		return nil, validationError("%s must be a boolean", key)
	case FieldImages:
		var urls models.ImageURLs
		switch v := raw.(type) {
		case nil:
		case []string:
			urls = v
		case []any:
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, validationError("%s must be a list of strings", key)
				}
				urls = append(urls, s)
			}
		default:
			return nil, validationError("%s must be a list of strings", key)
		}
		for _, u := range urls {
			if strings.Contains(u, ",") || strings.TrimSpace(u) == "" {
				return nil, validationError("invalid image url %q", u)
			}
		}
		return urls, nil
	default:
		s, ok := raw.(string)
		if !ok {
			return nil, validationError("%s must be a string", key)
		}
		if key == "content" {
			return utils.Sanitize(strings.TrimSpace(s)), nil
		}
		return utils.SanitizeText(s), nil
	}
}

// escapeLike makes s match literally inside a LIKE pattern using '!' as escape.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
