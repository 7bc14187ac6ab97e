package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// CommentCategory tags which board a comment belongs to. The set is closed.
type CommentCategory string

const (
	CategoryLostItem  CommentCategory = "lost_item"
	CategoryFoundItem CommentCategory = "found_item"
	CategoryShareItem CommentCategory = "share_item"
)

// ParseCommentCategory rejects anything outside the closed set.
func ParseCommentCategory(s string) (CommentCategory, error) {
	switch c := CommentCategory(s); c {
	case CategoryLostItem, CategoryFoundItem, CategoryShareItem:
		return c, nil
	default:
		return "", fmt.Errorf("invalid comment category %q", s)
	}
}

// Value implements driver.Valuer so an unknown tag never reaches the table.
func (c CommentCategory) Value() (driver.Value, error) {
	if _, err := ParseCommentCategory(string(c)); err != nil {
		return nil, err
	}
	return string(c), nil
}

// Scan implements sql.Scanner.
func (c *CommentCategory) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("unsupported comment category type %T", src)
	}
	parsed, err := ParseCommentCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Comment is a reply on a lost, found or share post. ParentCommentID enables threading.
type Comment struct {
	ID              uint            `gorm:"primaryKey" json:"comment_id"`
	Category        CommentCategory `gorm:"size:16;not null;index:idx_comment_target" json:"category"`
	PostID          uint            `gorm:"not null;index:idx_comment_target" json:"post_id"`
	AuthorID        string          `gorm:"size:50;not null;index" json:"author_id"`
	Content         string          `gorm:"type:text;not null" json:"content"`
	ParentCommentID *uint           `gorm:"index" json:"parent_comment_id"`
	CreatedAt       time.Time       `json:"created_at"`
}
