package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ImageURLs is stored as one comma-joined text column (NULL when empty) and
// serialized as a JSON array.
type ImageURLs []string

// Value implements driver.Valuer.
func (u ImageURLs) Value() (driver.Value, error) {
	if len(u) == 0 {
		return nil, nil
	}
	for _, s := range u {
		if strings.Contains(s, ",") {
			return nil, fmt.Errorf("image url %q contains a comma", s)
		}
	}
	return strings.Join(u, ","), nil
}

// Scan implements sql.Scanner.
func (u *ImageURLs) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*u = ImageURLs{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("unsupported image_urls type %T", src)
	}
	if s == "" {
		*u = ImageURLs{}
		return nil
	}
	*u = strings.Split(s, ",")
	return nil
}

// MarshalJSON never emits null.
func (u ImageURLs) MarshalJSON() ([]byte, error) {
	if u == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(u))
}

// Post is implemented by every board model through the embedded PostBase.
type Post interface {
	Base() *PostBase
}

// PostBase holds the columns shared by all four boards.
type PostBase struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:100;not null" json:"title" form:"title"`
	AuthorID  string    `gorm:"size:50;not null;index" json:"author_id"`
	Content   string    `gorm:"type:text;not null" json:"content" form:"content"`
	ImageURLs ImageURLs `gorm:"type:text" json:"image_urls"`
	Views     int       `gorm:"not null;default:0" json:"views"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Base returns the shared columns.
func (b *PostBase) Base() *PostBase { return b }

// ItemDetails describes the item on the lost and found boards.
type ItemDetails struct {
	ItemName string `gorm:"size:30;not null" json:"item_name" form:"item_name"`
	Location string `gorm:"size:30;not null" json:"location" form:"location"`
	// ItemTime is free text as typed by the poster, e.g. "3rd period".
	ItemTime string `gorm:"size:30;not null" json:"item_time" form:"item_time"`
}

// LostItemPost is a "someone lost this" listing.
type LostItemPost struct {
	PostBase
	ItemDetails
	Status *bool `gorm:"not null;default:true" json:"status" form:"status"`
}

// FoundItemPost is a "someone found this" listing.
type FoundItemPost struct {
	PostBase
	ItemDetails
	Resolved *bool `gorm:"not null;default:false" json:"resolved" form:"resolved"`
	Status   *bool `gorm:"not null;default:true" json:"status" form:"status"`
}

// ShareItemPost gives an item away. Status turns true once it has been claimed.
type ShareItemPost struct {
	PostBase
	Status *bool `gorm:"not null;default:false" json:"status" form:"status"`
}

// NoticePost is an announcement. Only admins may write them.
type NoticePost struct {
	PostBase
}
