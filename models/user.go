package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a board member. UserID is chosen at registration. Passwords are stored as bcrypt hashes only.
type User struct {
	UserID        string    `gorm:"primaryKey;size:50" json:"user_id"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	UserName      string    `gorm:"size:50;not null" json:"user_name"`
	AdmissionYear int       `gorm:"not null" json:"admission_year"`
	Grade         int       `gorm:"not null" json:"grade"`
	ClassNum      int       `gorm:"not null" json:"class_num"`
	StudentNum    int       `gorm:"not null" json:"student_num"`
	PhoneNumber   string    `gorm:"size:20;not null;uniqueIndex" json:"phone_number"`
	IsAdmin       bool      `gorm:"not null;default:false" json:"is_admin"`
	IsConfirmed   bool      `gorm:"not null;default:false" json:"is_confirmed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}
