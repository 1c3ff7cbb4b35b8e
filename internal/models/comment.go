// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment is an append-only comment on a university page. There are two
// submission modes: authenticated comments carry UserID/Username/DisplayName,
// anonymous comments carry Name/Surname/Email instead.
type Comment struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UniversityID string         `gorm:"not null;index" json:"university_id"`
	UserID       *uint          `gorm:"index" json:"user_id,omitempty"`
	Username     string         `json:"username,omitempty"`
	DisplayName  string         `json:"display_name,omitempty"`
	Name         string         `json:"name,omitempty"`
	Surname      string         `json:"surname,omitempty"`
	Email        string         `json:"-"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAnonymous reports whether the comment was submitted without an account.
func (c *Comment) IsAnonymous() bool {
	return c.UserID == nil
}
