// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Conversation is a two-party messaging thread. PairKey is the canonical
// identity for the unordered participant pair, so at most one conversation can
// exist per pair regardless of which side creates it first.
type Conversation struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	PairKey            string         `gorm:"uniqueIndex;not null" json:"-"`
	UserAID            uint           `gorm:"not null;index" json:"user_a_id"`
	UserBID            uint           `gorm:"not null;index" json:"user_b_id"`
	UserAUsername      string         `gorm:"not null" json:"user_a_username"`
	UserBUsername      string         `gorm:"not null" json:"user_b_username"`
	UserADisplayName   string         `json:"user_a_display_name"`
	UserBDisplayName   string         `json:"user_b_display_name"`
	LastMessage        string         `gorm:"size:100" json:"last_message"`
	LastMessageAt      time.Time      `gorm:"index" json:"last_message_at"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
	Messages           []Message      `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
	UnreadCount        int64          `gorm:"-" json:"unread_count"`
}

// PairKeyFor derives the canonical conversation key for an unordered user pair.
// The smaller ID always comes first, so (a,b) and (b,a) map to the same key.
func PairKeyFor(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// HasParticipant reports whether the user is one of the two participants.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// OtherParticipant returns the ID of the participant opposite to userID.
// Callers must check HasParticipant first.
func (c *Conversation) OtherParticipant(userID uint) uint {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// Message is a single chat message owned by exactly one conversation.
// CreatedAt is assigned by the database and is the authoritative ordering field.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID uint      `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint      `gorm:"not null;index" json:"sender_id"`
	SenderUsername string    `gorm:"not null" json:"sender_username"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Read           bool      `gorm:"default:false;not null" json:"read"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}
