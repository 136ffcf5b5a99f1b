package models

import "time"

// Message is one turn in a (character, user) conversation. Turns are
// append-only and ordered by CreatedAt. Score is set only on AI turns and
// holds the normalized affection score the judge gave the user message that
// triggered the reply.
type Message struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CharacterID  uint      `gorm:"not null;index:idx_character_user" json:"character_id"`
	UserID       uint      `gorm:"not null;index:idx_character_user;index" json:"user_id"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	IsAiResponse bool      `gorm:"not null;default:false" json:"is_ai_response"`
	Score        *float64  `json:"score,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
