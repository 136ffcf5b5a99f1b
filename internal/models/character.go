package models

import "time"

// Character is the daily AI-generated date. One character is featured per
// calendar day (ActiveDate, UTC). Characters are immutable once created and
// are never deleted so historical leaderboards stay resolvable.
type Character struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Personality string    `gorm:"size:255;not null" json:"personality"`
	Background  string    `gorm:"type:text;not null" json:"background"`
	Interests   []string  `gorm:"serializer:json" json:"interests"`
	Likes       []string  `gorm:"serializer:json" json:"likes"`
	Dislikes    []string  `gorm:"serializer:json" json:"dislikes"`
	ActiveDate  string    `gorm:"size:10;uniqueIndex;not null" json:"active_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActiveDateLayout is the format of Character.ActiveDate.
const ActiveDateLayout = "2006-01-02"
