package models

// LeaderboardEntry is the running total for one user against one character.
// Score is a cumulative sum of normalized judge scores, not an average;
// MessageCount is the number of scored AI turns folded in.
type LeaderboardEntry struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UserID       uint    `gorm:"not null;uniqueIndex:idx_user_character" json:"user_id"`
	CharacterID  uint    `gorm:"not null;uniqueIndex:idx_user_character;index" json:"character_id"`
	Score        float64 `gorm:"not null;default:0;index" json:"score"`
	MessageCount int     `gorm:"not null;default:0" json:"message_count"`
}

// GlobalLeaderboardEntry is the running total for one user across every
// character they have ever chatted with.
type GlobalLeaderboardEntry struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	UserID     uint    `gorm:"not null;uniqueIndex" json:"user_id"`
	TotalScore float64 `gorm:"not null;default:0;index" json:"total_score"`
}
