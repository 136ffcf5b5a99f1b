package services

import (
	"errors"

	"github.com/orykevin/chef-rizzranker/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeaderboardService struct {
	db *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{db: db}
}

// GetCurrentScore returns the user's running score against one character, or
// 0 when they have no entry yet.
func (s *LeaderboardService) GetCurrentScore(userID, characterID uint) (float64, error) {
	var entry models.LeaderboardEntry
	err := s.db.Where("user_id = ? AND character_id = ?", userID, characterID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return entry.Score, nil
}

// Apply folds one scored AI turn into the per-character entry and the global
// entry. Both writes happen on tx so the caller can commit them together with
// the AI turn itself. Each call is additive: applying the same score twice
// counts it twice, so it must run exactly once per scored turn.
//
// Both writes are single upsert statements with in-database increments, so
// concurrent tasks for the same user cannot lose an update the way a separate
// read-then-write would.
func (s *LeaderboardService) Apply(tx *gorm.DB, characterID, userID uint, score float64) error {
	entry := models.LeaderboardEntry{
		UserID:       userID,
		CharacterID:  characterID,
		Score:        score,
		MessageCount: 1,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "character_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"score":         gorm.Expr("leaderboard_entries.score + ?", score),
			"message_count": gorm.Expr("leaderboard_entries.message_count + 1"),
		}),
	}).Create(&entry).Error
	if err != nil {
		return err
	}

	global := models.GlobalLeaderboardEntry{UserID: userID, TotalScore: score}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_score": gorm.Expr("global_leaderboard_entries.total_score + ?", score),
		}),
	}).Create(&global).Error
}

type RankedEntry struct {
	Position     int     `json:"position"`
	UserID       uint    `json:"user_id"`
	Username     string  `json:"username"`
	Score        float64 `json:"score"`
	MessageCount int     `json:"message_count"`
}

type GlobalRankedEntry struct {
	Position   int     `json:"position"`
	UserID     uint    `json:"user_id"`
	Username   string  `json:"username"`
	TotalScore float64 `json:"total_score"`
}

// GetCharacterLeaderboard returns the top users for one character, highest
// cumulative score first.
func (s *LeaderboardService) GetCharacterLeaderboard(characterID uint, limit int) ([]RankedEntry, error) {
	var rows []struct {
		UserID       uint
		Username     string
		Score        float64
		MessageCount int
	}
	err := s.db.Model(&models.LeaderboardEntry{}).
		Select("leaderboard_entries.user_id, users.username, leaderboard_entries.score, leaderboard_entries.message_count").
		Joins("JOIN users ON users.id = leaderboard_entries.user_id").
		Where("leaderboard_entries.character_id = ?", characterID).
		Order("leaderboard_entries.score DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]RankedEntry, len(rows))
	for i, row := range rows {
		entries[i] = RankedEntry{
			Position:     i + 1,
			UserID:       row.UserID,
			Username:     row.Username,
			Score:        row.Score,
			MessageCount: row.MessageCount,
		}
	}
	return entries, nil
}

// GetGlobalLeaderboard returns the top users across all characters.
func (s *LeaderboardService) GetGlobalLeaderboard(limit int) ([]GlobalRankedEntry, error) {
	var rows []struct {
		UserID     uint
		Username   string
		TotalScore float64
	}
	err := s.db.Model(&models.GlobalLeaderboardEntry{}).
		Select("global_leaderboard_entries.user_id, users.username, global_leaderboard_entries.total_score").
		Joins("JOIN users ON users.id = global_leaderboard_entries.user_id").
		Order("global_leaderboard_entries.total_score DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := make([]GlobalRankedEntry, len(rows))
	for i, row := range rows {
		entries[i] = GlobalRankedEntry{
			Position:   i + 1,
			UserID:     row.UserID,
			Username:   row.Username,
			TotalScore: row.TotalScore,
		}
	}
	return entries, nil
}

// GetUserEntries returns every per-character row the user has, for the "my
// scores" view.
func (s *LeaderboardService) GetUserEntries(userID uint) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	if err := s.db.Where("user_id = ?", userID).Order("score DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
