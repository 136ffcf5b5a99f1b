package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/orykevin/chef-rizzranker/internal/models"

	"gorm.io/gorm"
)

var ErrCharacterNotFound = errors.New("character not found")

const characterMaxAttempts = 3

const characterSystemPrompt = `You are a character generator for a dating simulation game. You must respond with ONLY valid JSON (no markdown, no code fences, no explanations) in the following format:

{
  "name": "A unique and memorable first name",
  "personality": "A short phrase combining two traits (e.g., intellectual and playful)",
  "background": "A quirky description that combines a high-level profession with a surprising hobby",
  "interests": ["four", "distinct", "interests", "here"],
  "likes": ["three", "conversational", "likes"],
  "dislikes": ["three", "conversational", "dislikes"]
}

Rules:
- "interests" must contain exactly 4 entries, "likes" and "dislikes" exactly 3 each
- The character must be clearly different from every previous character listed by the user
- Return ONLY the JSON object, nothing else`

type generatedCharacter struct {
	Name        string   `json:"name"`
	Personality string   `json:"personality"`
	Background  string   `json:"background"`
	Interests   []string `json:"interests"`
	Likes       []string `json:"likes"`
	Dislikes    []string `json:"dislikes"`
}

type CharacterService struct {
	db  *gorm.DB
	llm *LLMClient
}

func NewCharacterService(db *gorm.DB, llm *LLMClient) *CharacterService {
	return &CharacterService{db: db, llm: llm}
}

func (s *CharacterService) GetCharacter(id uint) (*models.Character, error) {
	var character models.Character
	if err := s.db.First(&character, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}
	return &character, nil
}

// GetActiveCharacter returns the character featured on the given date.
func (s *CharacterService) GetActiveCharacter(date string) (*models.Character, error) {
	var character models.Character
	if err := s.db.Where("active_date = ?", date).First(&character).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCharacterNotFound
		}
		return nil, err
	}
	return &character, nil
}

// ListCharacters returns all characters, newest first. History is retained so
// past per-character leaderboards stay browsable.
func (s *CharacterService) ListCharacters() ([]models.Character, error) {
	var characters []models.Character
	if err := s.db.Order("created_at DESC").Find(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}

// EnsureDailyCharacter creates the character for the given date if none exists
// yet. Safe to call repeatedly; the unique index on active_date backstops a
// concurrent double-create.
func (s *CharacterService) EnsureDailyCharacter(date string) (*models.Character, error) {
	if character, err := s.GetActiveCharacter(date); err == nil {
		return character, nil
	} else if !errors.Is(err, ErrCharacterNotFound) {
		return nil, err
	}
	return s.createDailyCharacter(date)
}

func (s *CharacterService) createDailyCharacter(date string) (*models.Character, error) {
	previous, err := s.ListCharacters()
	if err != nil {
		return nil, err
	}

	prompt := buildCharacterPrompt(previous)

	var lastErr error
	for attempt := 1; attempt <= characterMaxAttempts; attempt++ {
		content, err := s.llm.Complete([]chatMessage{
			{Role: "system", Content: characterSystemPrompt},
			{Role: "user", Content: prompt},
		}, 0.8)
		if err != nil {
			lastErr = err
			log.Printf("[Characters] generation attempt %d/%d failed: %v", attempt, characterMaxAttempts, err)
			continue
		}

		generated, err := parseGeneratedCharacter(content)
		if err != nil {
			lastErr = err
			log.Printf("[Characters] generation attempt %d/%d returned bad output: %v", attempt, characterMaxAttempts, err)
			continue
		}

		character := models.Character{
			Name:        generated.Name,
			Personality: generated.Personality,
			Background:  generated.Background,
			Interests:   generated.Interests,
			Likes:       generated.Likes,
			Dislikes:    generated.Dislikes,
			ActiveDate:  date,
		}
		if err := s.db.Create(&character).Error; err != nil {
			return nil, err
		}

		log.Printf("[Characters] created daily character %q for %s", character.Name, date)
		return &character, nil
	}

	return nil, fmt.Errorf("character generation failed after %d attempts: %w", characterMaxAttempts, lastErr)
}

func buildCharacterPrompt(previous []models.Character) string {
	var sb strings.Builder
	sb.WriteString("Previous characters:\n")
	if len(previous) == 0 {
		sb.WriteString("(none yet)\n")
	}
	for _, c := range previous {
		fmt.Fprintf(&sb, "- Name: %s\n", c.Name)
		fmt.Fprintf(&sb, "  Personality: %s\n", c.Personality)
		fmt.Fprintf(&sb, "  Background: %s\n", c.Background)
		fmt.Fprintf(&sb, "  Interests: %s\n", strings.Join(c.Interests, ", "))
		fmt.Fprintf(&sb, "  Likes/Dislikes: %s / %s\n", strings.Join(c.Likes, ", "), strings.Join(c.Dislikes, ", "))
	}
	sb.WriteString("\nCreate a new character for today, different from all of the above.")
	return sb.String()
}

func parseGeneratedCharacter(content string) (*generatedCharacter, error) {
	var generated generatedCharacter
	if err := json.Unmarshal([]byte(content), &generated); err != nil {
		return nil, fmt.Errorf("generator returned invalid JSON: %w", err)
	}
	if generated.Name == "" || generated.Personality == "" || generated.Background == "" {
		return nil, fmt.Errorf("generator returned incomplete character")
	}
	if len(generated.Interests) != 4 {
		return nil, fmt.Errorf("expected 4 interests, got %d", len(generated.Interests))
	}
	if len(generated.Likes) != 3 || len(generated.Dislikes) != 3 {
		return nil, fmt.Errorf("expected 3 likes and 3 dislikes, got %d/%d", len(generated.Likes), len(generated.Dislikes))
	}
	return &generated, nil
}
