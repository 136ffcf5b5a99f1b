package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/orykevin/chef-rizzranker/internal/models"
	"github.com/orykevin/chef-rizzranker/internal/tasks"
	"github.com/orykevin/chef-rizzranker/internal/ws"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrEmptyMessage = errors.New("message must not be empty")

// Enqueuer schedules a response task for asynchronous execution.
type Enqueuer interface {
	Enqueue(task tasks.ResponseTask) error
}

// ChatService is the message pipeline. SendMessage is the fast synchronous
// half: persist the user turn and schedule the deferred task. GenerateResponse
// is the slow half, run by a dispatcher worker: call the judge, persist the AI
// turn, and apply the score to both leaderboards in one transaction.
type ChatService struct {
	db          *gorm.DB
	judge       *JudgeService
	characters  *CharacterService
	leaderboard *LeaderboardService
	queue       Enqueuer
	hub         *ws.Hub
}

func NewChatService(
	db *gorm.DB,
	judge *JudgeService,
	characters *CharacterService,
	leaderboard *LeaderboardService,
	queue Enqueuer,
	hub *ws.Hub,
) *ChatService {
	return &ChatService{
		db:          db,
		judge:       judge,
		characters:  characters,
		leaderboard: leaderboard,
		queue:       queue,
		hub:         hub,
	}
}

// SendMessage appends the user turn and schedules the AI reply. It returns as
// soon as the turn is persisted; the reply arrives later via the hub (or a
// re-fetch of the conversation). If the insert fails nothing is scheduled.
func (s *ChatService) SendMessage(characterID, userID uint, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	if _, err := s.characters.GetCharacter(characterID); err != nil {
		return nil, err
	}

	message := models.Message{
		CharacterID:  characterID,
		UserID:       userID,
		Content:      content,
		IsAiResponse: false,
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	currentScore, err := s.leaderboard.GetCurrentScore(userID, characterID)
	if err != nil {
		return nil, fmt.Errorf("failed to read current score: %w", err)
	}

	task := tasks.ResponseTask{
		TaskID:       responseTaskID(message.ID),
		CharacterID:  characterID,
		UserID:       userID,
		CurrentScore: currentScore,
		LastMessage:  content,
	}
	if err := s.queue.Enqueue(task); err != nil {
		return nil, fmt.Errorf("failed to schedule response: %w", err)
	}

	return &message, nil
}

// GetMessages returns the full conversation for one (character, user) pair in
// turn order.
func (s *ChatService) GetMessages(characterID, userID uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.
		Where("character_id = ? AND user_id = ?", characterID, userID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GenerateResponse executes one deferred task. The judge's combined rating is
// the sum of three sub-ratings in [-10, 10]; dividing by 3 brings it back to
// that display scale before it is stored and aggregated. A judge failure after
// its retry budget leaves the user turn unanswered and the leaderboards
// untouched.
func (s *ChatService) GenerateResponse(task tasks.ResponseTask) error {
	character, err := s.characters.GetCharacter(task.CharacterID)
	if err != nil {
		return fmt.Errorf("task %s: %w", task.TaskID, err)
	}

	history, err := s.GetMessages(task.CharacterID, task.UserID)
	if err != nil {
		return fmt.Errorf("task %s: failed to load history: %w", task.TaskID, err)
	}

	prompt := buildJudgePrompt(character, task.CurrentScore, task.LastMessage, history)

	result, err := s.judge.Judge(prompt)
	if err != nil {
		return fmt.Errorf("task %s: %w", task.TaskID, err)
	}

	normalized := result.Scores / 3

	aiMessage := models.Message{
		CharacterID:  task.CharacterID,
		UserID:       task.UserID,
		Content:      result.Message,
		IsAiResponse: true,
		Score:        &normalized,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&aiMessage).Error; err != nil {
			return err
		}
		return s.leaderboard.Apply(tx, task.CharacterID, task.UserID, normalized)
	})
	if err != nil {
		return fmt.Errorf("task %s: failed to save response: %w", task.TaskID, err)
	}

	log.Printf("[Chat] task %s: %s replied (score %+.2f)", task.TaskID, character.Name, normalized)

	if s.hub != nil {
		s.hub.Broadcast(ws.ConversationKey(task.CharacterID, task.UserID), ws.WSMessage{
			Type: "ai_response",
			Data: aiMessage,
		})
	}
	return nil
}

// responseTaskID derives a stable task id from the message that triggered it.
func responseTaskID(messageID uint) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("message-%d", messageID))).String()
}

func buildJudgePrompt(character *models.Character, currentScore float64, lastMessage string, history []models.Message) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s, %s. %s\n", character.Name, character.Personality, character.Background)
	fmt.Fprintf(&sb, "Your interests are: %s\n", strings.Join(character.Interests, ", "))
	fmt.Fprintf(&sb, "You like: %s\n", strings.Join(character.Likes, ", "))
	fmt.Fprintf(&sb, "You dislike: %s\n\n", strings.Join(character.Dislikes, ", "))

	sb.WriteString("Please respond to the conversation in character. ")
	sb.WriteString("Rate the user's last message for humor (-10 to 10), creativity (-10 to 10), and chemistry (-10 to 10) and sum the scores. ")
	sb.WriteString("Format your response as JSON with \"message\" and \"scores\" fields, and nothing else. ")
	sb.WriteString("Keep replies short, like a natural chat with someone new. Talk like you're just getting to know each other - don't get too familiar too quickly.\n\n")

	fmt.Fprintf(&sb, "Current affection score: %.2f\n\n", currentScore)

	fmt.Fprintf(&sb, "The user's latest message: %s\n\n", lastMessage)

	sb.WriteString("Previous messages:\n")
	for _, m := range history {
		speaker := "User"
		if m.IsAiResponse {
			speaker = character.Name
		}
		fmt.Fprintf(&sb, "%s: %s\n", speaker, m.Content)
	}

	return sb.String()
}
