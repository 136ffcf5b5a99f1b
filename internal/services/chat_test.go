package services

import (
	"errors"
	"testing"

	"github.com/orykevin/chef-rizzranker/internal/models"
	"github.com/orykevin/chef-rizzranker/internal/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type captureQueue struct {
	tasks []tasks.ResponseTask
	err   error
}

func (q *captureQueue) Enqueue(task tasks.ResponseTask) error {
	if q.err != nil {
		return q.err
	}
	q.tasks = append(q.tasks, task)
	return nil
}

func newTestChatService(db *gorm.DB, llm *LLMClient, queue Enqueuer) *ChatService {
	characters := NewCharacterService(db, llm)
	leaderboard := NewLeaderboardService(db)
	judge := NewJudgeService(llm)
	return NewChatService(db, judge, characters, leaderboard, queue, nil)
}

func countMessages(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Message{}).Count(&n).Error)
	return n
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	db := setupTestDB(t)
	queue := &captureQueue{}
	svc := newTestChatService(db, newFakeLLM(t, "{}").client(), queue)
	user := createTestUser(t, db, "alice")
	character := createTestCharacter(t, db, "Remy", "2026-08-30")

	for _, content := range []string{"", "   ", "\n\t "} {
		_, err := svc.SendMessage(character.ID, user.ID, content)
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}

	assert.Zero(t, countMessages(t, db))
	assert.Empty(t, queue.tasks)
}

func TestSendMessageUnknownCharacter(t *testing.T) {
	db := setupTestDB(t)
	queue := &captureQueue{}
	svc := newTestChatService(db, newFakeLLM(t, "{}").client(), queue)
	user := createTestUser(t, db, "alice")

	_, err := svc.SendMessage(999, user.ID, "hello?")
	assert.ErrorIs(t, err, ErrCharacterNotFound)
	assert.Zero(t, countMessages(t, db))
	assert.Empty(t, queue.tasks)
}

func TestSendMessagePersistsTurnAndSchedulesTask(t *testing.T) {
	db := setupTestDB(t)
	queue := &captureQueue{}
	svc := newTestChatService(db, newFakeLLM(t, "{}").client(), queue)
	user := createTestUser(t, db, "alice")
	character := createTestCharacter(t, db, "Remy", "2026-08-30")

	message, err := svc.SendMessage(character.ID, user.ID, "  hello there  ")
	require.NoError(t, err)

	assert.Equal(t, "hello there", message.Content)
	assert.False(t, message.IsAiResponse)
	assert.Nil(t, message.Score)

	require.Len(t, queue.tasks, 1)
	task := queue.tasks[0]
	assert.Equal(t, character.ID, task.CharacterID)
	assert.Equal(t, user.ID, task.UserID)
	assert.Zero(t, task.CurrentScore)
	assert.Equal(t, "hello there", task.LastMessage)
	assert.NotEmpty(t, task.TaskID)
	assert.Equal(t, responseTaskID(message.ID), task.TaskID)
}

func TestSendMessageCarriesCurrentScore(t *testing.T) {
	db := setupTestDB(t)
	queue := &captureQueue{}
	svc := newTestChatService(db, newFakeLLM(t, "{}").client(), queue)
	user := createTestUser(t, db, "alice")
	character := createTestCharacter(t, db, "Remy", "2026-08-30")

	require.NoError(t, NewLeaderboardService(db).Apply(db, character.ID, user.ID, 6.5))

	_, err := svc.SendMessage(character.ID, user.ID, "remember me?")
	require.NoError(t, err)

	require.Len(t, queue.tasks, 1)
	assert.InDelta(t, 6.5, queue.tasks[0].CurrentScore, 1e-9)
}

func TestSendMessageFailsWhenQueueIsFull(t *testing.T) {
	db := setupTestDB(t)
	queue := &captureQueue{err: tasks.ErrQueueFull}
	svc := newTestChatService(db, newFakeLLM(t, "{}").client(), queue)
	user := createTestUser(t, db, "alice")
	character := createTestCharacter(t, db, "Remy", "2026-08-30")

	_, err := svc.SendMessage(character.ID, user.ID, "hello")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tasks.ErrQueueFull))

	// The user turn survives: at-least-the-user-turn policy.
	assert.EqualValues(t, 1, countMessages(t, db))
}

func TestGenerateResponseSavesScoredTurnAndUpdatesLeaderboards(t *testing.T) {
	db := setupTestDB(t)
	queue := &captureQueue{}
	llm := newFakeLLM(t, `{"message": "bold opener, I respect it", "scores": 12}`)
	svc := newTestChatService(db, llm.client(), queue)
	user := createTestUser(t, db, "alice")
	character := createTestCharacter(t, db, "Remy", "2026-08-30")

	_, err := svc.SendMessage(character.ID, user.ID, "hello")
	require.NoError(t, err)
	require.NoError(t, svc.GenerateResponse(queue.tasks[0]))

	messages, err := svc.GetMessages(character.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.False(t, messages[0].IsAiResponse)
	assert.True(t, messages[1].IsAiResponse)
	assert.Equal(t, "bold opener, I respect it", messages[1].Content)
	require.NotNil(t, messages[1].Score)
	assert.InDelta(t, 4.0, *messages[1].Score, 1e-9) // 12 / 3

	var entry models.LeaderboardEntry
	require.NoError(t, db.Where("user_id = ? AND character_id = ?", user.ID, character.ID).First(&entry).Error)
	assert.InDelta(t, 4.0, entry.Score, 1e-9)
	assert.Equal(t, 1, entry.MessageCount)

	var global models.GlobalLeaderboardEntry
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&global).Error)
	assert.InDelta(t, 4.0, global.TotalScore, 1e-9)
}

func TestGenerateResponseRetriesBadJudgeOutput(t *testing.T) {
	db := setupTestDB(t)
	queue := &captureQueue{}
	llm := newFakeLLM(t,
		"this is not json",
		`{"message": "too excited", "scores": 45}`,
		`{"message": "rough start", "scores": -9}`,
	)
	svc := newTestChatService(db, llm.client(), queue)
	user := createTestUser(t, db, "alice")
	character := createTestCharacter(t, db, "Remy", "2026-08-30")

	_, err := svc.SendMessage(character.ID, user.ID, "knock knock")
	require.NoError(t, err)
	require.NoError(t, svc.GenerateResponse(queue.tasks[0]))

	assert.Equal(t, 3, llm.callCount())

	messages, err := svc.GetMessages(character.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.NotNil(t, messages[1].Score)
	assert.InDelta(t, -3.0, *messages[1].Score, 1e-9)
}

func TestGenerateResponseJudgeExhaustionLeavesStateUntouched(t *testing.T) {
	db := setupTestDB(t)
	queue := &captureQueue{}
	llm := newFakeLLM(t, "garbage every time")
	svc := newTestChatService(db, llm.client(), queue)
	user := createTestUser(t, db, "alice")
	character := createTestCharacter(t, db, "Remy", "2026-08-30")

	_, err := svc.SendMessage(character.ID, user.ID, "hello")
	require.NoError(t, err)

	err = svc.GenerateResponse(queue.tasks[0])
	require.Error(t, err)
	assert.Equal(t, 3, llm.callCount())

	// Only the user turn remains; no AI turn, no leaderboard movement.
	messages, err := svc.GetMessages(character.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.False(t, messages[0].IsAiResponse)

	var entryCount, globalCount int64
	require.NoError(t, db.Model(&models.LeaderboardEntry{}).Count(&entryCount).Error)
	require.NoError(t, db.Model(&models.GlobalLeaderboardEntry{}).Count(&globalCount).Error)
	assert.Zero(t, entryCount)
	assert.Zero(t, globalCount)
}

func TestGenerateResponseFailsFastWhenCharacterGone(t *testing.T) {
	db := setupTestDB(t)
	queue := &captureQueue{}
	llm := newFakeLLM(t, `{"message": "hi", "scores": 3}`)
	svc := newTestChatService(db, llm.client(), queue)
	user := createTestUser(t, db, "alice")

	err := svc.GenerateResponse(tasks.ResponseTask{
		TaskID:      "t-missing",
		CharacterID: 12345,
		UserID:      user.ID,
		LastMessage: "hello?",
	})
	assert.ErrorIs(t, err, ErrCharacterNotFound)
	assert.Zero(t, llm.callCount())
}

func TestSecondMessageAccumulates(t *testing.T) {
	db := setupTestDB(t)
	queue := &captureQueue{}
	llm := newFakeLLM(t,
		`{"message": "nice to meet you", "scores": 12}`,
		`{"message": "you again!", "scores": 6}`,
	)
	svc := newTestChatService(db, llm.client(), queue)
	user := createTestUser(t, db, "alice")
	character := createTestCharacter(t, db, "Remy", "2026-08-30")

	_, err := svc.SendMessage(character.ID, user.ID, "hello")
	require.NoError(t, err)
	require.NoError(t, svc.GenerateResponse(queue.tasks[0]))

	_, err = svc.SendMessage(character.ID, user.ID, "missed me?")
	require.NoError(t, err)
	require.Len(t, queue.tasks, 2)
	assert.InDelta(t, 4.0, queue.tasks[1].CurrentScore, 1e-9)
	require.NoError(t, svc.GenerateResponse(queue.tasks[1]))

	var entry models.LeaderboardEntry
	require.NoError(t, db.Where("user_id = ? AND character_id = ?", user.ID, character.ID).First(&entry).Error)
	assert.InDelta(t, 6.0, entry.Score, 1e-9) // 4 + 2
	assert.Equal(t, 2, entry.MessageCount)

	var global models.GlobalLeaderboardEntry
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&global).Error)
	assert.InDelta(t, 6.0, global.TotalScore, 1e-9)
}

func TestBuildJudgePromptEmbedsPersonaScoreAndHistory(t *testing.T) {
	character := &models.Character{
		Name:        "Remy",
		Personality: "witty and warm",
		Background:  "a pastry chef who races pigeons",
		Interests:   []string{"baking", "pigeons"},
		Likes:       []string{"puns"},
		Dislikes:    []string{"bragging"},
	}
	history := []models.Message{
		{Content: "hi", IsAiResponse: false},
		{Content: "hello yourself", IsAiResponse: true},
		{Content: "what do you bake?", IsAiResponse: false},
	}

	prompt := buildJudgePrompt(character, 4.5, "what do you bake?", history)

	assert.Contains(t, prompt, "You are Remy, witty and warm. a pastry chef who races pigeons")
	assert.Contains(t, prompt, "Your interests are: baking, pigeons")
	assert.Contains(t, prompt, "You like: puns")
	assert.Contains(t, prompt, "You dislike: bragging")
	assert.Contains(t, prompt, "Current affection score: 4.50")
	assert.Contains(t, prompt, "The user's latest message: what do you bake?")
	assert.Contains(t, prompt, "User: hi")
	assert.Contains(t, prompt, "Remy: hello yourself")
}

func TestResponseTaskIDIsStablePerMessage(t *testing.T) {
	assert.Equal(t, responseTaskID(42), responseTaskID(42))
	assert.NotEqual(t, responseTaskID(42), responseTaskID(43))
}
