package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/orykevin/chef-rizzranker/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Character{},
		&models.Message{},
		&models.LeaderboardEntry{},
		&models.GlobalLeaderboardEntry{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := models.User{Username: username, PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestCharacter(t *testing.T, db *gorm.DB, name, activeDate string) *models.Character {
	t.Helper()

	character := models.Character{
		Name:        name,
		Personality: "witty and warm",
		Background:  "a pastry chef who races pigeons",
		Interests:   []string{"baking", "pigeons", "jazz", "hiking"},
		Likes:       []string{"puns", "curiosity", "honesty"},
		Dislikes:    []string{"bragging", "one-word answers", "rudeness"},
		ActiveDate:  activeDate,
	}
	require.NoError(t, db.Create(&character).Error)
	return &character
}

// fakeLLM serves an OpenAI-compatible chat completions endpoint that returns
// the given assistant contents in order, repeating the last one once the list
// is exhausted.
type fakeLLM struct {
	server *httptest.Server
	calls  int32
}

func newFakeLLM(t *testing.T, contents ...string) *fakeLLM {
	t.Helper()

	f := &fakeLLM{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)

		i := int(atomic.AddInt32(&f.calls, 1)) - 1
		if i >= len(contents) {
			i = len(contents) - 1
		}
		resp := map[string]interface{}{
			"choices": []interface{}{
				map[string]interface{}{
					"message": map[string]interface{}{"content": contents[i]},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeLLM) client() *LLMClient {
	return NewLLMClient("test-key", f.server.URL, "test-model")
}

func (f *fakeLLM) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}
