package handlers

import (
	"net/http"
	"strconv"

	"github.com/orykevin/chef-rizzranker/internal/services"

	"github.com/gin-gonic/gin"
)

const defaultLeaderboardLimit = 10

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func parseLimit(c *gin.Context) int {
	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	return limit
}

// GetCharacterLeaderboard godoc
// @Summary      Top players for one character
// @Tags         leaderboard
// @Produce      json
// @Security     BearerAuth
// @Param        characterId path int true "Character ID"
// @Param        limit query int false "Max entries" default(10)
// @Success      200 {array} services.RankedEntry
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/characters/{characterId}/leaderboard [get]
func (h *LeaderboardHandler) GetCharacterLeaderboard(c *gin.Context) {
	characterID, err := strconv.ParseUint(c.Param("characterId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid character id"})
		return
	}

	entries, err := h.leaderboardService.GetCharacterLeaderboard(uint(characterID), parseLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetGlobalLeaderboard godoc
// @Summary      Top players across all characters
// @Tags         leaderboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Max entries" default(10)
// @Success      200 {array} services.GlobalRankedEntry
// @Router       /api/v1/leaderboard/global [get]
func (h *LeaderboardHandler) GetGlobalLeaderboard(c *gin.Context) {
	entries, err := h.leaderboardService.GetGlobalLeaderboard(parseLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetMyEntries godoc
// @Summary      The caller's leaderboard rows for every character
// @Tags         leaderboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} LeaderboardEntry
// @Router       /api/v1/leaderboard/me [get]
func (h *LeaderboardHandler) GetMyEntries(c *gin.Context) {
	userID := c.GetUint("user_id")

	entries, err := h.leaderboardService.GetUserEntries(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}
