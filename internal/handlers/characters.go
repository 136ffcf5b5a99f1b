package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/orykevin/chef-rizzranker/internal/models"
	"github.com/orykevin/chef-rizzranker/internal/services"

	"github.com/gin-gonic/gin"
)

type CharacterHandler struct {
	characterService *services.CharacterService
}

func NewCharacterHandler(characterService *services.CharacterService) *CharacterHandler {
	return &CharacterHandler{characterService: characterService}
}

// GetActiveCharacter godoc
// @Summary      Get today's character
// @Tags         characters
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} Character
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/characters/active [get]
func (h *CharacterHandler) GetActiveCharacter(c *gin.Context) {
	today := time.Now().UTC().Format(models.ActiveDateLayout)

	character, err := h.characterService.GetActiveCharacter(today)
	if err != nil {
		if errors.Is(err, services.ErrCharacterNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "no character available today"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, character)
}

// ListCharacters godoc
// @Summary      List all past and present characters
// @Tags         characters
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Character
// @Router       /api/v1/characters [get]
func (h *CharacterHandler) ListCharacters(c *gin.Context) {
	characters, err := h.characterService.ListCharacters()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, characters)
}
