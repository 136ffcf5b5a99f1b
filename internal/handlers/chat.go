package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/orykevin/chef-rizzranker/internal/services"
	"github.com/orykevin/chef-rizzranker/internal/tasks"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type SendMessageRequest struct {
	CharacterID uint   `json:"character_id" binding:"required" example:"1"`
	Message     string `json:"message" binding:"required" example:"hey, what are you cooking?"`
}

// SendMessage godoc
// @Summary      Send a chat message
// @Description  Persists the message and schedules the AI reply. The reply is
// @Description  not in the response; it arrives on the conversation websocket
// @Description  or on the next fetch of the message list.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SendMessageRequest true "Message"
// @Success      202 {object} Message
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Router       /api/v1/chat/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	message, err := h.chatService.SendMessage(req.CharacterID, userID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		case errors.Is(err, services.ErrCharacterNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		case errors.Is(err, tasks.ErrQueueFull):
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "too many pending replies, try again shortly"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, message)
}

// GetMessages godoc
// @Summary      Get the conversation with a character
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        characterId path int true "Character ID"
// @Success      200 {array} Message
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/chat/{characterId}/messages [get]
func (h *ChatHandler) GetMessages(c *gin.Context) {
	userID := c.GetUint("user_id")

	characterID, err := strconv.ParseUint(c.Param("characterId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid character id"})
		return
	}

	messages, err := h.chatService.GetMessages(uint(characterID), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, messages)
}
