package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/orykevin/chef-rizzranker/internal/services"
	"github.com/orykevin/chef-rizzranker/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	hub         *ws.Hub
	authService *services.AuthService
}

func NewWSHandler(hub *ws.Hub, authService *services.AuthService) *WSHandler {
	return &WSHandler{hub: hub, authService: authService}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket godoc
// @Summary      WebSocket stream of AI replies for one conversation
// @Description  Browsers cannot set headers on websocket upgrades, so the JWT
// @Description  is passed as a query parameter.
// @Tags         websocket
// @Param        characterId path int true "Character ID"
// @Param        token query string true "JWT"
// @Router       /ws/chat/{characterId} [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	characterID, err := strconv.ParseUint(c.Param("characterId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid character id"})
		return
	}

	userID, err := h.authService.ValidateToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	key := ws.ConversationKey(uint(characterID), userID)
	h.hub.AddConnection(key, conn)
	defer h.hub.RemoveConnection(key, conn)

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}
