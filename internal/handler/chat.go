package handler

import (
	"net/http"
	"strings"

	"concierge/internal/model"
	"concierge/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles conversational recommendation requests
type ChatHandler struct {
	conversation *service.ConversationService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(conversation *service.ConversationService) *ChatHandler {
	return &ChatHandler{
		conversation: conversation,
	}
}

// Recommend handles POST /api/v1/recommend
func (h *ChatHandler) Recommend(c *gin.Context) {
	var req model.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query must not be empty"})
		return
	}

	response := h.conversation.Recommend(c.Request.Context(), &req)
	c.JSON(http.StatusOK, response)
}
