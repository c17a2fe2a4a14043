package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mythchat/mythchat/internal/ai"
	"github.com/mythchat/mythchat/internal/chat"
)

// The public gateway keeps the original wire contract: plain JSON bodies,
// not the envelope the /api/v1 surface uses.

type chatReq struct {
	MythologyID   string       `json:"mythologyId"`
	MythologyName string       `json:"mythologyName"`
	GodID         *string      `json:"godId"`
	GodName       *string      `json:"godName"`
	Messages      []ai.Message `json:"messages"`
}

// Chat handles POST /api/chat: one message history in, one generated reply
// out. No retries here; resubmission is the caller's decision.
func (h *Handler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	if req.MythologyID == "" || len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	content, ts, err := h.ChatSvc.Complete(c.Request.Context(), chat.CompletionInput{
		MythologyID:   req.MythologyID,
		MythologyName: req.MythologyName,
		GodID:         req.GodID,
		GodName:       req.GodName,
		Messages:      req.Messages,
	})
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrGodNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "God not found"})
		case errors.Is(err, chat.ErrUpstreamThrottled):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": "Rate limit exceeded. Spróbuj ponownie za chwilę.",
			})
		default:
			log.Printf("[Chat] completion failed mythology=%s err=%v", req.MythologyID, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": "Nie udało się uzyskać odpowiedzi z AI.",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"content":   content,
		"timestamp": ts.UTC().Format(time.RFC3339),
	})
}
