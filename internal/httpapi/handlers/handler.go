package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mythchat/mythchat/internal/chat"
	"github.com/mythchat/mythchat/internal/config"
	"github.com/mythchat/mythchat/internal/httpapi/middleware"
	"github.com/mythchat/mythchat/internal/mythology"
	"github.com/mythchat/mythchat/internal/store/rabbitmq"
)

type Handler struct {
	DB      *gorm.DB
	Cfg     config.Config
	ChatSvc *chat.Service
	Myths   *mythology.Repo

	// nil when the queue is unavailable; migrations then run inline.
	Rabbit *rabbitmq.Publisher

	// icons holds the client used to fetch upstream SVG icons.
	icons *http.Client
}

func NewHandler(db *gorm.DB, cfg config.Config, svc *chat.Service, myths *mythology.Repo, rabbit *rabbitmq.Publisher) *Handler {
	return &Handler{
		DB:      db,
		Cfg:     cfg,
		ChatSvc: svc,
		Myths:   myths,
		Rabbit:  rabbit,
		icons:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// actorFromContext assembles the caller identity the session layer works
// with: the JWT user id (when present) plus the anonymous device id.
func actorFromContext(c *gin.Context) chat.Actor {
	actor := chat.Actor{}
	if v, ok := c.Get(middleware.UserIDKey); ok {
		if id, ok := v.(uint64); ok && id > 0 {
			actor.UserID = id
			actor.Authenticated = true
		}
	}
	if v, ok := c.Get(middleware.DeviceIDKey); ok {
		if id, ok := v.(string); ok {
			actor.DeviceID = id
		}
	}
	return actor
}
