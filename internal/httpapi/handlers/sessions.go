package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mythchat/mythchat/internal/chat"
	"github.com/mythchat/mythchat/internal/common"
)

type sendMessageReq struct {
	SessionID   string `json:"sessionId"`
	MythologyID string `json:"mythologyId"`
	GodID       string `json:"godId"`
	Content     string `json:"content"`
	Initial     bool   `json:"initial"`
}

// SendMessage handles POST /api/v1/sessions/messages: one conversational
// turn against whichever store the actor's auth state selects.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40000, "invalid request body")
		return
	}

	actor := actorFromContext(c)
	result, err := h.ChatSvc.SendMessage(c.Request.Context(), actor, chat.SendInput{
		SessionID:   req.SessionID,
		MythologyID: req.MythologyID,
		GodID:       req.GodID,
		Content:     req.Content,
		Initial:     req.Initial,
	})
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrMissingFields):
			common.Fail(c, http.StatusBadRequest, 40000, "missing required fields")
		case errors.Is(err, chat.ErrGodNotFound):
			common.Fail(c, http.StatusNotFound, 40400, "god not found")
		case errors.Is(err, chat.ErrGodMismatch), errors.Is(err, chat.ErrUnresolvedSession):
			common.Fail(c, http.StatusBadRequest, 40000, "session cannot be resolved")
		case errors.Is(err, chat.ErrRateLimited):
			ceiling := h.Cfg.AnonRateCeiling
			if actor.Authenticated {
				ceiling = h.Cfg.AuthRateCeiling
			}
			common.Fail(c, http.StatusTooManyRequests, 42900,
				fmt.Sprintf("Osiągnąłeś limit (%d/min). Poczekaj chwilę.", ceiling))
		case errors.Is(err, chat.ErrSendInFlight):
			common.Fail(c, http.StatusConflict, 40900, "poprzednia wiadomość jest jeszcze przetwarzana")
		case errors.Is(err, chat.ErrUpstreamThrottled), errors.Is(err, chat.ErrUpstream):
			log.Printf("[Sessions] send failed session=%s err=%v", req.SessionID, err)
			common.Fail(c, http.StatusInternalServerError, 50000, "Błąd odpowiedzi. Spróbuj ponownie.")
		default:
			log.Printf("[Sessions] send failed session=%s err=%v", req.SessionID, err)
			common.Fail(c, http.StatusInternalServerError, 50000, "internal server error")
		}
		return
	}

	common.OK(c, gin.H{
		"session":          result.Session,
		"reply":            result.Reply,
		"sessionIdChanged": result.SessionIDChanged,
	})
}

// ListSessions handles GET /api/v1/sessions.
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.ChatSvc.ListSessions(c.Request.Context(), actorFromContext(c))
	if err != nil {
		log.Printf("[Sessions] list failed err=%v", err)
		common.Fail(c, http.StatusInternalServerError, 50000, "failed to fetch sessions")
		return
	}
	common.OK(c, sessions)
}

// GetSession handles GET /api/v1/sessions/:id. Empty transcripts carry the
// persona greeting so clients can open a conversation that is not blank.
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.ChatSvc.GetSession(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40400, "session not found")
			return
		}
		log.Printf("[Sessions] get failed id=%s err=%v", c.Param("id"), err)
		common.Fail(c, http.StatusInternalServerError, 50000, "failed to fetch session")
		return
	}

	payload := gin.H{"session": sess}
	if len(sess.Messages) == 0 {
		payload["greeting"] = sess.Greeting()
	}
	common.OK(c, payload)
}

// DeleteSession handles DELETE /api/v1/sessions/:id.
func (h *Handler) DeleteSession(c *gin.Context) {
	err := h.ChatSvc.DeleteSession(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40400, "session not found")
			return
		}
		log.Printf("[Sessions] delete failed id=%s err=%v", c.Param("id"), err)
		common.Fail(c, http.StatusInternalServerError, 50000, "failed to delete session")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}

// Migrate handles POST /api/v1/sessions/migrate: enqueue a job that copies
// the caller's device sessions into their account. Requires auth and a
// device id; an Idempotency-Key header makes resubmission return the same
// job instead of a new one.
func (h *Handler) Migrate(c *gin.Context) {
	actor := actorFromContext(c)
	if actor.DeviceID == "" {
		common.Fail(c, http.StatusBadRequest, 40000, "X-Device-ID header is required")
		return
	}

	jobID, err := common.NewULID()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50000, "internal server error")
		return
	}

	job := &chat.MigrationJob{
		ID:       jobID,
		UserID:   actor.UserID,
		DeviceID: actor.DeviceID,
		Status:   chat.JobQueued,
	}
	if key := c.GetHeader("Idempotency-Key"); key != "" {
		job.IdempotencyKey = &key
	}

	job, created, err := h.ChatSvc.CreateJobOrGetExisting(c.Request.Context(), job)
	if err != nil {
		log.Printf("[Sessions] migrate enqueue failed user=%d err=%v", actor.UserID, err)
		common.Fail(c, http.StatusInternalServerError, 50000, "failed to enqueue migration")
		return
	}

	if created {
		if h.Rabbit != nil {
			if err := h.Rabbit.PublishMigration(c.Request.Context(), job.ID, job.UserID, job.DeviceID); err != nil {
				log.Printf("[Sessions] migrate publish failed job=%s err=%v, running inline", job.ID, err)
				h.runMigrationInline(job.ID)
			}
		} else {
			h.runMigrationInline(job.ID)
		}
		common.Accepted(c, job)
		return
	}

	common.OK(c, job)
}

// runMigrationInline executes the job in-process when no broker is wired.
func (h *Handler) runMigrationInline(jobID string) {
	go func() {
		if err := h.ChatSvc.RunJob(context.Background(), jobID); err != nil {
			log.Printf("[Sessions] inline migration failed job=%s err=%v", jobID, err)
		}
	}()
}

// MigrationStatus handles GET /api/v1/sessions/migrate/:id. Jobs belonging
// to other users read as not found.
func (h *Handler) MigrationStatus(c *gin.Context) {
	actor := actorFromContext(c)
	job, err := h.ChatSvc.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil || job.UserID != actor.UserID {
		common.Fail(c, http.StatusNotFound, 40400, "job not found")
		return
	}
	common.OK(c, job)
}
