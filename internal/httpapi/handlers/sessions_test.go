package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mythchat/mythchat/internal/httpapi/middleware"
)

type jobEnvelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"data"`
}

func newMigrateRouter(t *testing.T) *gin.Engine {
	t.Helper()
	h := newTestHandler(t, &stubProvider{reply: "ok"})

	r := gin.New()
	r.POST("/migrate", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uint64(7))
		c.Set(middleware.DeviceIDKey, "dev-1")
		h.Migrate(c)
	})
	return r
}

func TestMigrate_EnvelopeStatuses(t *testing.T) {
	r := newMigrateRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/migrate", nil)
	req.Header.Set("Idempotency-Key", "retry-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("fresh job must return 202, got %d body=%s", w.Code, w.Body.String())
	}
	var first jobEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.Code != 0 || first.Message != "ok" {
		t.Fatalf("unexpected envelope: code=%d message=%q", first.Code, first.Message)
	}
	if first.Data.ID == "" || first.Data.Status != "queued" {
		t.Fatalf("unexpected job payload: %+v", first.Data)
	}

	// replay with the same key returns the same job inside a 200 envelope
	req2 := httptest.NewRequest(http.MethodPost, "/migrate", nil)
	req2.Header.Set("Idempotency-Key", "retry-token")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusOK {
		t.Fatalf("replayed job must return 200, got %d", w2.Code)
	}
	var second jobEnvelope
	if err := json.Unmarshal(w2.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.Code != 0 || second.Data.ID != first.Data.ID {
		t.Fatalf("replay must return the original job, got %+v", second.Data)
	}
}

func TestMigrate_RequiresDeviceID(t *testing.T) {
	h := newTestHandler(t, &stubProvider{reply: "ok"})

	r := gin.New()
	r.POST("/migrate", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uint64(7))
		h.Migrate(c)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/migrate", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing device id must return 400, got %d", w.Code)
	}
	var resp jobEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code == 0 {
		t.Fatalf("error envelope must carry a non-zero code")
	}
}
