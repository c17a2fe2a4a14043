package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/mythchat/mythchat/internal/ai"
	"github.com/mythchat/mythchat/internal/chat"
	"github.com/mythchat/mythchat/internal/config"
	"github.com/mythchat/mythchat/internal/mythology"
	"github.com/mythchat/mythchat/internal/ratelimit"
)

type stubProvider struct {
	reply string
	err   error
}

func (p *stubProvider) Chat(ctx context.Context, messages []ai.Message) (string, error) {
	_ = ctx
	_ = messages
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

type allowAllStore struct{}

func (allowAllStore) GetRecord(ctx context.Context, key string) (*ratelimit.Record, error) {
	return nil, nil
}

func (allowAllStore) SetRecord(ctx context.Context, key string, rec *ratelimit.Record, ttl time.Duration) error {
	return nil
}

type nullKV struct{}

func (nullKV) Get(ctx context.Context, key string) (string, bool, error)           { return "", false, nil }
func (nullKV) Set(ctx context.Context, key, value string, ttl time.Duration) error { return nil }
func (nullKV) Del(ctx context.Context, key string) error                           { return nil }

func newTestHandler(t *testing.T, prov ai.Provider) *Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(gormsqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&mythology.Mythology{}, &mythology.God{}, &chat.Session{}, &chat.MigrationJob{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := db.Create(&mythology.Mythology{ID: "norse", Name: "Nordycka", ThemeColor: "#4a90d9"}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	reg := ai.NewRegistry()
	reg.Register("fake", func(ctx context.Context, model string) (ai.Provider, error) {
		return prov, nil
	})

	myths := mythology.NewRepo(db)
	limiter := ratelimit.New(allowAllStore{}, time.Minute, 100, 100)
	svc := chat.NewService(chat.NewRepo(db), chat.NewGuestStore(nullKV{}, time.Hour), myths, limiter, reg, "fake", "default", 10)

	return NewHandler(db, config.Config{}, svc, myths, nil)
}

func newGatewayRouter(t *testing.T, prov ai.Provider) *gin.Engine {
	t.Helper()
	h := newTestHandler(t, prov)

	r := gin.New()
	r.POST("/api/chat", h.Chat)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatGateway_MissingFields(t *testing.T) {
	r := newGatewayRouter(t, &stubProvider{reply: "ok"})

	for _, body := range []string{
		`{}`,
		`{"mythologyId":"norse"}`,
		`{"messages":[{"role":"user","content":"hej"}]}`,
		`not json`,
	} {
		w := postJSON(t, r, "/api/chat", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp["error"] != "Missing required fields" {
			t.Fatalf("unexpected error message: %q", resp["error"])
		}
	}
}

func TestChatGateway_GodNotFound(t *testing.T) {
	r := newGatewayRouter(t, &stubProvider{reply: "ok"})

	w := postJSON(t, r, "/api/chat",
		`{"mythologyId":"norse","godId":"nobody","messages":[{"role":"user","content":"hej"}]}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "God not found" {
		t.Fatalf("unexpected error message: %q", resp["error"])
	}
}

func TestChatGateway_Success(t *testing.T) {
	r := newGatewayRouter(t, &stubProvider{reply: "Witaj, śmiertelniku."})

	w := postJSON(t, r, "/api/chat",
		`{"mythologyId":"norse","mythologyName":"Nordycka","messages":[{"role":"user","content":"hej"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Content   string `json:"content"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Content != "Witaj, śmiertelniku." {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Fatalf("timestamp not RFC3339: %q", resp.Timestamp)
	}
}

func TestChatGateway_UpstreamThrottled(t *testing.T) {
	r := newGatewayRouter(t, &stubProvider{err: ai.ErrRateLimited})

	w := postJSON(t, r, "/api/chat",
		`{"mythologyId":"norse","messages":[{"role":"user","content":"hej"}]}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "Internal server error" {
		t.Fatalf("unexpected error: %q", resp["error"])
	}
	if resp["message"] != "Rate limit exceeded. Spróbuj ponownie za chwilę." {
		t.Fatalf("unexpected message: %q", resp["message"])
	}
}
