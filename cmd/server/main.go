package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mythchat/mythchat/internal/ai"
	"github.com/mythchat/mythchat/internal/chat"
	"github.com/mythchat/mythchat/internal/config"
	"github.com/mythchat/mythchat/internal/db"
	"github.com/mythchat/mythchat/internal/httpapi"
	"github.com/mythchat/mythchat/internal/httpapi/handlers"
	"github.com/mythchat/mythchat/internal/mythology"
	"github.com/mythchat/mythchat/internal/ratelimit"
	"github.com/mythchat/mythchat/internal/store/rabbitmq"
	"github.com/mythchat/mythchat/internal/store/redisstore"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer rds.Close()
	if err := rds.Ping(context.Background()); err != nil {
		log.Fatalf("redis ping: %v", err)
	}

	repo := chat.NewRepo(gdb)
	myths := mythology.NewRepo(gdb)
	guests := chat.NewGuestStore(rds, cfg.GuestSessionTTL)
	limiter := ratelimit.New(rds, cfg.RateLimitWindow, cfg.AnonRateCeiling, cfg.AuthRateCeiling)

	reg := ai.NewRegistry()
	reg.Register("groq", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.GroqModel
		}
		return ai.NewGroqProvider(cfg.GroqBaseURL, cfg.GroqAPIKey, m), nil
	})
	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		_ = ctx
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
	})

	svc := chat.NewService(repo, guests, myths, limiter, reg, cfg.AIProvider, cfg.GroqModel, cfg.ChatHistoryWindow)

	// migrations run inline when the broker is unreachable
	var rabbit *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			log.Printf("rabbit unavailable, running migrations inline: %v", err)
		} else {
			rabbit = p
			defer rabbit.Close()
		}
	}

	h := handlers.NewHandler(gdb, cfg, svc, myths, rabbit)
	r := httpapi.NewRouter(h)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
