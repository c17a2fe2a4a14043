package httpapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mythchat/mythchat/internal/common"
	"github.com/mythchat/mythchat/internal/httpapi/handlers"
	"github.com/mythchat/mythchat/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())
	r.Use(middleware.Device())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders,
		"Authorization", "X-Device-ID", "X-Request-ID", "Idempotency-Key")
	r.Use(cors.New(corsCfg))

	r.GET("/ping", h.Ping)

	// original public surface, plain JSON shapes
	r.POST("/api/chat", h.Chat)
	r.GET("/api/mythologies", h.ListMythologies)

	v1 := r.Group("/api/v1")

	// catalog
	v1.GET("/mythologies", h.CatalogMythologies)
	v1.GET("/mythologies/:id", h.CatalogMythology)
	v1.GET("/mythologies/:id/gods", h.CatalogGods)
	v1.GET("/gods/:id", h.CatalogGod)
	v1.GET("/gods/:id/icon", h.GodIcon)
	v1.GET("/theme", h.Theme)

	// accounts
	v1.POST("/users", h.CreateUser)
	v1.POST("/login", h.Login)

	// sessions work for both guests (device id) and accounts (JWT); an
	// invalid token is rejected rather than silently downgraded
	sessions := v1.Group("/sessions")
	sessions.Use(middleware.AuthOptional(h.Cfg.JWTSecret))
	sessions.POST("/messages", h.SendMessage)
	sessions.GET("", h.ListSessions)
	sessions.GET("/:id", h.GetSession)
	sessions.DELETE("/:id", h.DeleteSession)

	authed := v1.Group("/")
	authed.Use(middleware.AuthRequired(h.Cfg.JWTSecret))
	authed.GET("/me", h.Me)
	authed.POST("/sessions/migrate", h.Migrate)
	authed.GET("/sessions/migrate/:id", h.MigrationStatus)

	return r
}
