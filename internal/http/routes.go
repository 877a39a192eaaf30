package http

import (
	"tasktracker/internal/config"
	"tasktracker/internal/http/handlers"
	"tasktracker/internal/http/middleware"
	"tasktracker/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, version string) {
	hub := ws.NewHub()
	h := handlers.NewHandler(db, hub)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	requireAuth := middleware.Auth(h.Users)

	// Credential endpoints get the tight brute-force window; everything
	// else shares the general API window.
	authRL := middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow)
	apiRL := middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authRL, h.Register)
		auth.POST("/login", authRL, h.Login)
		auth.GET("/validate", requireAuth, h.Validate)
		auth.GET("/me", requireAuth, h.Me)
		auth.POST("/logout", requireAuth, h.Logout)
		auth.POST("/refresh", requireAuth, h.Refresh)
	}

	tasks := r.Group("/tasks")
	tasks.Use(apiRL, requireAuth)
	{
		tasks.GET("", h.ListTasks)
		tasks.POST("", h.CreateTask)
		tasks.PUT("/:id", h.UpdateTask)
		tasks.PATCH("/:id/toggle", h.ToggleTask)
		tasks.DELETE("/:id", h.DeleteTask)
	}

	// Live task events for the SPA
	r.GET("/ws", h.TaskEvents(hub))

	// Frontend static files
	r.StaticFS("/assets", gin.Dir("./web", false))
	r.NoRoute(func(c *gin.Context) {
		c.File("./web/index.html")
	})
}
