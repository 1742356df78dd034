package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Dyslex1k/SceneSearch/internal/http/handlers"
	"github.com/Dyslex1k/SceneSearch/internal/http/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	PrefabHandler  *handlers.PrefabHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.GET("/auth/discord/login", cfg.AuthHandler.Login)
	router.GET("/auth/discord/callback", cfg.AuthHandler.Callback)
	router.GET("/prefabs", cfg.PrefabHandler.List)
	router.GET("/prefabs/search", cfg.PrefabHandler.Search)
	router.GET("/prefabs/:id", cfg.PrefabHandler.Get)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.GET("/users/me", cfg.UserHandler.Me)
	protected.POST("/prefabs", cfg.PrefabHandler.Create)
	protected.PATCH("/prefabs/:id", cfg.PrefabHandler.Update)
	protected.DELETE("/prefabs/:id", cfg.PrefabHandler.Delete)

	return router
}
