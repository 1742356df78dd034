package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Dyslex1k/SceneSearch/internal/app"
	"github.com/Dyslex1k/SceneSearch/internal/clients/discord"
	prefabrepo "github.com/Dyslex1k/SceneSearch/internal/data/repos/prefab"
	userrepo "github.com/Dyslex1k/SceneSearch/internal/data/repos/user"
	"github.com/Dyslex1k/SceneSearch/internal/graph"
	"github.com/Dyslex1k/SceneSearch/internal/http/handlers"
	"github.com/Dyslex1k/SceneSearch/internal/http/middleware"
	"github.com/Dyslex1k/SceneSearch/internal/platform/logger"
	"github.com/Dyslex1k/SceneSearch/internal/platform/neo4jdb"
	"github.com/Dyslex1k/SceneSearch/internal/platform/pg"
	"github.com/Dyslex1k/SceneSearch/internal/platform/redisdb"
	"github.com/Dyslex1k/SceneSearch/internal/search"
	"github.com/Dyslex1k/SceneSearch/internal/server"
	"github.com/Dyslex1k/SceneSearch/internal/services"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading configuration...")
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Error("Could not load configuration", "error", err)
		os.Exit(1)
	}
	gin.SetMode(cfg.GinMode)

	// Postgres (canonical store, required)
	postgresService, err := pg.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Redis (search index, optional: writes degrade without it)
	var searchIndex search.Index
	rdb, err := redisdb.NewFromEnv(log)
	if err != nil {
		log.Warn("Redis init failed, search disabled", "error", err)
	} else if rdb != nil {
		searchIndex, err = search.NewRedisIndex(rdb, log)
		if err != nil {
			log.Warn("Search index init failed, search disabled", "error", err)
			searchIndex = nil
		}
	}

	// Neo4j (relationship graph, optional: writes degrade without it)
	var graphStore graph.Store
	neoClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("Neo4j init failed, relationship graph disabled", "error", err)
	} else if neoClient != nil {
		defer neoClient.Close(context.Background())
		graphStore = graph.NewNeo4jStore(neoClient.Driver, neoClient.Database, log)
	}

	// Repos
	log.Info("Setting up repos...")
	userRepo := userrepo.NewUserRepo(thePG, log)
	prefabRepo := prefabrepo.NewPrefabRepo(thePG, log)

	// Services
	log.Info("Setting up services...")
	authService := services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	discordProvider := discord.NewProvider(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordRedirectURL, log)
	loginService := services.NewLoginService(log, discordProvider, userRepo, authService)
	userService := services.NewUserService(log, userRepo)
	writeService := services.NewPrefabWriteService(log, prefabRepo, userRepo, searchIndex, graphStore)
	readService := services.NewPrefabReadService(log, prefabRepo, searchIndex)

	// Handlers
	authHandler := handlers.NewAuthHandler(log, loginService)
	userHandler := handlers.NewUserHandler(log, userService)
	prefabHandler := handlers.NewPrefabHandler(log, writeService, readService)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AuthHandler:    authHandler,
		UserHandler:    userHandler,
		PrefabHandler:  prefabHandler,
		AuthMiddleware: authMiddleware,
	})

	log.Info("Starting server...", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Error("Server exited", "error", err)
		os.Exit(1)
	}
}
