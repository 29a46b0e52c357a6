package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/dropfour/backend/internal/config"
	"github.com/dropfour/backend/internal/repository/postgres"
	redisrepo "github.com/dropfour/backend/internal/repository/redis"
	"github.com/dropfour/backend/internal/service/cleanup"
	"github.com/dropfour/backend/internal/service/game"
	transportHttp "github.com/dropfour/backend/internal/transport/http"
	"github.com/dropfour/backend/internal/transport/http/middleware"
	"github.com/dropfour/backend/internal/transport/websocket"
	"github.com/dropfour/backend/pkg/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.LoadConfig()

	// Postgres is optional: without it, finished games are not persisted
	// and the service runs memory-only.
	var gameRepo *postgres.GameRepo
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		log.Println("Running database migrations...")
		if err := postgres.RunMigrations(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Database migration completed successfully")

		gameRepo = postgres.NewGameRepo(db)
	} else {
		log.Println("DATABASE_URL not set, running without game persistence")
	}

	// Redis is optional too; Connect returns nil when unreachable.
	var cache *redisrepo.Cache
	if client := redisrepo.Connect(cfg.RedisAddr, cfg.RedisPassword); client != nil {
		defer client.Close()
		cache = redisrepo.NewCache(client)
	}

	var repo game.GameRepository
	var pruner cleanup.GamePruner
	if gameRepo != nil {
		repo = gameRepo
		pruner = gameRepo
	}
	var cacheRepo game.CacheRepository
	if cache != nil {
		cacheRepo = cache
	}

	sessionManager := game.NewSessionManager(repo, cacheRepo)
	tokens := auth.NewTokenIssuer(cfg.TokenSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	connManager := websocket.NewConnectionManager()

	cleanupWorker := cleanup.NewWorker(sessionManager, pruner, time.Duration(cfg.CleanupIntervalMin)*time.Minute)
	cleanupWorker.Start()

	gameHandler := transportHttp.NewGameHandler(sessionManager, tokens, connManager, cache, cfg.HintMaxDepth)
	leaderboardHandler := transportHttp.NewLeaderboardHandler(cache)
	wsHandler := websocket.NewHandler(connManager, sessionManager, tokens, cfg.HintMaxDepth)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware())

	authMW := middleware.PlayerAuthMiddleware(tokens)

	// game lifecycle
	router.POST("/api/games", gameHandler.CreateGame)
	router.GET("/api/games", gameHandler.ListGames)
	router.GET("/api/games/:id", gameHandler.GetGame)
	router.POST("/api/games/:id/join", gameHandler.JoinGame)

	// seat-token protected
	router.POST("/api/games/:id/moves", authMW, gameHandler.MakeMove)
	router.GET("/api/games/:id/hint", authMW, gameHandler.Hint)
	router.POST("/api/games/:id/resign", authMW, gameHandler.Resign)

	// finished games
	if gameRepo != nil {
		historyHandler := transportHttp.NewHistoryHandler(gameRepo)
		router.GET("/api/history", historyHandler.GetHistory)
		router.GET("/api/history/:id", historyHandler.GetGameDetails)
	}

	router.GET("/api/leaderboard", leaderboardHandler.GetLeaderboard)

	// WebSocket route (auth handled inside the WS handler itself)
	router.GET("/ws", wsHandler.HandleWebSocket)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
