package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smsnotes/internal/config"
	"smsnotes/internal/handler"
	"smsnotes/internal/middleware"
	"smsnotes/internal/repository"
	"smsnotes/internal/service"
	"smsnotes/internal/sms"
	"smsnotes/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		log.Fatalf("JWT_SECRET_KEY not set in environment")
	}
	sessionTTLHours := config.Int64FromEnv("SESSION_TTL_HOURS", 24)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080" // Default port
	}

	// --- Storage ---
	// Without DB_HOST the server runs on the in-memory store. Fine for
	// development, everything is lost on restart.
	var (
		dbPool      *pgxpool.Pool
		userRepo    repository.UserRepository
		sessionRepo repository.SessionRepository
		noteRepo    repository.NoteRepository
	)
	if os.Getenv("DB_HOST") != "" {
		dbCfg, err := config.LoadDBConfig()
		if err != nil {
			log.Fatalf("Failed to load DB config: %v", err)
		}
		dbPool, err = config.ConnectDB(dbCfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer dbPool.Close()

		if err := config.AutoMigrate(dbPool); err != nil {
			log.Fatalf("Failed to auto-migrate database: %v", err)
		}

		userRepo = repository.NewUserRepository(dbPool)
		sessionRepo = repository.NewSessionRepository(dbPool)
		noteRepo = repository.NewNoteRepository(dbPool)
	} else {
		log.Println("DB_HOST not set, using in-memory store")
		store := repository.NewStore()
		userRepo = store
		sessionRepo = store.Sessions()
		noteRepo = store.Notes()
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(jwtSecret, sessionTTLHours)

	// --- SMS ---
	var sender sms.Sender
	if sid := os.Getenv("TWILIO_ACCOUNT_SID"); sid != "" {
		sender = sms.NewTwilioSender(sid, os.Getenv("TWILIO_AUTH_TOKEN"), os.Getenv("TWILIO_FROM_PHONE"))
	} else {
		log.Println("TWILIO_ACCOUNT_SID not set, sms messages go to the log")
		sender = sms.NewLogSender()
	}

	// --- Initialize Services ---
	sessionManager := service.NewSessionManager(sessionRepo, userRepo, jwtUtil)
	authService := service.NewAuthService(userRepo, sessionManager, jwtUtil, sender)
	noteService := service.NewNoteService(noteRepo, authService, sender)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	noteHandler := handler.NewNoteHandler(noteService)
	exportHandler := handler.NewExportHandler(noteService)

	// --- Setup Gin Router ---
	router := gin.Default()

	// Simple CORS middleware (allow all for development)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// --- Initialize Middlewares ---
	sessionMW := middleware.SessionAuthMiddleware(authService)

	// --- Register Routes ---
	apiGroup := router.Group("/api/v1")
	authHandler.RegisterAuthRoutes(apiGroup, sessionMW)
	noteHandler.RegisterNoteRoutes(apiGroup, sessionMW)
	exportHandler.RegisterExportRoutes(apiGroup, sessionMW)

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if dbPool != nil {
			if err := dbPool.Ping(context.Background()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "memory"})
	})
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + serverPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
