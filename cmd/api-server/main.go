package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/librishare/librishare/internal/auth"
	"github.com/librishare/librishare/internal/book"
	"github.com/librishare/librishare/internal/feed"
	"github.com/librishare/librishare/internal/health"
	"github.com/librishare/librishare/internal/library"
	"github.com/librishare/librishare/internal/loan"
	"github.com/librishare/librishare/pkg/database"
	"github.com/librishare/librishare/pkg/logger"
	"github.com/librishare/librishare/pkg/metrics"
)

func main() {
	// Load environment variables from .env if present (optional)
	_ = godotenv.Load()

	logLevel := logger.INFO
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		logLevel = logger.LogLevel(level)
	}
	jsonFormat := os.Getenv("LOG_FORMAT") == "json"
	logger.Init(logLevel, jsonFormat, os.Stdout)

	log := logger.GetLogger().WithContext("component", "api_server")
	log.Info("starting_api_server", "version", "1.0.0")

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/librishare.db"
	}

	if err := database.InitDatabase(dbPath); err != nil {
		log.Error("failed_to_initialize_database", "error", err.Error(), "path", dbPath)
		os.Exit(1)
	}
	defer database.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-this-in-production"
		log.Warn("using_default_jwt_secret", "message", "Set JWT_SECRET environment variable in production!")
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
		log.Info("using_default_frontend_url", "url", frontendURL)
	}

	// Feed hub fans activity events out to websocket subscribers
	hub := feed.NewHub()
	go hub.Run()
	feedService := feed.NewService(hub)

	authHandler := auth.NewHandler(jwtSecret)
	bookHandler := book.NewHandler()
	libraryHandler := library.NewHandler(feedService)
	loanHandler := loan.NewHandler(feedService)
	feedHandler := feed.NewHandler(feedService, hub)
	healthHandler := health.NewHandler()
	metricsHandler := metrics.NewHandler()

	router := gin.Default()
	router.Use(metrics.CountRequests())

	config := cors.DefaultConfig()
	config.AllowOrigins = []string{frontendURL}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control"}
	config.ExposeHeaders = []string{"Content-Length"}
	config.AllowCredentials = true
	router.Use(cors.New(config))

	router.GET("/healthz", healthHandler.Healthz)
	router.GET("/readyz", healthHandler.Readyz)
	router.GET("/metrics", metricsHandler.Metrics)

	v1 := router.Group("/api/v1")

	// Public: signup, login, catalog browsing, activity feed
	v1.POST("/users", authHandler.Register)
	v1.POST("/users/login", authHandler.Login)
	v1.GET("/users/:id", authHandler.GetProfile)

	bookGroup := v1.Group("/books")
	{
		bookGroup.GET("", bookHandler.SearchBooks)
		bookGroup.GET("/:id", bookHandler.GetBookByID)

		protected := bookGroup.Group("")
		protected.Use(auth.AuthMiddleware(jwtSecret))
		{
			protected.POST("", bookHandler.CreateBook)
		}
	}

	feedGroup := v1.Group("/feed")
	{
		feedGroup.GET("", feedHandler.Recent)
		feedGroup.GET("/ws", feedHandler.Subscribe)
	}

	// User-scoped routes: token must match the user in the path
	userGroup := v1.Group("/users/:id")
	userGroup.Use(auth.AuthMiddleware(jwtSecret), auth.RequireSelf())
	{
		userGroup.PATCH("/password", authHandler.ChangePassword)

		userGroup.GET("/library", libraryHandler.GetLibrary)
		userGroup.POST("/library", libraryHandler.AddToLibrary)
		userGroup.GET("/library/stats", libraryHandler.GetStats)
		userGroup.PATCH("/library/:entryId/status", libraryHandler.UpdateStatus)
		userGroup.PATCH("/library/:entryId/progress", libraryHandler.UpdateProgress)
		userGroup.PATCH("/library/:entryId/rating", libraryHandler.RateEntry)
		userGroup.DELETE("/library/:entryId", libraryHandler.RemoveFromLibrary)

		userGroup.GET("/loans", loanHandler.ListLoans)
		userGroup.POST("/loans", loanHandler.CreateLoan)
		userGroup.PATCH("/loans/:loanId/return", loanHandler.ReturnLoan)
	}

	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	log.Info("starting_api_server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("failed_to_start_api_server", "error", err.Error())
		os.Exit(1)
	}
}
