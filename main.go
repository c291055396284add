package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"skillswap-server/config"
	"skillswap-server/database"
	"skillswap-server/logger"
	"skillswap-server/middleware"
	"skillswap-server/repository"
	"skillswap-server/routes"
	"skillswap-server/services"
	ws "skillswap-server/websocket"
)

func main() {
	// .env is optional; system environment wins in deployed setups.
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.Server.GinMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", "err", err)
	}

	store := repository.NewStore(db, log)

	hub := ws.NewHub(log)
	go hub.Run()

	notifier := services.NewNotifier(store, hub, log)
	aggregator := services.NewRatingAggregator(log)

	userService := services.NewUserService(store, cfg, log)
	swapService := services.NewSwapService(store, notifier, log)
	feedbackService := services.NewFeedbackService(store, aggregator, notifier, log)
	adminService := services.NewAdminService(store, notifier, log)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	limiter := middleware.NewRateLimiter(rate.Every(time.Second), 30)
	limiter.StartCleanupLoop()
	router.Use(middleware.RateLimitMiddleware(limiter))

	routes.Register(router, routes.Deps{
		Config:   cfg,
		Store:    store,
		Users:    userService,
		Swaps:    swapService,
		Feedback: feedbackService,
		Admin:    adminService,
		Hub:      hub,
		Log:      log,
	})

	log.Info("server starting", "port", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("server exited", "err", err)
	}
}
