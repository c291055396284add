package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"skillswap-server/config"
	"skillswap-server/logger"
	"skillswap-server/middleware"
	"skillswap-server/repository"
	"skillswap-server/services"
	"skillswap-server/utils"
	ws "skillswap-server/websocket"
)

// Deps bundles everything the route tree needs.
type Deps struct {
	Config   *config.Config
	Store    repository.Store
	Users    *services.UserService
	Swaps    *services.SwapService
	Feedback *services.FeedbackService
	Admin    *services.AdminService
	Hub      *ws.Hub
	Log      *logger.Logger
}

// Register wires the full API surface onto the router.
func Register(router *gin.Engine, deps Deps) {
	authHandler := NewAuthHandler(deps.Users, deps.Log)
	userHandler := NewUserHandler(deps.Users, deps.Log)
	swapHandler := NewSwapHandler(deps.Swaps, deps.Log)
	feedbackHandler := NewFeedbackHandler(deps.Feedback, deps.Log)
	notificationHandler := NewNotificationHandler(deps.Store, deps.Log)
	adminHandler := NewAdminHandler(deps.Admin, deps.Log)

	requireAuth := middleware.AuthMiddleware(deps.Config, deps.Store, deps.Log)
	optionalAuth := middleware.OptionalAuthMiddleware(deps.Config, deps.Store)

	authLimiter := middleware.NewRateLimiter(rate.Every(time.Minute/5), 5)
	authLimiter.StartCleanupLoop()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.AuthRateLimitMiddleware(authLimiter), authHandler.Register)
		auth.POST("/login", middleware.AuthRateLimitMiddleware(authLimiter), authHandler.Login)
		auth.GET("/me", requireAuth, authHandler.Me)
		auth.PUT("/profile", requireAuth, authHandler.UpdateProfile)
	}

	users := api.Group("/users")
	{
		users.GET("", userHandler.List)
		users.GET("/search", userHandler.Search)
		users.GET("/:id", optionalAuth, userHandler.Get)
	}

	swaps := api.Group("/swaps", requireAuth)
	{
		swaps.POST("", swapHandler.Create)
		swaps.GET("/my-swaps", swapHandler.ListMine)
		swaps.GET("/:id", swapHandler.Get)
		swaps.PUT("/:id/status", swapHandler.Respond)
		swaps.PUT("/:id/cancel", swapHandler.Cancel)
		swaps.PUT("/:id/complete", swapHandler.Complete)
	}

	feedback := api.Group("/feedback")
	{
		feedback.POST("", requireAuth, feedbackHandler.Create)
		feedback.GET("/user/:userId", optionalAuth, feedbackHandler.ListForUser)
		feedback.GET("/by-user/:userId", requireAuth, feedbackHandler.ListGivenBy)
		feedback.PUT("/:id", requireAuth, feedbackHandler.Update)
		feedback.DELETE("/:id", requireAuth, feedbackHandler.Delete)
	}

	notifications := api.Group("/notifications", requireAuth)
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.PUT("/mark-all-read", notificationHandler.MarkAllRead)
		notifications.PUT("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin())
	{
		admin.GET("/dashboard", adminHandler.Dashboard)
		admin.GET("/swaps", adminHandler.ListSwaps)
		admin.GET("/feedback/stats", feedbackHandler.Stats)
		admin.PUT("/users/:id/ban", adminHandler.SetBanned)
		admin.POST("/notifications/broadcast", adminHandler.Broadcast)
	}

	api.GET("/ws", serveWebSocket(deps))
}

// serveWebSocket authenticates via the token query parameter, since browser
// websocket clients cannot set an Authorization header.
func serveWebSocket(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := utils.ParseToken(deps.Config, tokenString)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		user, err := deps.Store.Users().GetByID(c.Request.Context(), claims.UserID)
		if err != nil || user.IsBanned {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ws.ServeWebSocket(deps.Hub, c.Writer, c.Request, user.ID)
	}
}
