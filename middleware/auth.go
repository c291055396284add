package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skillswap-server/config"
	apperrors "skillswap-server/errors"
	"skillswap-server/logger"
	"skillswap-server/repository"
	"skillswap-server/services"
	"skillswap-server/utils"
)

const (
	// Context keys set by the auth middlewares.
	ContextActor = "actor"
	ContextUser  = "current_user"
)

func abortWithError(c *gin.Context, status int, code apperrors.Code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"error": gin.H{
			"code": code,
		},
	})
}

// AuthMiddleware validates the bearer token, loads the user, and rejects
// banned accounts. On success the actor and full user record are set on
// the request context.
func AuthMiddleware(cfg *config.Config, store repository.Store, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, apperrors.CodeUnauthenticated, "authorization header required")
			return
		}

		claims, err := utils.ParseToken(cfg, tokenString)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, apperrors.CodeUnauthenticated, "invalid or expired token")
			return
		}

		user, err := store.Users().GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				abortWithError(c, http.StatusUnauthorized, apperrors.CodeUnauthenticated, "user not found")
				return
			}
			log.Error("failed to load user for auth", "user_id", claims.UserID, "err", err)
			abortWithError(c, http.StatusInternalServerError, apperrors.CodeInternal, "internal server error")
			return
		}
		if user.IsBanned {
			abortWithError(c, http.StatusForbidden, apperrors.CodeAuthorization, "your account has been banned")
			return
		}

		c.Set(ContextActor, services.Actor{ID: user.ID, Name: user.Name, IsAdmin: user.IsAdmin})
		c.Set(ContextUser, user)
		c.Next()
	}
}

// OptionalAuthMiddleware sets the actor when a valid token is present but
// lets anonymous requests through untouched.
func OptionalAuthMiddleware(cfg *config.Config, store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := utils.ParseToken(cfg, tokenString)
		if err != nil {
			c.Next()
			return
		}

		user, err := store.Users().GetByID(c.Request.Context(), claims.UserID)
		if err != nil || user.IsBanned {
			c.Next()
			return
		}

		c.Set(ContextActor, services.Actor{ID: user.ID, Name: user.Name, IsAdmin: user.IsAdmin})
		c.Set(ContextUser, user)
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok || !actor.IsAdmin {
			abortWithError(c, http.StatusForbidden, apperrors.CodeAuthorization, "admin access required")
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated actor set by the auth middlewares.
func GetActor(c *gin.Context) (services.Actor, bool) {
	value, exists := c.Get(ContextActor)
	if !exists {
		return services.Actor{}, false
	}
	actor, ok := value.(services.Actor)
	return actor, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || tokenString == "" {
		return "", false
	}
	return tokenString, true
}
