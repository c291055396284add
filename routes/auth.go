package routes

import (
	"github.com/gin-gonic/gin"

	"skillswap-server/logger"
	"skillswap-server/middleware"
	"skillswap-server/models"
	"skillswap-server/services"
)

type AuthHandler struct {
	users *services.UserService
	log   *logger.Logger
}

func NewAuthHandler(users *services.UserService, baseLog *logger.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: baseLog.With("handler", "auth")}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.users.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, "registration successful", result)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.users.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "login successful", result)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	user, err := h.users.GetProfile(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "profile retrieved", user)
}

// UpdateProfile handles PUT /auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var patch models.UserProfileUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondValidation(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), actor.ID, patch)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "profile updated", user)
}
