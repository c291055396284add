package routes

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skillswap-server/logger"
	"skillswap-server/middleware"
	"skillswap-server/repository"
	"skillswap-server/services"
)

type UserHandler struct {
	users *services.UserService
	log   *logger.Logger
}

func NewUserHandler(users *services.UserService, baseLog *logger.Logger) *UserHandler {
	return &UserHandler{users: users, log: baseLog.With("handler", "users")}
}

// List handles GET /users — the public, searchable directory.
func (h *UserHandler) List(c *gin.Context) {
	filter := repository.UserListFilter{
		Search:   c.Query("search"),
		Skill:    c.Query("skill"),
		Location: c.Query("location"),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 10),
	}

	profiles, pagination, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "users retrieved", gin.H{
		"users":      profiles,
		"pagination": pagination,
	})
}

// Search handles GET /users/search?skill=&type= — the skill is mandatory
// and type restricts the match to skills offered or wanted.
func (h *UserHandler) Search(c *gin.Context) {
	skill := c.Query("skill")
	if skill == "" {
		respondValidation(c, "skill query parameter is required")
		return
	}

	filter := repository.UserListFilter{
		Skill:     skill,
		SkillType: c.Query("type"),
		Location:  c.Query("location"),
		Page:      queryInt(c, "page", 1),
		Limit:     queryInt(c, "limit", 10),
	}

	profiles, pagination, err := h.users.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "users retrieved", gin.H{
		"users":      profiles,
		"pagination": pagination,
	})
}

// Get handles GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidation(c, "invalid user id")
		return
	}

	var viewer *services.Actor
	if actor, ok := middleware.GetActor(c); ok {
		viewer = &actor
	}

	profile, err := h.users.GetByID(c.Request.Context(), viewer, userID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "user retrieved", profile)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return value
}
