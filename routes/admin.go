package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skillswap-server/logger"
	"skillswap-server/middleware"
	"skillswap-server/models"
	"skillswap-server/services"
)

type AdminHandler struct {
	admin *services.AdminService
	log   *logger.Logger
}

func NewAdminHandler(admin *services.AdminService, baseLog *logger.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, log: baseLog.With("handler", "admin")}
}

// Dashboard handles GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	stats, err := h.admin.Dashboard(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "dashboard stats retrieved", stats)
}

type banRequest struct {
	Banned bool `json:"banned"`
}

// SetBanned handles PUT /admin/users/:id/ban
func (h *AdminHandler) SetBanned(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidation(c, "invalid user id")
		return
	}

	var input banRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.admin.SetBanned(c.Request.Context(), actor, userID, input.Banned); err != nil {
		respondError(c, h.log, err)
		return
	}
	message := "user unbanned"
	if input.Banned {
		message = "user banned"
	}
	respondOK(c, message, nil)
}

// ListSwaps handles GET /admin/swaps
func (h *AdminHandler) ListSwaps(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	status := models.SwapStatus(c.Query("status"))
	swaps, pagination, err := h.admin.ListSwaps(c.Request.Context(), actor, status, queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "swaps retrieved", gin.H{
		"swaps":      swaps,
		"pagination": pagination,
	})
}

type broadcastRequest struct {
	Message string `json:"message" binding:"required"`
}

// Broadcast handles POST /admin/notifications/broadcast
func (h *AdminHandler) Broadcast(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var input broadcastRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "message is required")
		return
	}

	if err := h.admin.Broadcast(c.Request.Context(), actor, input.Message); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "broadcast sent", nil)
}
