package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skillswap-server/logger"
	"skillswap-server/middleware"
	"skillswap-server/models"
	"skillswap-server/services"
)

type SwapHandler struct {
	swaps *services.SwapService
	log   *logger.Logger
}

func NewSwapHandler(swaps *services.SwapService, baseLog *logger.Logger) *SwapHandler {
	return &SwapHandler{swaps: swaps, log: baseLog.With("handler", "swaps")}
}

// Create handles POST /swaps
func (h *SwapHandler) Create(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var input models.SwapCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body: "+err.Error())
		return
	}

	swap, err := h.swaps.Create(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, "swap request created", swap)
}

// ListMine handles GET /swaps/my-swaps
func (h *SwapHandler) ListMine(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	filter := models.SwapListFilter{
		Type:   c.DefaultQuery("type", "all"),
		Status: models.SwapStatus(c.Query("status")),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
	}

	swaps, pagination, err := h.swaps.ListForUser(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "swaps retrieved", gin.H{
		"swaps":      swaps,
		"pagination": pagination,
	})
}

// Get handles GET /swaps/:id
func (h *SwapHandler) Get(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	swapID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidation(c, "invalid swap id")
		return
	}

	swap, err := h.swaps.Get(c.Request.Context(), actor, swapID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "swap retrieved", swap)
}

// Respond handles PUT /swaps/:id/status — the recipient accepts or rejects.
func (h *SwapHandler) Respond(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	swapID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidation(c, "invalid swap id")
		return
	}

	var input models.SwapRespond
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "status must be accepted or rejected")
		return
	}

	swap, err := h.swaps.Respond(c.Request.Context(), actor, swapID, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "swap "+input.Status, swap)
}

// Cancel handles PUT /swaps/:id/cancel
func (h *SwapHandler) Cancel(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	swapID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidation(c, "invalid swap id")
		return
	}

	swap, err := h.swaps.Cancel(c.Request.Context(), actor, swapID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "swap cancelled", swap)
}

// Complete handles PUT /swaps/:id/complete
func (h *SwapHandler) Complete(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	swapID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidation(c, "invalid swap id")
		return
	}

	swap, err := h.swaps.Complete(c.Request.Context(), actor, swapID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "swap completed", swap)
}
