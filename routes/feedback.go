package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skillswap-server/logger"
	"skillswap-server/middleware"
	"skillswap-server/models"
	"skillswap-server/services"
)

type FeedbackHandler struct {
	feedback *services.FeedbackService
	log      *logger.Logger
}

func NewFeedbackHandler(feedback *services.FeedbackService, baseLog *logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback, log: baseLog.With("handler", "feedback")}
}

// Create handles POST /feedback
func (h *FeedbackHandler) Create(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	var input models.FeedbackCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body: "+err.Error())
		return
	}

	feedback, err := h.feedback.Create(c.Request.Context(), actor, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondCreated(c, "feedback submitted", feedback)
}

// ListForUser handles GET /feedback/user/:userId — public with optional
// auth; the user themselves and admins also see private feedback.
func (h *FeedbackHandler) ListForUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondValidation(c, "invalid user id")
		return
	}

	publicOnly := true
	if actor, ok := middleware.GetActor(c); ok && (actor.ID == userID || actor.IsAdmin) {
		publicOnly = false
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	result, err := h.feedback.ListForUser(c.Request.Context(), userID, page, limit, publicOnly)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "feedback retrieved", result)
}

// ListGivenBy handles GET /feedback/by-user/:userId
func (h *FeedbackHandler) ListGivenBy(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondValidation(c, "invalid user id")
		return
	}

	feedback, pagination, err := h.feedback.ListGivenBy(c.Request.Context(), actor, userID, queryInt(c, "page", 1), queryInt(c, "limit", 10))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "feedback retrieved", gin.H{
		"feedback":   feedback,
		"pagination": pagination,
	})
}

// Update handles PUT /feedback/:id
func (h *FeedbackHandler) Update(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	feedbackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidation(c, "invalid feedback id")
		return
	}

	var input models.FeedbackUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, "invalid request body: "+err.Error())
		return
	}

	feedback, err := h.feedback.Update(c.Request.Context(), actor, feedbackID, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "feedback updated", feedback)
}

// Delete handles DELETE /feedback/:id
func (h *FeedbackHandler) Delete(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	feedbackID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidation(c, "invalid feedback id")
		return
	}

	if err := h.feedback.Delete(c.Request.Context(), actor, feedbackID); err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "feedback deleted", nil)
}

// Stats handles GET /admin/feedback/stats
func (h *FeedbackHandler) Stats(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	stats, err := h.feedback.Stats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, "feedback stats retrieved", stats)
}
