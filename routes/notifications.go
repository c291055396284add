package routes

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "skillswap-server/errors"
	"skillswap-server/logger"
	"skillswap-server/middleware"
	"skillswap-server/models"
	"skillswap-server/repository"
)

type NotificationHandler struct {
	store repository.Store
	log   *logger.Logger
}

func NewNotificationHandler(store repository.Store, baseLog *logger.Logger) *NotificationHandler {
	return &NotificationHandler{store: store, log: baseLog.With("handler", "notifications")}
}

// List handles GET /notifications
func (h *NotificationHandler) List(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	unreadOnly := c.Query("unread") == "true"
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	notifications, total, err := h.store.Notifications().ListByUser(c.Request.Context(), actor.ID, unreadOnly, page, limit)
	if err != nil {
		respondError(c, h.log, apperrors.Internal("failed to fetch notifications", err))
		return
	}
	unread, err := h.store.Notifications().UnreadCount(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.log, apperrors.Internal("failed to count notifications", err))
		return
	}

	respondOK(c, "notifications retrieved", gin.H{
		"notifications": notifications,
		"unread_count":  unread,
		"pagination":    models.NewPagination(total, page, limit),
	})
}

// MarkRead handles PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidation(c, "invalid notification id")
		return
	}

	if err := h.store.Notifications().MarkRead(c.Request.Context(), notificationID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, h.log, apperrors.NotFound("notification not found"))
			return
		}
		respondError(c, h.log, apperrors.Internal("failed to mark notification read", err))
		return
	}
	respondOK(c, "notification marked as read", nil)
}

// UnreadCount handles GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	unread, err := h.store.Notifications().UnreadCount(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.log, apperrors.Internal("failed to count notifications", err))
		return
	}
	respondOK(c, "unread count retrieved", gin.H{"unread_count": unread})
}

// MarkAllRead handles PUT /notifications/mark-all-read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	if err := h.store.Notifications().MarkAllRead(c.Request.Context(), actor.ID); err != nil {
		respondError(c, h.log, apperrors.Internal("failed to mark notifications read", err))
		return
	}
	respondOK(c, "all notifications marked as read", nil)
}

// Delete handles DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	actor, _ := middleware.GetActor(c)

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidation(c, "invalid notification id")
		return
	}

	if err := h.store.Notifications().Delete(c.Request.Context(), notificationID, actor.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, h.log, apperrors.NotFound("notification not found"))
			return
		}
		respondError(c, h.log, apperrors.Internal("failed to delete notification", err))
		return
	}
	respondOK(c, "notification deleted", nil)
}
