package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/42-Course/matcha/internal/metrics"
	"github.com/42-Course/matcha/internal/models"
	"github.com/42-Course/matcha/internal/storage"
)

// CreateNotification handles POST /admin/notifications
// The admin is recorded as the sender and the notification is pushed like fan-out ones
func (h *Handler) CreateNotification(c *gin.Context) {
	var req models.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		abortWithError(c, http.StatusBadRequest, "Message is required")
		return
	}
	if req.Type != "" && !req.Type.IsValid() {
		abortWithError(c, http.StatusBadRequest, "Invalid notification type")
		return
	}
	if req.UserID <= 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	admin, ok := CurrentUser(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetUserByID(ctx, req.UserID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("Failed to get user", zap.Int64("user_id", req.UserID), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to create notification")
		return
	}

	from := admin.ID
	n, err := h.store.CreateNotification(ctx, models.NotificationInput{
		UserID:     req.UserID,
		FromUserID: &from,
		Type:       req.Type,
		Message:    message,
		TargetID:   req.TargetID,
	})
	if err != nil {
		if errors.Is(err, storage.ErrInvalidNotification) {
			abortWithError(c, http.StatusBadRequest, "Invalid notification type")
			return
		}
		h.logger.Error("Failed to create notification", zap.Int64("user_id", req.UserID), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to create notification")
		return
	}

	metrics.AddNotificationsCreated(string(n.Type), 1)
	h.notifier.Enqueue(*n)
	respondData(c, http.StatusCreated, n)
}

// ListNotifications handles GET /notifications
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	notifications, err := h.store.ListNotifications(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list notifications", zap.Int64("user_id", userID), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve notifications")
		return
	}
	respondData(c, http.StatusOK, notifications)
}

// MarkNotificationRead handles PATCH /notifications/:id/read
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.store.MarkNotificationRead(c.Request.Context(), userID, id); err != nil {
		h.notificationError(c, userID, id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// DeleteNotification handles DELETE /notifications/:id
func (h *Handler) DeleteNotification(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid notification ID")
		return
	}

	if err := h.store.DeleteNotification(c.Request.Context(), userID, id); err != nil {
		h.notificationError(c, userID, id, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Notifications of other users are reported as missing
func (h *Handler) notificationError(c *gin.Context, userID, id int64, err error) {
	if errors.Is(err, storage.ErrNotificationNotFound) {
		abortWithError(c, http.StatusNotFound, "Notification not found")
		return
	}
	h.logger.Error("Notification update failed",
		zap.Int64("user_id", userID),
		zap.Int64("notification_id", id),
		zap.Error(err),
	)
	abortWithError(c, http.StatusInternalServerError, "Failed to update notification")
}
