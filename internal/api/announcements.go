package api

import (
	"errors"
	"html"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/42-Course/matcha/internal/metrics"
	"github.com/42-Course/matcha/internal/models"
	"github.com/42-Course/matcha/internal/storage"
)

const maxTitleLength = 255

var errInvalidExpiry = errors.New("expires_at must be an RFC 3339 timestamp or a YYYY-MM-DD date")

// parseExpiry accepts RFC 3339 timestamps and plain dates (midnight UTC)
func parseExpiry(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)

	// expires_at is a timestamp without time zone holding UTC
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		t = t.UTC()
		return &t, nil
	}
	return nil, errInvalidExpiry
}

// ListAnnouncements handles GET /admin/announcements
func (h *Handler) ListAnnouncements(c *gin.Context) {
	announcements, err := h.store.ListAnnouncements(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list announcements", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve announcements")
		return
	}
	respondData(c, http.StatusOK, announcements)
}

// ListActiveAnnouncements handles GET /announcements
func (h *Handler) ListActiveAnnouncements(c *gin.Context) {
	announcements, err := h.store.ListActiveAnnouncements(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list active announcements", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve announcements")
		return
	}
	respondData(c, http.StatusOK, announcements)
}

// GetAnnouncement handles GET /announcements/:id
func (h *Handler) GetAnnouncement(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid announcement ID")
		return
	}

	announcement, err := h.store.GetAnnouncement(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrAnnouncementNotFound) {
			abortWithError(c, http.StatusNotFound, "Announcement not found")
			return
		}
		h.logger.Error("Failed to get announcement", zap.Int64("announcement_id", id), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve announcement")
		return
	}
	respondData(c, http.StatusOK, announcement)
}

// CreateAnnouncement handles POST /admin/announcements
// Every other user receives a notification, which is then pushed asynchronously
func (h *Handler) CreateAnnouncement(c *gin.Context) {
	var req models.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Titles are plain text; content stays sanitized HTML for the client to render
	title := strings.TrimSpace(html.UnescapeString(h.titlePolicy.Sanitize(req.Title)))
	content := strings.TrimSpace(h.contentPolicy.Sanitize(req.Content))
	if title == "" || content == "" {
		abortWithError(c, http.StatusBadRequest, "Title and content are required")
		return
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		abortWithError(c, http.StatusBadRequest, "Title must be 255 characters or less")
		return
	}

	expiresAt, err := parseExpiry(req.ExpiresAt)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	author, ok := CurrentUser(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}

	announcement, notifications, err := h.store.CreateAnnouncement(c.Request.Context(), models.AnnouncementInput{
		Title:     title,
		Content:   content,
		CreatedBy: author.ID,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		h.logger.Error("Failed to create announcement", zap.Int64("user_id", author.ID), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to create announcement")
		return
	}

	metrics.AddNotificationsCreated(string(models.NotificationAnnouncement), len(notifications))
	queued := h.notifier.Enqueue(notifications...)

	h.logger.Info("Announcement created",
		zap.Int64("announcement_id", announcement.ID),
		zap.Int64("user_id", author.ID),
		zap.Int("notified", len(notifications)),
		zap.Int("queued", queued),
	)
	respondData(c, http.StatusCreated, announcement)
}

// DeleteAnnouncement handles DELETE /admin/announcements/:id
func (h *Handler) DeleteAnnouncement(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid announcement ID")
		return
	}

	if err := h.store.DeleteAnnouncement(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrAnnouncementNotFound) {
			abortWithError(c, http.StatusNotFound, "Announcement not found")
			return
		}
		h.logger.Error("Failed to delete announcement", zap.Int64("announcement_id", id), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to delete announcement")
		return
	}
	c.Status(http.StatusNoContent)
}

// DeactivateAnnouncement handles PATCH /admin/announcements/:id/deactivate
func (h *Handler) DeactivateAnnouncement(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid announcement ID")
		return
	}

	if err := h.store.DeactivateAnnouncement(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrAnnouncementNotFound) {
			abortWithError(c, http.StatusNotFound, "Announcement not found")
			return
		}
		h.logger.Error("Failed to deactivate announcement", zap.Int64("announcement_id", id), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to deactivate announcement")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Announcement deactivated"})
}
