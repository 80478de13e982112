package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/42-Course/matcha/internal/storage"
)

// StartSession handles POST /sessions
func (h *Handler) StartSession(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	id, err := h.store.StartSession(c.Request.Context(), userID, clientIP(c), c.Request.UserAgent())
	if err != nil {
		h.logger.Error("Failed to start session", zap.Int64("user_id", userID), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to start session")
		return
	}
	respondData(c, http.StatusCreated, gin.H{"id": id})
}

// EndSession handles DELETE /sessions/current
func (h *Handler) EndSession(c *gin.Context) {
	userID, ok := mustUser(c)
	if !ok {
		return
	}

	session, err := h.store.EndActiveSession(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			abortWithError(c, http.StatusNotFound, "No active session")
			return
		}
		h.logger.Error("Failed to end session", zap.Int64("user_id", userID), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to end session")
		return
	}
	respondData(c, http.StatusOK, session)
}
