package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/42-Course/matcha/internal/storage"
)

// ListUsers handles GET /admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve users")
		return
	}
	respondData(c, http.StatusOK, users)
}

// DeleteUser handles DELETE /admin/users/:id
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID")
		return
	}

	admin, ok := CurrentUser(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}
	if admin.ID == id {
		abortWithError(c, http.StatusBadRequest, "Cannot delete yourself")
		return
	}

	if err := h.store.DeleteUser(c.Request.Context(), id); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("Failed to delete user", zap.Int64("user_id", id), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	h.logger.Info("User deleted", zap.Int64("user_id", id), zap.String("admin", admin.Username))
	h.cache.InvalidatePrefix(c.Request.Context(), statsCachePrefix)
	c.Status(http.StatusNoContent)
}

// UserDetails handles GET /admin/users/:username/details
func (h *Handler) UserDetails(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	user, err := h.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			abortWithError(c, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("Failed to get user", zap.String("username", username), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}

	details, err := h.store.GetUserDetails(ctx, *user)
	if err != nil {
		h.logger.Error("Failed to get user details", zap.Int64("user_id", user.ID), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve user details")
		return
	}
	respondData(c, http.StatusOK, details)
}
