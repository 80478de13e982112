package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultVisitLimit = 100
	maxVisitLimit     = 1000
)

// RecentVisits handles GET /admin/visits?limit=N
func (h *Handler) RecentVisits(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultVisitLimit, 1, maxVisitLimit)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "limit must be an integer")
		return
	}

	visits, err := h.store.RecentVisits(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list visits", zap.Int("limit", limit), zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve visits")
		return
	}
	respondData(c, http.StatusOK, visits)
}

// VisitStats handles GET /admin/visits/stats
func (h *Handler) VisitStats(c *gin.Context) {
	counts, err := h.store.VisitCountsByUser(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to count visits", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve visit statistics")
		return
	}
	respondData(c, http.StatusOK, counts)
}
