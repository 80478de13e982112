package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/42-Course/matcha/internal/cache"
	"github.com/42-Course/matcha/internal/models"
)

const (
	statsCachePrefix  = "stats:"
	recentLoginsShown = 5
	defaultSeriesDays = 30
	maxSeriesDays     = 365
)

// cached serves key from the cache or stores the result of load under it
func cached[T any](ctx context.Context, c cache.Cache, key string, load func(context.Context) (T, error)) (T, error) {
	var v T
	if c.GetJSON(ctx, key, &v) {
		return v, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	c.SetJSON(ctx, key, v)
	return v, nil
}

// GetStats handles GET /admin/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := cached(c.Request.Context(), h.cache, cache.Key("stats", "summary"),
		func(ctx context.Context) (*models.SiteStats, error) {
			return h.store.GetSiteStats(ctx, recentLoginsShown)
		})
	if err != nil {
		h.logger.Error("Failed to get site stats", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve statistics")
		return
	}
	respondData(c, http.StatusOK, stats)
}

// seriesHandler serves GET /admin/stats/<series>-over-time?days=N
func (h *Handler) seriesHandler(series models.Series) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, err := queryInt(c, "days", defaultSeriesDays, 1, maxSeriesDays)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "days must be an integer")
			return
		}

		key := cache.Key("stats", "series", series.String(), strconv.Itoa(days))
		points, err := cached(c.Request.Context(), h.cache, key,
			func(ctx context.Context) ([]models.DailyCount, error) {
				return h.store.TimeSeries(ctx, series, days)
			})
		if err != nil {
			h.logger.Error("Failed to get time series",
				zap.String("series", series.String()),
				zap.Int("days", days),
				zap.Error(err),
			)
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve statistics")
			return
		}
		respondData(c, http.StatusOK, points)
	}
}

// UserLocations handles GET /admin/stats/user-locations
func (h *Handler) UserLocations(c *gin.Context) {
	locations, err := cached(c.Request.Context(), h.cache, cache.Key("stats", "locations"), h.store.UserLocations)
	if err != nil {
		h.logger.Error("Failed to get user locations", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve user locations")
		return
	}
	respondData(c, http.StatusOK, locations)
}
