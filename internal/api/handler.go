package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/42-Course/matcha/internal/auth"
	"github.com/42-Course/matcha/internal/cache"
	"github.com/42-Course/matcha/internal/models"
	"github.com/42-Course/matcha/internal/storage"
)

// Notifier receives notifications after they are stored
type Notifier interface {
	Enqueue(notifications ...models.Notification) int
}

// BrokerStatus reports whether the notification broker connection is open
type BrokerStatus interface {
	IsConnected() bool
}

type noopNotifier struct{}

func (noopNotifier) Enqueue(notifications ...models.Notification) int { return 0 }

// Deps holds everything the API handler needs
type Deps struct {
	Store              storage.Store
	Tokens             *auth.TokenManager
	Cache              cache.Cache    // optional, statistics are not cached without it
	Notifier           Notifier       // optional
	Logger             *zap.Logger    // optional
	Broker             BrokerStatus   // optional, checked by /readiness
	AdminUsername      string
	AllowedOrigins     []string
	RateLimitPerMinute int // 0 disables rate limiting
}

// Handler handles HTTP requests for the admin and analytics API
type Handler struct {
	store         storage.Store
	tokens        *auth.TokenManager
	cache         cache.Cache
	notifier      Notifier
	broker        BrokerStatus
	logger        *zap.Logger
	adminUsername string
	origins       []string
	limiter       *ipRateLimiter

	titlePolicy   *bluemonday.Policy
	contentPolicy *bluemonday.Policy
}

// NewHandler creates a new API handler
func NewHandler(deps Deps) *Handler {
	h := &Handler{
		store:         deps.Store,
		tokens:        deps.Tokens,
		cache:         deps.Cache,
		notifier:      deps.Notifier,
		broker:        deps.Broker,
		logger:        deps.Logger,
		adminUsername: deps.AdminUsername,
		origins:       deps.AllowedOrigins,
		titlePolicy:   bluemonday.StrictPolicy(),
		contentPolicy: bluemonday.UGCPolicy(),
	}
	if h.cache == nil {
		h.cache = cache.Noop{}
	}
	if h.notifier == nil {
		h.notifier = noopNotifier{}
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if deps.RateLimitPerMinute > 0 {
		h.limiter = newIPRateLimiter(deps.RateLimitPerMinute)
	}
	return h
}

// Router builds a gin engine with the middleware chain and all routes
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.RequestID(), h.RequestLogger(), h.Metrics())

	if len(h.origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     h.origins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
		}))
	}
	if h.limiter != nil {
		r.Use(h.RateLimit())
	}

	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all API routes on the given router
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/liveness", h.Liveness)
	r.GET("/readiness", h.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := r.Group("/", h.RequireAuth())
	{
		authed.GET("/announcements", h.ListActiveAnnouncements)
		authed.GET("/announcements/:id", h.GetAnnouncement)

		authed.GET("/notifications", h.ListNotifications)
		authed.PATCH("/notifications/:id/read", h.MarkNotificationRead)
		authed.DELETE("/notifications/:id", h.DeleteNotification)

		authed.POST("/sessions", h.StartSession)
		authed.DELETE("/sessions/current", h.EndSession)

		// Statistics are visible to every signed-in user
		stats := authed.Group("/admin/stats")
		stats.GET("", h.GetStats)
		stats.GET("/visits-over-time", h.seriesHandler(models.SeriesVisits))
		stats.GET("/messages-over-time", h.seriesHandler(models.SeriesMessages))
		stats.GET("/profile-views-over-time", h.seriesHandler(models.SeriesProfileViews))
		stats.GET("/dates-over-time", h.seriesHandler(models.SeriesDates))
		stats.GET("/sessions-over-time", h.seriesHandler(models.SeriesSessions))
		stats.GET("/user-locations", h.UserLocations)
	}

	admin := r.Group("/admin", h.RequireAuth(), h.RequireAdmin())
	{
		admin.GET("/users", h.ListUsers)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.GET("/users/:username/details", h.UserDetails)

		admin.GET("/visits", h.RecentVisits)
		admin.GET("/visits/stats", h.VisitStats)

		admin.GET("/announcements", h.ListAnnouncements)
		admin.POST("/announcements", h.CreateAnnouncement)
		admin.DELETE("/announcements/:id", h.DeleteAnnouncement)
		admin.PATCH("/announcements/:id/deactivate", h.DeactivateAnnouncement)

		admin.POST("/notifications", h.CreateNotification)
	}
}

// Health checks if the service is healthy
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Readiness reports whether the database and, when configured, the broker are reachable
func (h *Handler) Readiness(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": "database unavailable"})
		return
	}
	if h.broker != nil && !h.broker.IsConnected() {
		h.logger.Warn("Readiness check failed, broker connection closed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": "broker unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
