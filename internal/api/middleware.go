package api

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/42-Course/matcha/internal/auth"
	"github.com/42-Course/matcha/internal/metrics"
	"github.com/42-Course/matcha/internal/models"
	"github.com/42-Course/matcha/internal/storage"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	currentUserKey  = "current_user"
)

// RequestID assigns every request an id, reusing the caller's X-Request-ID when present
func (h *Handler) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request
func (h *Handler) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if user, ok := CurrentUser(c); ok {
			fields = append(fields, zap.Int64("user_id", user.ID))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			h.logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			h.logger.Warn("request", fields...)
		default:
			h.logger.Info("request", fields...)
		}
	}
}

// Metrics records request latency labelled by route template
func (h *Handler) Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// RequireAuth resolves the bearer token to an active user and records a site visit
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Preflight requests carry no credentials
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token := auth.ExtractBearer(c.GetHeader("Authorization"))
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "Missing or invalid Authorization header")
			return
		}

		claims, err := h.tokens.Decode(token)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid or expired session token")
			return
		}

		ctx := c.Request.Context()
		user, err := h.store.GetUserByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				abortWithError(c, http.StatusUnauthorized, "Invalid user")
				return
			}
			h.logger.Error("Failed to load user for session", zap.Int64("user_id", claims.UserID), zap.Error(err))
			abortWithError(c, http.StatusInternalServerError, "Failed to authenticate")
			return
		}
		if !user.IsEmailVerified {
			abortWithError(c, http.StatusForbidden, "Email not verified")
			return
		}
		if user.IsBanned {
			abortWithError(c, http.StatusForbidden, "Account is banned")
			return
		}

		c.Set(currentUserKey, user)

		if err := h.store.RecordVisit(ctx, user.ID, clientIP(c), c.Request.UserAgent()); err != nil {
			metrics.IncrementSiteVisit(metrics.ResultFailed)
			h.logger.Warn("Failed to record site visit", zap.Int64("user_id", user.ID), zap.Error(err))
		} else {
			metrics.IncrementSiteVisit(metrics.ResultSuccess)
		}

		c.Next()
	}
}

// RequireAdmin rejects users other than the configured admin. It must run after RequireAuth.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		user, ok := CurrentUser(c)
		if !ok || user.Username != h.adminUsername {
			abortWithError(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// clientIP prefers the first X-Forwarded-For hop, then the connection address.
// Anything that is not an IP address yields "" so it never reaches the ip_address columns.
func clientIP(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr))
	if err != nil {
		host = strings.TrimSpace(c.Request.RemoteAddr)
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String()
	}
	return ""
}

type visitorLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

const (
	visitorTTL    = 5 * time.Minute
	sweepInterval = time.Minute
)

// ipRateLimiter keeps one token bucket per client IP; idle buckets expire after visitorTTL
// and are swept at most once per sweepInterval
type ipRateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	visitors  map[string]*visitorLimiter
	lastSweep time.Time
	now       func() time.Time
}

func newIPRateLimiter(perMinute int) *ipRateLimiter {
	return &ipRateLimiter{
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     max(perMinute/2, 1),
		visitors:  map[string]*visitorLimiter{},
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= sweepInterval {
		for key, v := range l.visitors {
			if now.After(v.expires) {
				delete(l.visitors, key)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitorLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.expires = now.Add(visitorTTL)
	return v.limiter.AllowN(now, 1)
}

// RateLimit applies the per-IP token bucket
func (h *Handler) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.limiter.allow(c.ClientIP()) {
			abortWithError(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		c.Next()
	}
}
