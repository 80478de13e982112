package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

var errNotInteger = errors.New("must be an integer")

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

// paramID parses a positive integer path parameter
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def when absent
// and clamping the result to [lo, hi]
func queryInt(c *gin.Context, name string, def, lo, hi int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errNotInteger
	}
	return min(max(n, lo), hi), nil
}

// mustUser returns the authenticated user; routes using it sit behind RequireAuth
func mustUser(c *gin.Context) (int64, bool) {
	user, ok := CurrentUser(c)
	if !ok {
		abortWithError(c, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return 0, false
	}
	return user.ID, true
}
