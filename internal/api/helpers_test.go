package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/42-Course/matcha/internal/auth"
	"github.com/42-Course/matcha/internal/models"
)

const (
	testSecret = "test-secret"
	adminName  = "pulgamecanica"

	adminID      int64 = 1
	aliceID      int64 = 2
	bobID        int64 = 3
	unverifiedID int64 = 4
	bannedID     int64 = 5
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) GetJSON(_ context.Context, key string, dest any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(b, dest) == nil
}

func (m *memoryCache) SetJSON(_ context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = b
}

func (m *memoryCache) InvalidatePrefix(_ context.Context, prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (r *recordingNotifier) Enqueue(notifications ...models.Notification) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, notifications...)
	return len(notifications)
}

type testEnv struct {
	t        *testing.T
	store    *fakeStore
	cache    *memoryCache
	notifier *recordingNotifier
	tokens   *auth.TokenManager
	router   *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newFakeStore()
	store.addUser(models.User{ID: adminID, Username: adminName, IsEmailVerified: true})
	store.addUser(models.User{ID: aliceID, Username: "alice", IsEmailVerified: true})
	store.addUser(models.User{ID: bobID, Username: "bob", IsEmailVerified: true})
	store.addUser(models.User{ID: unverifiedID, Username: "carol"})
	store.addUser(models.User{ID: bannedID, Username: "dave", IsEmailVerified: true, IsBanned: true})

	env := &testEnv{
		t:        t,
		store:    store,
		cache:    newMemoryCache(),
		notifier: &recordingNotifier{},
		tokens:   auth.NewTokenManager(testSecret),
	}
	env.router = NewHandler(Deps{
		Store:         store,
		Tokens:        env.tokens,
		Cache:         env.cache,
		Notifier:      env.notifier,
		AdminUsername: adminName,
	}).Router()
	return env
}

func (e *testEnv) token(userID int64) string {
	e.t.Helper()
	token, err := e.tokens.Issue(userID, time.Hour)
	require.NoError(e.t, err)
	return token
}

// do sends a request as userID; userID 0 sends no Authorization header
func (e *testEnv) do(method, path string, userID int64, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+e.token(userID))
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decodeBody(t, w)["error"].(string)
	return msg
}
