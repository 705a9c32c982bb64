package mw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"boothnow-backend/internal/identity"
	"boothnow-backend/internal/model"
	"boothnow-backend/internal/notification"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct{}

func (stubVerifier) Verify(raw string) (identity.Identity, error) {
	if raw != "good" {
		return identity.Identity{}, identity.ErrInvalidToken
	}
	return identity.Identity{Subject: "user_ext", Email: "a@example.com"}, nil
}

type stubResolver struct{ err error }

func (r stubResolver) ResolveUser(ctx context.Context, externalID, email string) (*model.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &model.User{ID: "internal-" + externalID, ExternalID: externalID, Email: email}, nil
}

func TestAuth(t *testing.T) {
	testCases := []struct {
		name       string
		header     string
		resolver   stubResolver
		wantStatus int
		wantUser   string
	}{
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK, wantUser: "internal-user_ext"},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic good", wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", wantStatus: http.StatusUnauthorized},
		{name: "resolver down", header: "Bearer good", resolver: stubResolver{err: errors.New("db down")}, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			var seen string
			router.GET("/me", Auth(stubVerifier{}, tc.resolver), func(c *gin.Context) {
				seen = UserID(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantUser, seen)
		})
	}
}

func TestCache(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	calls := 0
	router := gin.New()
	router.GET("/booths", Cache(store, time.Minute), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	get := func(auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/booths", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	first := get("")
	second := get("")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls)

	get("Bearer token")
	assert.Equal(t, 2, calls)

	events := make(chan notification.Event, 1)
	events <- notification.Event{Kind: notification.EventSessionStarted, BoothID: "b1"}
	close(events)
	FlushOnEvents(context.Background(), store, events)
	assert.Zero(t, store.ItemCount())

	get("")
	assert.Equal(t, 3, calls)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 2)
	router := gin.New()
	router.GET("/", RateLimiter(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	assert.Zero(t, limiter.Prune(time.Hour))
	assert.Equal(t, 1, limiter.Prune(-time.Second))
}

func TestTimeout(t *testing.T) {
	router := gin.New()
	var deadline time.Time
	var ok bool
	router.GET("/", Timeout(50*time.Millisecond), func(c *gin.Context) {
		deadline, ok = c.Request.Context().Deadline()
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
}
