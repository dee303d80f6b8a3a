package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisLimiter(t *testing.T, limit int) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLimiter(client, limit, time.Minute)
	fixed := time.Date(2025, 6, 1, 12, 0, 30, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	return l, mr
}

func TestRedisLimiter_AllowsUpToLimitPerKey(t *testing.T) {
	l, _ := setupRedisLimiter(t, 2)
	ctx := context.Background()

	assert.True(t, l.Allow(ctx, "user:a"))
	assert.True(t, l.Allow(ctx, "user:a"))
	assert.False(t, l.Allow(ctx, "user:a"), "third request in window must be denied")
	assert.True(t, l.Allow(ctx, "user:b"), "other keys have their own counter")
}

func TestRedisLimiter_SetsExpiry(t *testing.T) {
	l, mr := setupRedisLimiter(t, 5)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "ip:1.2.3.4"))
	bk := l.bucketKey("ip:1.2.3.4")
	assert.True(t, mr.Exists(bk))
	assert.Equal(t, time.Minute+time.Second, mr.TTL(bk))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists(bk), "bucket must expire after the window")
}

func TestRedisLimiter_NewWindowResets(t *testing.T) {
	l, _ := setupRedisLimiter(t, 1)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "k"))
	require.False(t, l.Allow(ctx, "k"))

	next := l.now().Add(time.Minute)
	l.now = func() time.Time { return next }
	assert.True(t, l.Allow(ctx, "k"))
}

func TestRedisLimiter_FailOpenWhenRedisDown(t *testing.T) {
	l, mr := setupRedisLimiter(t, 1)
	mr.Close()

	ctx := context.Background()
	assert.True(t, l.Allow(ctx, "k"))
	assert.True(t, l.Allow(ctx, "k"))
}

func TestNewRedisLimiter_Coercion(t *testing.T) {
	l := NewRedisLimiter(nil, 0, time.Millisecond)
	assert.Equal(t, int64(1), l.limit)
	assert.Equal(t, time.Second, l.window)
}

func TestRateLimit_WithRedisBackend(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, _ := setupRedisLimiter(t, 1)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(userIDKey, "rider"); c.Next() })
	r.Use(RateLimit(l, KeyByUserOrIP()))
	r.POST("/messages", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest(http.MethodPost, "/messages", nil))
	assert.Equal(t, http.StatusCreated, w1.Code)

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest(http.MethodPost, "/messages", nil))
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
	assert.Equal(t, "1", w2.Header().Get("Retry-After"))
}
