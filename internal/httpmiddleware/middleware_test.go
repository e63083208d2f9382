package httpmiddleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"studentattendance/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func get(r http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		for _, val := range v {
			req.Header.Add(k, val)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTokenBucket_RefillsOverTime(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	l := NewTokenBucket(2, 60)
	l.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "10.0.0.1")
	require.False(t, ok)

	ok, _ = l.Allow(ctx, "10.0.0.2")
	require.True(t, ok, "buckets are per key")

	now = now.Add(2 * time.Second)
	ok, _ = l.Allow(ctx, "10.0.0.1")
	require.True(t, ok)
}

func TestTokenBucket_SweepsIdleBuckets(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	l := NewTokenBucket(2, 60)
	l.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		ok, err := l.Allow(ctx, ip)
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Len(t, l.state, 3)

	now = now.Add(30 * time.Second)
	_, _ = l.Allow(ctx, "10.0.0.1")
	_, _ = l.Allow(ctx, "10.0.0.1")
	ok, _ := l.Allow(ctx, "10.0.0.1")
	require.False(t, ok, "drained bucket survives between sweeps")

	now = now.Add(time.Hour)
	ok, _ = l.Allow(ctx, "10.0.0.9")
	require.True(t, ok)
	require.Len(t, l.state, 1)
	require.Contains(t, l.state, "10.0.0.9")
}

func TestTokenBucket_DefaultCapacity(t *testing.T) {
	l := NewTokenBucket(0, 3)
	require.Equal(t, 3, l.capacity)
}

func TestRateLimit_Rejects(t *testing.T) {
	r := newRouter(RateLimit(NewTokenBucket(1, 1), nil))

	require.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)

	w := get(r, "/ping", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.JSONEq(t, `{"error":"rate limit"}`, w.Body.String())
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := newRouter(RateLimit(brokenLimiter{}, logger))

	require.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	require.Contains(t, buf.String(), "rate limiter unavailable")
}

func TestRedisLimiter_WindowKey(t *testing.T) {
	l := NewRedisLimiter(nil, "ratelimit:report", 10)
	require.Equal(t, "ratelimit:report:10.0.0.1:28401120", l.windowKey("10.0.0.1", 28401120))
}

func TestRedisLimiter_UnreachableReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l := NewRedisLimiter(client, "ratelimit:test", 10)
	ok, err := l.Allow(context.Background(), "10.0.0.1")
	require.Error(t, err)
	require.False(t, ok)
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())

	w := get(r, "/ping", nil)
	generated := w.Header().Get(RequestIDHeader)
	require.Len(t, generated, 36)

	w = get(r, "/ping", http.Header{RequestIDHeader: {"abc-123"}})
	require.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))

	w = get(r, "/ping", http.Header{"x-request-id": {"lower-1"}})
	require.Equal(t, "lower-1", w.Header().Get(RequestIDHeader))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	r := newRouter(RequestID(), RequestLogger(logger, "/healthz"))

	get(r, "/healthz", nil)
	require.Zero(t, buf.Len())

	get(r, "/ping", http.Header{RequestIDHeader: {"req-1"}})
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "http request", line["msg"])
	require.Equal(t, "/ping", line["route"])
	require.Equal(t, float64(http.StatusOK), line["status"])
	require.Equal(t, "req-1", line["request_id"])
}

func TestMetrics(t *testing.T) {
	r := newRouter(Metrics("unit"))
	counter := metrics.HTTPRequests.WithLabelValues("unit", http.MethodGet, "/ping", "200")
	before := testutil.ToFloat64(counter)

	get(r, "/ping", nil)
	get(r, "/ping", nil)
	require.Equal(t, before+2, testutil.ToFloat64(counter))

	unmatched := metrics.HTTPRequests.WithLabelValues("unit", http.MethodGet, "unmatched", "404")
	before = testutil.ToFloat64(unmatched)
	get(r, "/missing/123", nil)
	require.Equal(t, before+1, testutil.ToFloat64(unmatched))
}

func TestSecurityHeaders(t *testing.T) {
	w := get(newRouter(SecurityHeaders()), "/ping", nil)
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	require.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestNewLimiter(t *testing.T) {
	l, err := NewLimiter("memory", 10, nil, "")
	require.NoError(t, err)
	require.IsType(t, &TokenBucket{}, l)

	l, err = NewLimiter("off", 10, nil, "")
	require.NoError(t, err)
	require.Nil(t, l)

	l, err = NewLimiter("memory", 0, nil, "")
	require.NoError(t, err)
	require.Nil(t, l)

	_, err = NewLimiter("redis", 10, nil, "ratelimit")
	require.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()
	l, err = NewLimiter("redis", 10, client, "ratelimit")
	require.NoError(t, err)
	require.IsType(t, &RedisLimiter{}, l)

	_, err = NewLimiter("carrier-pigeon", 10, nil, "")
	require.Error(t, err)
}
