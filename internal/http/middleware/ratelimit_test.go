package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_AllowsThenLimits(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(0, 2, KeyByActorOrIP()) // no refill, burst of 2
	r.Use(Actor(), rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func TestRateLimiter_SeparateBucketsPerActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(0, 1, KeyByActorOrIP())
	r.Use(Actor(), rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(actor string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if actor != "" {
			req.Header.Set(actorHeader, actor)
		}
		r.ServeHTTP(w, req)
		return w.Code
	}

	if hit("maria") != http.StatusOK {
		t.Fatalf("first request should pass")
	}
	if hit("maria") != http.StatusTooManyRequests {
		t.Fatalf("second request from same actor should be limited")
	}
	// A different actor owns a fresh bucket.
	if hit("kostas") != http.StatusOK {
		t.Fatalf("other actor should not share the bucket")
	}
}

func TestRateLimiter_ReplayBypass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rl := NewRateLimiter(0, 1, KeyByActorOrIP())
	r.Use(func(c *gin.Context) {
		c.Set(ctxKeyRateBypass, true)
		c.Next()
	})
	r.Use(rl.Handler())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("replay %d was limited", i)
		}
	}
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1, func(*gin.Context) string { return "x" })
	rl.ttl = time.Millisecond

	rl.getVisitor("stale")
	rl.visitors["stale"].lastSeen = time.Now().Add(-time.Minute)
	rl.cleanupN = 4999 // force cleanup on next lookup
	rl.getVisitor("fresh")

	rl.mu.Lock()
	_, ok := rl.visitors["stale"]
	rl.mu.Unlock()
	if ok {
		t.Fatalf("stale visitor should have been evicted")
	}
}
