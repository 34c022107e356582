// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestContextSetsTraceID(t *testing.T) {
	router := gin.New()
	router.Use(RequestContext())
	router.GET("/", func(c *gin.Context) {
		traceID, ok := c.Get("trace_id")
		if !ok || traceID.(string) == "" {
			t.Error("trace_id missing from gin context")
		}
		if c.Request.Context().Value(TraceIDKey) == nil {
			t.Error("trace_id missing from request context")
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeaders())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if csp := w.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "default-src 'none'") {
		t.Errorf("unexpected CSP: %q", csp)
	}
}

func TestRecoveryReturnsJSON500(t *testing.T) {
	router := gin.New()
	router.Use(Recovery())
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "internal error") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestRateLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewInMemoryRateLimiter(3)

	for i := 0; i < 3; i++ {
		if r := limiter.CheckAndRecord("10.0.0.1"); !r.Allowed {
			t.Fatalf("request %d unexpectedly blocked", i+1)
		}
	}

	r := limiter.CheckAndRecord("10.0.0.1")
	if r.Allowed {
		t.Error("fourth request should be blocked")
	}
	if r.WaitSeconds < 1 {
		t.Errorf("wait = %d, want >= 1", r.WaitSeconds)
	}

	// A different client is unaffected.
	if r := limiter.CheckAndRecord("10.0.0.2"); !r.Allowed {
		t.Error("other IP should not share the budget")
	}
}

func TestAnalyzeRateLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(AnalyzeRateLimit(NewInMemoryRateLimiter(1)))
	router.POST("/analyze", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first POST blocked: %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/analyze", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("second POST = %d, want 429", w.Code)
	}

	// GETs bypass the limiter entirely.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("GET = %d, want 200", w.Code)
	}
}
