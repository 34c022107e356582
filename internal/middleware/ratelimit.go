// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const rateLimitWindow = 60 // seconds

type RateLimitResult struct {
	Allowed     bool
	WaitSeconds int
}

type RateLimiter interface {
	CheckAndRecord(ip string) RateLimitResult
}

// InMemoryRateLimiter caps analysis requests per client IP inside a
// sliding one-minute window. State lives in the process; a restart
// resets it, which is acceptable for an abuse brake.
type InMemoryRateLimiter struct {
	mu          sync.Mutex
	maxRequests int
	requests    map[string][]float64
}

func NewInMemoryRateLimiter(maxPerMinute int) *InMemoryRateLimiter {
	if maxPerMinute <= 0 {
		maxPerMinute = 30
	}
	limiter := &InMemoryRateLimiter{
		maxRequests: maxPerMinute,
		requests:    make(map[string][]float64),
	}

	go limiter.cleanupLoop()

	return limiter
}

func (l *InMemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		now := float64(time.Now().Unix())
		for ip, stamps := range l.requests {
			l.requests[ip] = pruneOld(stamps, now)
			if len(l.requests[ip]) == 0 {
				delete(l.requests, ip)
			}
		}
		l.mu.Unlock()
	}
}

func pruneOld(stamps []float64, now float64) []float64 {
	cutoff := now - rateLimitWindow
	result := stamps[:0]
	for _, ts := range stamps {
		if ts >= cutoff {
			result = append(result, ts)
		}
	}
	return result
}

func (l *InMemoryRateLimiter) CheckAndRecord(ip string) RateLimitResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := float64(time.Now().Unix())
	l.requests[ip] = pruneOld(l.requests[ip], now)
	stamps := l.requests[ip]

	if len(stamps) >= l.maxRequests {
		waitSeconds := int(stamps[0]+rateLimitWindow-now) + 1
		if waitSeconds < 1 {
			waitSeconds = 1
		}
		return RateLimitResult{Allowed: false, WaitSeconds: waitSeconds}
	}

	l.requests[ip] = append(stamps, now)
	return RateLimitResult{Allowed: true}
}

// AnalyzeRateLimit guards the POST analysis endpoints.
func AnalyzeRateLimit(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		result := limiter.CheckAndRecord(clientIP)

		if !result.Allowed {
			traceID, _ := c.Get("trace_id")
			slog.Info("Rate limit triggered",
				"trace_id", traceID,
				"ip", clientIP,
				"wait_seconds", result.WaitSeconds,
			)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":        fmt.Sprintf("Rate limit reached. Please wait %d seconds before trying again.", result.WaitSeconds),
				"wait_seconds": result.WaitSeconds,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
