package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4", 3, time.Minute) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4", 3, time.Minute) {
		t.Error("fourth request should be blocked")
	}
	if !rl.Allow("5.6.7.8", 3, time.Minute) {
		t.Error("different key should be allowed")
	}
}

func TestRateLimiterWindowReset(t *testing.T) {
	rl := NewRateLimiter()

	if !rl.Allow("key", 1, time.Nanosecond) {
		t.Fatal("first request should be allowed")
	}
	time.Sleep(time.Millisecond)
	if !rl.Allow("key", 1, time.Nanosecond) {
		t.Error("request after window expiry should be allowed")
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter()
	rl.Allow("stale", 1, time.Nanosecond)
	rl.Allow("fresh", 1, time.Hour)

	time.Sleep(time.Millisecond)
	rl.Cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.entries["stale"]; ok {
		t.Error("expired entry should be removed")
	}
	if _, ok := rl.entries["fresh"]; !ok {
		t.Error("live entry should remain")
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter()
	handler := RateLimit(rl, RealIP, 2, time.Minute)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i+1, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}

func TestRealIP(t *testing.T) {
	tests := []struct {
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"192.168.1.5:4444", "", "192.168.1.5"},
		{"192.168.1.5:4444", "203.0.113.9", "203.0.113.9"},
		{"192.168.1.5:4444", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
		{"bad-addr", "", "bad-addr"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = tt.remoteAddr
		if tt.forwarded != "" {
			req.Header.Set("X-Forwarded-For", tt.forwarded)
		}
		if got := RealIP(req); got != tt.want {
			t.Errorf("RealIP(%q, xff=%q) = %q, want %q", tt.remoteAddr, tt.forwarded, got, tt.want)
		}
	}
}
