package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func authedRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	return req.WithContext(ContextWithUserID(req.Context(), userID))
}

func TestGeneralRateLimit_AllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(100),
		GeneralBurst:    5,
		WriteRate:       rate.Limit(100),
		WriteBurst:      5,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest("identity-1"))
		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Result().StatusCode)
		}
	}
}

func TestGeneralRateLimit_Returns429WhenExceeded(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001), // 実質補充なし
		GeneralBurst:    2,
		WriteRate:       rate.Limit(1),
		WriteBurst:      1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, authedRequest("identity-1"))
		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, w.Result().StatusCode)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("identity-1"))
	resp := w.Result()

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("429 body is not JSON: %v", err)
	}
	if body["code"] != "rate_limit_exceeded" {
		t.Errorf("code = %q, want rate_limit_exceeded", body["code"])
	}
}

func TestWriteRateLimit_IndependentFromGeneral(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(100),
		GeneralBurst:    100,
		WriteRate:       rate.Limit(0.001),
		WriteBurst:      1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	writeHandler := rl.WriteMiddleware()(okHandler())
	generalHandler := rl.GeneralMiddleware()(okHandler())

	// 書き込みのバーストを使い切る
	w := httptest.NewRecorder()
	writeHandler.ServeHTTP(w, authedRequest("identity-1"))
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("first write: status = %d, want 200", w.Result().StatusCode)
	}

	w = httptest.NewRecorder()
	writeHandler.ServeHTTP(w, authedRequest("identity-1"))
	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second write: status = %d, want 429", w.Result().StatusCode)
	}

	// API全般のリミットには影響しない
	w = httptest.NewRecorder()
	generalHandler.ServeHTTP(w, authedRequest("identity-1"))
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("general after write exhaustion: status = %d, want 200", w.Result().StatusCode)
	}
}

func TestRateLimit_IsolatesUsers(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001),
		GeneralBurst:    1,
		WriteRate:       rate.Limit(1),
		WriteBurst:      1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("identity-1"))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("identity-1"))
	if w.Result().StatusCode != http.StatusTooManyRequests {
		t.Fatalf("identity-1 second request: status = %d, want 429", w.Result().StatusCode)
	}

	// 別ユーザーは独立したバケットを持つ
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, authedRequest("identity-2"))
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("identity-2 first request: status = %d, want 200", w.Result().StatusCode)
	}

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount() = %d, want 2", got)
	}
}

func TestRateLimit_NoUserID_Returns401(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Result().StatusCode)
	}
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	config := DefaultRateLimiterConfig()

	if config.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", config.GeneralBurst)
	}
	if config.WriteBurst != 30 {
		t.Errorf("WriteBurst = %d, want 30", config.WriteBurst)
	}
	if config.GeneralRate != rate.Limit(2) {
		t.Errorf("GeneralRate = %v, want 2", config.GeneralRate)
	}
}
