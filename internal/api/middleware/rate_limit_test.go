package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimiter(t *testing.T) {
	tests := []struct {
		name         string
		expectStatus int
		numRequests  int
		sleep        time.Duration
		burst        int
		limit        rate.Limit
	}{
		{
			name:         "within rate limit",
			expectStatus: http.StatusOK,
			numRequests:  20,
			limit:        rate.Every(time.Millisecond),
			burst:        20,
			sleep:        time.Millisecond,
		},
		{
			name:         "exceed rate limit",
			expectStatus: http.StatusTooManyRequests,
			numRequests:  15,
			limit:        rate.Every(time.Hour),
			burst:        10,
		},
		{
			name:         "limits refresh",
			expectStatus: http.StatusOK,
			numRequests:  10,
			limit:        rate.Every(time.Millisecond),
			burst:        1,
			sleep:        2 * time.Millisecond,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rl := newRateLimiter(IPAddressKeyFunc, tc.limit, tc.burst)
			handler := rl.Handle(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			var lastStatus int
			for i := 0; i < tc.numRequests; i++ {
				req := httptest.NewRequest(http.MethodPost, "/users/", nil)
				req.RemoteAddr = "192.168.1.1:4242"
				rr := httptest.NewRecorder()
				handler.ServeHTTP(rr, req)
				lastStatus = rr.Code
				time.Sleep(tc.sleep)
			}

			assert.Equal(t, tc.expectStatus, lastStatus)
		})
	}
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := newRateLimiter(IPAddressKeyFunc, rate.Every(time.Hour), 1)
	handler := rl.Handle(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/users/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:2000"), "same IP on another port shares the limit")
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000"))

	rl.cleanup()
	assert.Len(t, rl.limiters, 2, "exhausted limiters survive cleanup")
}

func TestNewRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(IPAddressKeyFunc, 0, 0)
	handler := rl.Handle(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/users/", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}
