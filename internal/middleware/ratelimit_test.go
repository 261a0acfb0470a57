package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"

	"github.com/alicebob/miniredis/v2"
	qt "github.com/frankban/quicktest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newRateLimitedHandler(t *testing.T, requests int) (http.Handler, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	cfg := config.RateLimitConfig{Enabled: true, Requests: requests, Window: time.Minute}
	handler := RateLimitMiddleware(redisClient, cfg, testSecret, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return handler, mr
}

func TestProperty_RateLimitingBlocksExcessiveRequests(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("excessive requests are blocked with 429", prop.ForAll(
		func(requestsPerWindow int, excessRequests int) bool {
			handler, _ := newRateLimitedHandler(t, requestsPerWindow)

			successCount := 0
			blockedCount := 0

			for i := 0; i < requestsPerWindow+excessRequests; i++ {
				req := httptest.NewRequest("GET", "/products/", nil)
				req.RemoteAddr = "192.168.1.100:5555"
				w := httptest.NewRecorder()

				handler.ServeHTTP(w, req)

				switch w.Code {
				case http.StatusOK:
					successCount++
				case http.StatusTooManyRequests:
					blockedCount++
				}
			}

			return successCount == requestsPerWindow && blockedCount == excessRequests
		},
		gen.IntRange(5, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimitHeadersAndWindowReset(t *testing.T) {
	c := qt.New(t)
	handler, mr := newRateLimitedHandler(t, 2)

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("GET", "/reviews/", nil)
		req.RemoteAddr = "10.0.0.7:40000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	w := do()
	c.Assert(w.Code, qt.Equals, http.StatusOK)
	c.Assert(w.Header().Get("X-RateLimit-Limit"), qt.Equals, "2")
	c.Assert(w.Header().Get("X-RateLimit-Remaining"), qt.Equals, "1")

	do()
	w = do()
	c.Assert(w.Code, qt.Equals, http.StatusTooManyRequests)
	c.Assert(w.Header().Get("Retry-After"), qt.Not(qt.Equals), "")

	mr.FastForward(time.Minute + time.Second)
	c.Assert(do().Code, qt.Equals, http.StatusOK)
}

func TestRateLimitKeysAuthenticatedCallersByUser(t *testing.T) {
	c := qt.New(t)
	handler, _ := newRateLimitedHandler(t, 1)

	for _, caller := range []domain.Caller{{UserID: uuid.New()}, {UserID: uuid.New()}} {
		req := httptest.NewRequest("POST", "/reviews/", nil)
		req.RemoteAddr = "10.0.0.8:40000"
		req = req.WithContext(WithCaller(req.Context(), caller))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		c.Assert(w.Code, qt.Equals, http.StatusOK)
	}
}

func TestRateLimitKeysBearerTokensByUser(t *testing.T) {
	c := qt.New(t)
	handler, mr := newRateLimitedHandler(t, 1)

	do := func(authorization string) int {
		req := httptest.NewRequest("GET", "/products/", nil)
		req.RemoteAddr = "10.0.0.9:40000"
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	alice := uuid.New()
	aliceToken := "Bearer " + signClaims(t, testSecret, jwt.MapClaims{
		"user_id": alice.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	bobToken := "Bearer " + signClaims(t, testSecret, jwt.MapClaims{
		"user_id": uuid.NewString(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	forged := "Bearer " + signClaims(t, "other-secret", jwt.MapClaims{
		"user_id": uuid.NewString(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	c.Assert(do(aliceToken), qt.Equals, http.StatusOK)
	c.Assert(do(bobToken), qt.Equals, http.StatusOK)
	c.Assert(do(aliceToken), qt.Equals, http.StatusTooManyRequests)
	c.Assert(mr.Exists(RateLimitKeyPrefix+":user:"+alice.String()), qt.IsTrue)

	// Tokens that fail verification share the address budget
	c.Assert(do(forged), qt.Equals, http.StatusOK)
	c.Assert(do(""), qt.Equals, http.StatusTooManyRequests)
}

func TestRateLimitFailsOpenWithoutRedis(t *testing.T) {
	handler, mr := newRateLimitedHandler(t, 1)
	mr.Close()

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/products/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected request %d to pass, got %d", i, w.Code)
		}
	}
}
