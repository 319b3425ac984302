package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// Integration-style test: runs only if REDIS_ADDR env is set. Two routes
// sharing a window must keep independent per-user budgets.
func TestUserRateLimitIsScopedPerRoute(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}

	InitRedisRateLimiter(addr, os.Getenv("REDIS_PASSWORD"), 0)
	if redisClient == nil {
		t.Skip("redis unreachable; skipping")
	}

	userID := time.Now().UnixNano()
	asUser := func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	window := 2 * time.Second
	r.POST("/apply", asUser, UserRateLimit(2, window), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/withdraw", asUser, UserRateLimit(2, window), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	post := func(path string) int {
		t.Helper()
		res, err := http.Post(srv.URL+path, "application/json", nil)
		if err != nil {
			t.Fatalf("POST %s failed: %v", path, err)
		}
		res.Body.Close()
		return res.StatusCode
	}

	// Exhaust the /apply budget.
	for i := 0; i < 2; i++ {
		if code := post("/apply"); code != http.StatusOK {
			t.Fatalf("apply request %d: expected 200 got %d", i, code)
		}
	}
	if code := post("/apply"); code != http.StatusTooManyRequests {
		t.Fatalf("apply over limit: expected 429 got %d", code)
	}

	// The other route still has its full budget for the same user.
	if code := post("/withdraw"); code != http.StatusOK {
		t.Fatalf("withdraw blocked by apply traffic: expected 200 got %d", code)
	}
}
