package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := []int{}
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}

	// A different client has its own budget.
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Real-IP", "10.0.0.2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("second client code = %d", w.Code)
	}
}

func TestNoCacheAndRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), NoCache())
	r.GET("/x", func(c *gin.Context) {
		if _, ok := c.Get("logger"); !ok {
			t.Error("logger not stored on context")
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Cache-Control"); got != "no-store, no-cache, must-revalidate" {
		t.Fatalf("Cache-Control = %q", got)
	}
	if got := w.Header().Get(RequestIDHeader); got != "abc" {
		t.Fatalf("request id = %q", got)
	}
}

func TestGetClientIPFallsBackToRemoteAddr(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "192.0.2.7:5555"
	if got := getClientIP(c); got != "192.0.2.7" {
		t.Fatalf("ip = %q", got)
	}
}
