package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type jwtSecret string

func (s jwtSecret) GetJWTAccessSecret() string { return string(s) }

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newAuthRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthRequired(jwtSecret(secret)), func(c *gin.Context) {
		userID, ok := RequireUserID(c)
		if !ok {
			return
		}
		c.String(http.StatusOK, userID)
	})
	return r
}

func TestAuthRequiredAcceptsSubjectClaim(t *testing.T) {
	r := newAuthRouter("secret")
	token := signToken(t, "secret", jwt.MapClaims{
		"sub":  "user-42",
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "user-42" {
		t.Fatalf("expected user-42, got %q", rec.Body.String())
	}
}

func TestAuthRequiredRejectsBadTokens(t *testing.T) {
	r := newAuthRouter("secret")

	cases := map[string]string{
		"missing":      "",
		"wrong secret": "Bearer " + signToken(t, "other", jwt.MapClaims{"sub": "u"}),
		"refresh type": "Bearer " + signToken(t, "secret", jwt.MapClaims{"sub": "u", "type": "refresh"}),
		"no subject":   "Bearer " + signToken(t, "secret", jwt.MapClaims{"type": "access"}),
	}

	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestRateLimitRejectsAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(0, 2, nil)
	r := gin.New()
	r.GET("/x", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent {
		t.Fatalf("expected first two requests to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on third request, got %d", codes[2])
	}
}

func TestRateLimiterDropsIdleClients(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1, nil)
	clock := time.Unix(1_700_000_000, 0)
	limiter.now = func() time.Time { return clock }

	limiter.getLimiter("10.0.0.1")
	limiter.getLimiter("10.0.0.2")

	clock = clock.Add(limiterIdleTTL / 2)
	limiter.getLimiter("10.0.0.2")
	if n := countLimiters(limiter); n != 2 {
		t.Fatalf("expected both clients kept within the idle period, got %d", n)
	}

	clock = clock.Add(limiterIdleTTL/2 + time.Second)
	limiter.getLimiter("10.0.0.2")
	if _, ok := limiter.limiters.Load("10.0.0.1"); ok {
		t.Fatal("expected idle client limiter to be dropped")
	}
	if _, ok := limiter.limiters.Load("10.0.0.2"); !ok {
		t.Fatal("expected active client limiter to be kept")
	}
}

func countLimiters(l *IPRateLimiter) int {
	n := 0
	l.limiters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func TestRequestIDIsEchoed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderRequestID); got != "abc" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}
