package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/selvawasi/selvawasi-api/internal/config"
	"github.com/selvawasi/selvawasi-api/internal/utils"
)

const secret = "test-secret"

func protectedServer() *echo.Echo {
	e := echo.New()
	g := e.Group("", JWTAuth(secret), RequireRole("ADMIN"))
	g.GET("/admin", func(c echo.Context) error {
		id, _ := UserID(c)
		return c.JSON(http.StatusOK, echo.Map{"id": id, "role": Role(c)})
	})
	return e
}

func call(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthAndRole(t *testing.T) {
	e := protectedServer()
	if rec := call(e, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: got %d", rec.Code)
	}
	if rec := call(e, "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: got %d", rec.Code)
	}
	tourist, _ := utils.NewAccessToken(secret, 7, "TOURIST", 5)
	if rec := call(e, tourist.Token); rec.Code != http.StatusForbidden {
		t.Fatalf("tourist: got %d", rec.Code)
	}
	admin, _ := utils.NewAccessToken(secret, 1, "ADMIN", 5)
	rec := call(e, admin.Token)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"id":1`) {
		t.Fatalf("admin: got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatal("missing generated request id")
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get(echo.HeaderXRequestID); got != "abc-123" {
		t.Fatalf("request id not propagated: %q", got)
	}
}

func TestRedisMiddlewaresPassThroughWithoutClient(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, secret))
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true}, nil))
	e.GET("/boats", func(c echo.Context) error { return c.JSON(http.StatusOK, []int{}) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boats", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "" {
		t.Fatalf("got %d cache=%q", rec.Code, rec.Header().Get("X-Cache"))
	}
}

func TestKeys(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/boats/1?x=1", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/boats/:id")
	c.Set(CtxUserID, uint64(9))

	rk := rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}, c, secret)
	if rk != "rl:user:9:route:GET /boats/:id" {
		t.Fatalf("rate key %q", rk)
	}
	cfg := config.CacheConfig{Prefix: "cache"}
	k1 := cacheKey(cfg, c)
	c2 := e.NewContext(httptest.NewRequest(http.MethodGet, "/boats/2?x=1", nil), httptest.NewRecorder())
	c2.SetPath("/boats/:id")
	if k1 == cacheKey(cfg, c2) || !strings.HasPrefix(k1, "cache:") {
		t.Fatalf("cache keys must differ per resource: %s", k1)
	}
}

// The limiter is global and runs before JWTAuth, so it has to tell callers
// apart from the bearer token on its own.
func TestRateKeySeparatesCallersBeforeAuth(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}
	keys := map[uint64]string{}
	e := echo.New()
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, _ := strconv.ParseUint(c.Request().Header.Get("X-Test-User"), 10, 64)
			keys[id] = rateKey(cfg, c, secret)
			return next(c)
		}
	})
	e.GET("/me", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, JWTAuth(secret))

	for _, id := range []uint64{7, 8} {
		tok, err := utils.NewAccessToken(secret, id, "TOURIST", 5)
		if err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
		req.Header.Set("X-Test-User", strconv.FormatUint(id, 10))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("user %d: got %d", id, rec.Code)
		}
	}
	if keys[7] != "rl:user:7" || keys[8] != "rl:user:8" {
		t.Fatalf("keys = %v", keys)
	}

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/me", nil), httptest.NewRecorder())
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer forged")
	if k := rateKey(cfg, c, secret); k != "rl:user:anon" {
		t.Fatalf("forged token key %q", k)
	}
}
