package config

import (
	"testing"
	"time"
)

func TestRateLimitNormalize(t *testing.T) {
	c := RateLimitConfig{Capacity: 0, RefillTokens: -3, RefillInterval: 0, TTL: time.Second}.normalize()
	if c.Capacity != 1 || c.RefillTokens != 1 {
		t.Fatalf("capacity/refill not clamped: %+v", c)
	}
	if c.RefillInterval != time.Second {
		t.Fatalf("refill interval = %s, want 1s", c.RefillInterval)
	}
	if c.TTL != 5*time.Second {
		t.Fatalf("ttl = %s, want 5s", c.TTL)
	}
}

func TestLoadCacheConfigFromEnv(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("CACHE_ENABLED", "off")
	c := LoadCacheConfig()
	if !c.Methods["GET"] || !c.Methods["HEAD"] || len(c.Methods) != 2 {
		t.Fatalf("methods = %v", c.Methods)
	}
	if c.TTL != 2*time.Minute {
		t.Fatalf("ttl = %s", c.TTL)
	}
	if c.Enabled {
		t.Fatal("cache should be disabled")
	}
}

func TestDefaultDSN(t *testing.T) {
	c := Config{DBDriver: "mysql", DBUser: "app", DBPass: "pw", DBHost: "db", DBPort: "3306", DBName: "selva"}
	want := "app:pw@tcp(db:3306)/selva?charset=utf8mb4&parseTime=true&loc=UTC"
	if got := c.defaultDSN(); got != want {
		t.Fatalf("dsn = %q, want %q", got, want)
	}
	if got := (Config{DBDriver: "sqlite"}).defaultDSN(); got != "selvawasi.db" {
		t.Fatalf("sqlite dsn = %q", got)
	}
}
