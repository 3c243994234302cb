package utils

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 42, "ADMIN", 5)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := ParseAccessToken("s3cret", tok.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "ADMIN" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, err := ParseAccessToken("other", tok.Token); err == nil {
		t.Fatal("token signed with another secret must be rejected")
	}
}

func TestExpiredAccessToken(t *testing.T) {
	tok, err := NewAccessToken("s3cret", 1, "TOURIST", -1)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken("s3cret", tok.Token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestRefreshTokenHash(t *testing.T) {
	rt, err := NewRefreshToken(1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Fatalf("raw length %d", len(rt.Raw))
	}
	if HashRefreshRaw(rt.Raw) != HashRefreshRaw(rt.Raw) || HashRefreshRaw(rt.Raw) == rt.Raw {
		t.Fatal("hash must be deterministic and differ from raw")
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("amazonas", MinPasswordCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !VerifyPassword(h, "amazonas") || VerifyPassword(h, "nauta") {
		t.Fatal("verify mismatch")
	}
}

func TestPathRoundTrip(t *testing.T) {
	in := json.RawMessage(`{"type":"LineString","coordinates":[[-73.25,-3.74],[-73.58,-4.5]]}`)
	b, err := PathToWKB(in)
	if err != nil {
		t.Fatalf("to wkb: %v", err)
	}
	out, err := WKBToPath(b)
	if err != nil {
		t.Fatalf("to geojson: %v", err)
	}
	if !strings.Contains(string(out), `"LineString"`) || !strings.Contains(string(out), "-73.58") {
		t.Fatalf("unexpected geojson %s", out)
	}
}

func TestPathRejectsPoint(t *testing.T) {
	if _, err := PathToWKB(json.RawMessage(`{"type":"Point","coordinates":[-73.25,-3.74]}`)); err != ErrNotLineString {
		t.Fatalf("got %v, want ErrNotLineString", err)
	}
	if b, err := PathToWKB(nil); b != nil || err != nil {
		t.Fatal("empty path should be nil, nil")
	}
}
