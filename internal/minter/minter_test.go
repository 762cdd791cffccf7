package minter

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darmiel/gatekey/internal/core"
)

func parse(t *testing.T, token, secret string) jwt.MapClaims {
	t.Helper()

	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			t.Fatalf("unexpected signing method %v", tok.Method)
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parsing minted token: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("minted token does not verify")
	}
	return parsed.Claims.(jwt.MapClaims)
}

func TestMintClaims(t *testing.T) {
	m := New("", 0)
	cred := &core.Credential{ID: "j-1", Name: "laptop_120000_deadbeef"}

	signed, err := m.Mint("alice", cred, "sekrit", time.Hour)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	claims := parse(t, signed.Token, "sekrit")
	if claims["iss"] != "alice" {
		t.Errorf("iss = %v, want alice", claims["iss"])
	}
	// the key claim must carry the credential's FINAL name, never the
	// originally requested one
	if claims["kid"] != "laptop_120000_deadbeef" {
		t.Errorf("kid = %v, want credential name", claims["kid"])
	}
	if len(claims) != 4 {
		t.Errorf("claim count = %d, want exactly 4 (iss, kid, iat, exp)", len(claims))
	}

	iat := int64(claims["iat"].(float64))
	exp := int64(claims["exp"].(float64))
	if exp-iat != int64(time.Hour/time.Second) {
		t.Errorf("exp-iat = %d, want 3600", exp-iat)
	}
	if signed.ExpiresAt.Unix() != exp {
		t.Errorf("ExpiresAt = %v, claim exp = %d", signed.ExpiresAt, exp)
	}
}

func TestMintConfigurableKeyClaim(t *testing.T) {
	m := New("token_key", 0)
	cred := &core.Credential{Name: "laptop"}

	signed, err := m.Mint("alice", cred, "sekrit", time.Hour)
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	claims := parse(t, signed.Token, "sekrit")
	if claims["token_key"] != "laptop" {
		t.Errorf("token_key = %v, want laptop", claims["token_key"])
	}
	if _, exists := claims["kid"]; exists {
		t.Error("default key claim present despite override")
	}
}

func TestMintClampsTTL(t *testing.T) {
	m := New("", time.Hour)
	cred := &core.Credential{Name: "laptop"}

	tests := []struct {
		name string
		ttl  time.Duration
		want time.Duration
	}{
		{"over ceiling is clamped", 24 * time.Hour, time.Hour},
		{"zero falls back to ceiling", 0, time.Hour},
		{"negative falls back to ceiling", -time.Minute, time.Hour},
		{"below ceiling is honored", 10 * time.Minute, 10 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := m.Mint("alice", cred, "sekrit", tt.ttl)
			if err != nil {
				t.Fatalf("Mint() error = %v", err)
			}
			if got := signed.ExpiresAt.Sub(signed.IssuedAt); got != tt.want {
				t.Errorf("lifetime = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPreviewNeverUsable(t *testing.T) {
	m := New("", 0)
	cred := &core.Credential{Name: "laptop"}

	preview, err := m.Preview("alice", cred, "sekrit")
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if !strings.Contains(preview, "...") {
		t.Errorf("preview %q not truncated", preview)
	}
	if len(preview) != 23 {
		t.Errorf("preview length = %d, want 10+3+10", len(preview))
	}
}

func TestTruncateShortInput(t *testing.T) {
	if got := Truncate("short"); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
}
