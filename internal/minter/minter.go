// Package minter builds and signs tokens from issued credentials.
package minter

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darmiel/gatekey/internal/core"
)

const (
	// DefaultKeyClaim is the claim the gateway matches against a
	// credential's name. Kept configurable because the upstream verifier
	// policy has switched claims before.
	DefaultKeyClaim = "kid"

	// DefaultMaxTTL matches the registry-side maximum-expiration ceiling.
	DefaultMaxTTL = 365 * 24 * time.Hour
)

type Minter struct {
	keyClaim string
	maxTTL   time.Duration
}

func New(keyClaim string, maxTTL time.Duration) *Minter {
	if keyClaim == "" {
		keyClaim = DefaultKeyClaim
	}
	if maxTTL <= 0 {
		maxTTL = DefaultMaxTTL
	}
	return &Minter{
		keyClaim: keyClaim,
		maxTTL:   maxTTL,
	}
}

// SignedToken is the minted artifact. Nothing about it is retained after
// signing; expiry is its only invalidation path.
type SignedToken struct {
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// tokenClaims is the complete claim set of a minted token. The payload is
// exactly these four fields, never an open bag, so the claims the gateway
// verifies cannot drift from the claims issued here.
type tokenClaims struct {
	issuer    string
	keyID     string
	issuedAt  time.Time
	expiresAt time.Time
}

func (c tokenClaims) toMap(keyClaim string) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":    c.issuer,
		keyClaim: c.keyID,
		"iat":    c.issuedAt.Unix(),
		"exp":    c.expiresAt.Unix(),
	}
}

// Mint signs a token for the principal using the credential's final name and
// signing secret. The key-identifier claim is taken from credential.Name —
// the post-conflict-resolution value — so it always matches a record the
// gateway can look up. TTLs above the ceiling are clamped, not rejected.
func (m *Minter) Mint(principal string, credential *core.Credential, signingSecret string, ttl time.Duration) (*SignedToken, error) {
	if ttl <= 0 || ttl > m.maxTTL {
		ttl = m.maxTTL
	}

	now := time.Now().UTC().Truncate(time.Second)
	claims := tokenClaims{
		issuer:    principal,
		keyID:     credential.Name,
		issuedAt:  now,
		expiresAt: now.Add(ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims.toMap(m.keyClaim))
	signed, err := token.SignedString([]byte(signingSecret))
	if err != nil {
		return nil, fmt.Errorf("signing token for %q: %w", principal, err)
	}

	return &SignedToken{
		Token:     signed,
		IssuedAt:  claims.issuedAt,
		ExpiresAt: claims.expiresAt,
	}, nil
}

// Preview mints a short-lived token and truncates it for display. Token
// listings show the hint without ever exposing usable material.
func (m *Minter) Preview(principal string, credential *core.Credential, signingSecret string) (string, error) {
	signed, err := m.Mint(principal, credential, signingSecret, time.Minute)
	if err != nil {
		return "", err
	}
	return Truncate(signed.Token), nil
}

// Truncate shortens a token to "<first 10>...<last 10>".
func Truncate(token string) string {
	if len(token) <= 20 {
		return token
	}
	return token[:10] + "..." + token[len(token)-10:]
}
