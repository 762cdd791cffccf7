package verifiers

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darmiel/gatekey/internal/config"
)

func TestStaticVerifier(t *testing.T) {
	verifier, err := NewStaticVerifier(config.VerifierConfig{
		Name: "dev",
		Type: "static",
		Config: map[string]any{
			"token_map": map[string]any{
				"dev-token": map[string]any{
					"preferred_username": "alice",
					"roles":              []any{"admin"},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("NewStaticVerifier() error = %v", err)
	}

	user, err := verifier.Verify(context.Background(), "dev-token")
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if user.Username != "alice" || user.Verifier != "dev" {
		t.Errorf("user = %+v", user)
	}
	if !user.HasRole("admin") {
		t.Error("admin role not extracted")
	}

	if _, err := verifier.Verify(context.Background(), "wrong"); err == nil {
		t.Error("Verify() accepted an unknown token")
	}
}

func signedRS256(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func publicPEM(t *testing.T, key *rsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func TestCertVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	verifier, err := NewCertVerifier(config.VerifierConfig{
		Name: "corp",
		Type: "cert",
		Config: map[string]any{
			"cert":   publicPEM(t, key),
			"issuer": "https://idp.example.com",
		},
	})
	if err != nil {
		t.Fatalf("NewCertVerifier() error = %v", err)
	}

	now := time.Now()
	good := signedRS256(t, key, jwt.MapClaims{
		"iss":                "https://idp.example.com",
		"sub":                "u-123",
		"preferred_username": "alice",
		"permissions":        []any{"manage_all_consumers"},
		"iat":                now.Unix(),
		"exp":                now.Add(time.Hour).Unix(),
	})

	user, err := verifier.Verify(context.Background(), good)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("Username = %q", user.Username)
	}
	if !user.HasPermission("manage_all_consumers") {
		t.Error("permission not extracted")
	}

	t.Run("wrong issuer", func(t *testing.T) {
		bad := signedRS256(t, key, jwt.MapClaims{
			"iss": "https://evil.example.com",
			"sub": "u-123",
			"exp": now.Add(time.Hour).Unix(),
		})
		if _, err := verifier.Verify(context.Background(), bad); err == nil {
			t.Error("Verify() accepted token from wrong issuer")
		}
	})

	t.Run("expired", func(t *testing.T) {
		bad := signedRS256(t, key, jwt.MapClaims{
			"iss": "https://idp.example.com",
			"sub": "u-123",
			"exp": now.Add(-time.Hour).Unix(),
		})
		if _, err := verifier.Verify(context.Background(), bad); err == nil {
			t.Error("Verify() accepted expired token")
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			t.Fatal(err)
		}
		bad := signedRS256(t, otherKey, jwt.MapClaims{
			"iss": "https://idp.example.com",
			"sub": "u-123",
			"exp": now.Add(time.Hour).Unix(),
		})
		if _, err := verifier.Verify(context.Background(), bad); err == nil {
			t.Error("Verify() accepted token signed with foreign key")
		}
	})
}

func TestRegistryIdentify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}

	reg, err := BuildRegistry(context.Background(), []config.VerifierConfig{
		{
			Name: "corp",
			Type: "cert",
			Config: map[string]any{
				"cert":   publicPEM(t, key),
				"issuer": "https://idp.example.com",
			},
		},
		{
			Name:   "dev",
			Type:   "static",
			Config: map[string]any{"token_map": map[string]any{}},
		},
	})
	if err != nil {
		t.Fatalf("BuildRegistry() error = %v", err)
	}

	if _, ok := reg.Get("corp"); !ok {
		t.Error("Get(corp) not found")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("Get(missing) found something")
	}

	token := signedRS256(t, key, jwt.MapClaims{
		"iss": "https://idp.example.com",
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	verifier, err := reg.Identify(token)
	if err != nil {
		t.Fatalf("Identify() error = %v", err)
	}
	if verifier.Name() != "corp" {
		t.Errorf("Identify() = %q, want corp", verifier.Name())
	}

	if _, err := reg.Identify("not-a-jwt"); err == nil {
		t.Error("Identify() matched a non-JWT with two verifiers configured")
	}
}

func TestBuildRegistryUnknownType(t *testing.T) {
	_, err := BuildRegistry(context.Background(), []config.VerifierConfig{
		{Name: "x", Type: "saml"},
	})
	if err == nil {
		t.Fatal("BuildRegistry() accepted unknown verifier type")
	}
}
