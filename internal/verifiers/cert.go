package verifiers

import (
	"context"
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"

	"github.com/darmiel/gatekey/internal/config"
	"github.com/darmiel/gatekey/internal/core"
)

// CertVerifier validates RS256 tokens against a static PEM certificate or
// public key. It is the fallback when no key-set endpoint is reachable:
// no rotation, but no runtime dependency on the identity provider either.
type CertVerifier struct {
	name      string
	issuerURL string
	audience  string
	publicKey *rsa.PublicKey
}

type certVerifierConfig struct {
	CertPath string `mapstructure:"cert_path"`
	Cert     string `mapstructure:"cert"` // inline PEM, alternative to cert_path
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

func NewCertVerifier(cfg config.VerifierConfig) (*CertVerifier, error) {
	var conf certVerifierConfig
	if err := mapstructure.Decode(cfg.Config, &conf); err != nil {
		return nil, fmt.Errorf("decoding config for cert verifier %q: %w", cfg.Name, err)
	}

	pemData := []byte(conf.Cert)
	if conf.CertPath != "" {
		data, err := os.ReadFile(conf.CertPath)
		if err != nil {
			return nil, fmt.Errorf("reading certificate for verifier %q: %w", cfg.Name, err)
		}
		pemData = data
	}
	if len(pemData) == 0 {
		return nil, fmt.Errorf("cert verifier %q needs 'cert' or 'cert_path'", cfg.Name)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(pemData)
	if err != nil {
		return nil, fmt.Errorf("parsing certificate for verifier %q: %w", cfg.Name, err)
	}

	return &CertVerifier{
		name:      cfg.Name,
		issuerURL: conf.Issuer,
		audience:  conf.Audience,
		publicKey: publicKey,
	}, nil
}

func (c *CertVerifier) Name() string {
	return c.name
}

// IssuerURL returns the issuer this verifier trusts, for auto-discovery.
// May be empty when the config pins no issuer.
func (c *CertVerifier) IssuerURL() string {
	return c.issuerURL
}

func (c *CertVerifier) Verify(_ context.Context, token string) (*core.AuthUser, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.issuerURL != "" {
		opts = append(opts, jwt.WithIssuer(c.issuerURL))
	}
	if c.audience != "" {
		opts = append(opts, jwt.WithAudience(c.audience))
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return c.publicKey, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("certificate verification failed: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return userFromClaims(c.name, claims)
}
