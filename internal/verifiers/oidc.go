package verifiers

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mitchellh/mapstructure"

	"github.com/darmiel/gatekey/internal/config"
	"github.com/darmiel/gatekey/internal/core"
)

// OIDCVerifier validates bearer tokens against an OIDC provider's published
// signing keys. Key rotation is handled by the provider's remote key set.
type OIDCVerifier struct {
	name      string
	issuerURL string
	provider  *oidc.Provider
	verifier  *oidc.IDTokenVerifier
}

type oidcVerifierConfig struct {
	IssuerURL string `mapstructure:"issuer_url"`
	ClientID  string `mapstructure:"client_id"`
}

func NewOIDCVerifier(ctx context.Context, cfg config.VerifierConfig) (*OIDCVerifier, error) {
	var conf oidcVerifierConfig
	if err := mapstructure.Decode(cfg.Config, &conf); err != nil {
		return nil, fmt.Errorf("decoding config for oidc verifier %q: %w", cfg.Name, err)
	}
	if conf.IssuerURL == "" {
		return nil, fmt.Errorf("oidc verifier %q missing 'issuer_url'", cfg.Name)
	}
	if conf.ClientID == "" {
		return nil, fmt.Errorf("oidc verifier %q missing 'client_id'", cfg.Name)
	}

	provider, err := oidc.NewProvider(ctx, conf.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("creating oidc provider for verifier %q: %w", cfg.Name, err)
	}

	return &OIDCVerifier{
		name:      cfg.Name,
		issuerURL: conf.IssuerURL,
		provider:  provider,
		verifier:  provider.Verifier(&oidc.Config{ClientID: conf.ClientID}),
	}, nil
}

func (o *OIDCVerifier) Name() string {
	return o.name
}

// IssuerURL returns the issuer this verifier trusts, for auto-discovery.
func (o *OIDCVerifier) IssuerURL() string {
	return o.issuerURL
}

func (o *OIDCVerifier) Verify(ctx context.Context, token string) (*core.AuthUser, error) {
	idToken, err := o.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("oidc verification failed: %w", err)
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("extracting oidc claims: %w", err)
	}

	return userFromClaims(o.name, claims)
}

// ExtractIssuerURL extracts the 'iss' claim from a JWT token string without
// verifying it. Used only to pick a verifier; the chosen verifier still
// validates the signature.
func ExtractIssuerURL(tokenString string) (string, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	issRaw, ok := claims["iss"]
	if !ok {
		return "", fmt.Errorf("token missing 'iss' claim")
	}

	iss, ok := issRaw.(string)
	if !ok {
		return "", fmt.Errorf("invalid 'iss' claim type")
	}

	return iss, nil
}
