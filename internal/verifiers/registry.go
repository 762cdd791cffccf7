package verifiers

import (
	"context"
	"fmt"

	"github.com/darmiel/gatekey/internal/config"
	"github.com/darmiel/gatekey/internal/core"
)

// issuerAware verifiers advertise the token issuer they trust, enabling
// auto-discovery from a token's unverified 'iss' claim.
type issuerAware interface {
	IssuerURL() string
}

// Registry holds the configured verifiers.
type Registry struct {
	byName   map[string]core.Verifier
	byIssuer map[string]core.Verifier
}

// BuildRegistry constructs all verifiers from config.
func BuildRegistry(ctx context.Context, cfgs []config.VerifierConfig) (*Registry, error) {
	reg := &Registry{
		byName:   make(map[string]core.Verifier),
		byIssuer: make(map[string]core.Verifier),
	}

	for _, cfg := range cfgs {
		var (
			verifier core.Verifier
			err      error
		)
		switch cfg.Type {
		case "oidc":
			verifier, err = NewOIDCVerifier(ctx, cfg)
		case "cert":
			verifier, err = NewCertVerifier(cfg)
		case "static":
			verifier, err = NewStaticVerifier(cfg)
		default:
			return nil, fmt.Errorf("unknown verifier type %q for verifier %q", cfg.Type, cfg.Name)
		}
		if err != nil {
			return nil, fmt.Errorf("building %s verifier %q: %w", cfg.Type, cfg.Name, err)
		}

		reg.byName[cfg.Name] = verifier
		if aware, ok := verifier.(issuerAware); ok && aware.IssuerURL() != "" {
			reg.byIssuer[aware.IssuerURL()] = verifier
		}
	}

	return reg, nil
}

// Get returns the verifier with the given name.
func (r *Registry) Get(name string) (core.Verifier, bool) {
	v, ok := r.byName[name]
	return v, ok
}

// Names returns the configured verifier names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

// Identify picks a verifier for the token by its unverified 'iss' claim.
// Falls back to the sole configured verifier if there is exactly one.
func (r *Registry) Identify(token string) (core.Verifier, error) {
	if iss, err := ExtractIssuerURL(token); err == nil {
		if v, ok := r.byIssuer[iss]; ok {
			return v, nil
		}
	}

	if len(r.byName) == 1 {
		for _, v := range r.byName {
			return v, nil
		}
	}

	return nil, fmt.Errorf("no verifier matches the token's issuer")
}
