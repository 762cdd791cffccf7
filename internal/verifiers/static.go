package verifiers

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/darmiel/gatekey/internal/config"
	"github.com/darmiel/gatekey/internal/core"
)

// StaticVerifier maps fixed token strings to claim sets. Development and
// test use only.
type StaticVerifier struct {
	name     string
	tokenMap map[string]map[string]any
}

type staticVerifierConfig struct {
	TokenMap map[string]map[string]any `mapstructure:"token_map"`
}

func NewStaticVerifier(cfg config.VerifierConfig) (*StaticVerifier, error) {
	var conf staticVerifierConfig
	if err := mapstructure.Decode(cfg.Config, &conf); err != nil {
		return nil, fmt.Errorf("decoding config for static verifier %q: %w", cfg.Name, err)
	}

	// no map means every verification fails, which is a valid (if useless) setup
	if conf.TokenMap == nil {
		conf.TokenMap = make(map[string]map[string]any)
	}

	return &StaticVerifier{
		name:     cfg.Name,
		tokenMap: conf.TokenMap,
	}, nil
}

func (s *StaticVerifier) Name() string {
	return s.name
}

func (s *StaticVerifier) Verify(_ context.Context, token string) (*core.AuthUser, error) {
	claims, ok := s.tokenMap[token]
	if !ok {
		return nil, fmt.Errorf("unknown static token")
	}
	return userFromClaims(s.name, claims)
}
