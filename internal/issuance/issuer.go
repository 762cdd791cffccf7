// Package issuance orchestrates idempotent consumer provisioning and
// collision-safe credential creation against the registry.
package issuance

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/gatekey/internal/core"
	"github.com/darmiel/gatekey/internal/identity"
)

const (
	// Algorithm is the fixed signing algorithm registered for every credential.
	Algorithm = "HS256"

	// DefaultMaxAttempts bounds credential creation: one attempt with the
	// requested name, the rest with synthesized candidates.
	DefaultMaxAttempts = 3
)

type Issuer struct {
	registry    core.Registry
	mapper      *identity.Mapper
	maxAttempts int
}

func New(registry core.Registry, mapper *identity.Mapper, maxAttempts int) *Issuer {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Issuer{
		registry:    registry,
		mapper:      mapper,
		maxAttempts: maxAttempts,
	}
}

// Result is the outcome of a successful credential issuance.
// FinalName is authoritative: it is the name the registry actually stored,
// which differs from the requested name after conflict resolution. Token
// minting must use FinalName and SigningSecret, never the request.
type Result struct {
	Credential *core.Credential

	// FinalName always equals Credential.Name; kept explicit so callers
	// cannot accidentally reach for the requested name instead.
	FinalName string

	// Renamed flags that a collision forced a new name.
	Renamed bool

	// SigningSecret is the raw secret the token is signed with. The registry
	// stores it base64-encoded (its verifier decodes before checking
	// signatures), so Credential.Secret is NOT the signing key.
	SigningSecret string
}

// EnsureConsumer provisions the consumer for the principal, or returns the
// existing one. Safe under concurrent calls for the same principal: the
// loser of a creation race lands on ErrConflict and falls back to the fetch.
func (i *Issuer) EnsureConsumer(ctx context.Context, principal string) (*core.Consumer, error) {
	consumer, err := i.registry.CreateConsumer(ctx, principal, i.mapper.ConsumerKey(principal))
	if err == nil {
		log.Ctx(ctx).Debug().Str("consumer_id", consumer.ID).Msg("consumer created")
		return consumer, nil
	}
	if !errors.Is(err, core.ErrConflict) {
		return nil, err
	}

	consumer, err = i.registry.GetConsumer(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("fetching consumer after creation conflict: %w", err)
	}
	log.Ctx(ctx).Debug().Str("consumer_id", consumer.ID).Msg("consumer already existed")
	return consumer, nil
}

// IssueCredential creates a credential named requestedName under the
// consumer. Credential names are unique across the whole registry, so the
// requested name may be taken by any consumer; on conflict a candidate name
// with a timestamp and random suffix is tried with a fresh secret, up to the
// configured bound. After the bound the operation fails with ErrNameExhausted.
func (i *Issuer) IssueCredential(ctx context.Context, consumer *core.Consumer, requestedName string) (*Result, error) {
	logger := log.Ctx(ctx)

	name := requestedName
	for attempt := 1; attempt <= i.maxAttempts; attempt++ {
		secret, encoded, err := newSecret()
		if err != nil {
			return nil, fmt.Errorf("generating secret: %w", err)
		}

		cred, err := i.registry.CreateCredential(ctx, consumer.Username, name, encoded, Algorithm)
		if err == nil {
			renamed := cred.Name != requestedName
			if renamed {
				logger.Warn().
					Str("requested_name", requestedName).
					Str("final_name", cred.Name).
					Msg("credential renamed after conflict")
			}
			return &Result{
				Credential:    cred,
				FinalName:     cred.Name,
				Renamed:       renamed,
				SigningSecret: secret,
			}, nil
		}
		if !errors.Is(err, core.ErrConflict) {
			return nil, err
		}

		logger.Debug().
			Str("name", name).
			Int("attempt", attempt).
			Msg("credential name taken")
		name, err = candidateName(requestedName)
		if err != nil {
			return nil, fmt.Errorf("synthesizing candidate name: %w", err)
		}
	}

	return nil, fmt.Errorf("credential %q after %d attempts: %w", requestedName, i.maxAttempts, core.ErrNameExhausted)
}

// newSecret returns 32 bytes of random material as an URL-safe string, plus
// its base64 encoding for the registry.
func newSecret() (raw, encoded string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	raw = base64.RawURLEncoding.EncodeToString(buf)
	encoded = base64.StdEncoding.EncodeToString([]byte(raw))
	return raw, encoded, nil
}

// candidateName appends a high-resolution timestamp and a short random
// suffix, e.g. "laptop" -> "laptop_143042_9f3a1c2e". The random part makes
// re-collision under concurrent races astronomically unlikely within the
// retry bound.
func candidateName(requested string) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	stamp := time.Now().UTC().Format("150405")
	return fmt.Sprintf("%s_%s_%s", requested, stamp, hex.EncodeToString(suffix)), nil
}
