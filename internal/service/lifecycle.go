// Package service exposes the public credential/token lifecycle operations:
// issue, list, delete by ID, delete by name.
package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/gatekey/internal/core"
	"github.com/darmiel/gatekey/internal/identity"
	"github.com/darmiel/gatekey/internal/issuance"
	"github.com/darmiel/gatekey/internal/minter"
)

// LifecycleService orchestrates the registry, the credential issuer, and the
// minter. It keeps no state of its own: every operation re-derives what it
// needs from the registry, so concurrent instances never disagree.
type LifecycleService struct {
	registry core.Registry
	mapper   *identity.Mapper
	issuer   *issuance.Issuer
	minter   *minter.Minter
	auditor  core.Auditor
}

func NewLifecycleService(
	registry core.Registry,
	mapper *identity.Mapper,
	issuer *issuance.Issuer,
	tokenMinter *minter.Minter,
	auditor core.Auditor,
) *LifecycleService {
	return &LifecycleService{
		registry: registry,
		mapper:   mapper,
		issuer:   issuer,
		minter:   tokenMinter,
		auditor:  auditor,
	}
}

// IssueForPrincipal provisions the principal's consumer if needed, creates a
// fresh credential (resolving name collisions), and mints a token from the
// credential's FINAL name and secret. The response's TokenName is the only
// trustworthy name; the requested one may have been taken.
func (s *LifecycleService) IssueForPrincipal(ctx context.Context, req IssueRequest) (*IssueResponse, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	requestedName := req.RequestedName
	if requestedName == "" {
		// deterministic default (no random part) so operators can read
		// intent from registry listings and logs
		requestedName = defaultTokenName(req.Principal, time.Now().UTC())
	}

	auditEntry := core.AuditEntry{
		ID:            reqID,
		Time:          time.Now(),
		Action:        "token.issue",
		Caller:        callerFromContext(ctx),
		Principal:     req.Principal,
		RequestedName: requestedName,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for token issuance")
		}
	}()

	logger.UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Str("principal", req.Principal)
	})

	consumer, err := s.issuer.EnsureConsumer(ctx, req.Principal)
	if err != nil {
		auditEntry.Error = "consumer provisioning failed"
		return nil, classified("provisioning consumer", err)
	}

	result, err := s.issuer.IssueCredential(ctx, consumer, requestedName)
	if err != nil {
		auditEntry.Error = "credential issuance failed"
		return nil, classified("issuing credential", err)
	}
	auditEntry.FinalName = result.FinalName
	auditEntry.Renamed = result.Renamed
	auditEntry.CredentialID = result.Credential.ID

	// the mint input is the issuance RESULT, never the request
	signed, err := s.minter.Mint(req.Principal, result.Credential, result.SigningSecret, req.TTL)
	if err != nil {
		auditEntry.Error = "minting failed"
		return nil, httpError(http.StatusInternalServerError, fmt.Errorf("minting token: %w", err))
	}

	logger.Info().
		Str("final_name", result.FinalName).
		Bool("renamed", result.Renamed).
		Time("expires_at", signed.ExpiresAt).
		Msg("token issued")

	auditEntry.Success = true
	return &IssueResponse{
		Token:       signed.Token,
		TokenName:   result.FinalName,
		Renamed:     result.Renamed,
		TokenID:     result.Credential.ID,
		ConsumerID:  consumer.ID,
		ConsumerKey: s.mapper.ConsumerKey(req.Principal),
		ExpiresAt:   signed.ExpiresAt,
	}, nil
}

// ListTokens returns the principal's credentials as non-secret summaries.
// A principal without a consumer simply has no tokens.
func (s *LifecycleService) ListTokens(ctx context.Context, principal string) (*TokenList, error) {
	list := &TokenList{
		Principal: principal,
		Tokens:    []TokenSummary{},
	}

	creds, err := s.registry.ListCredentials(ctx, principal)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return list, nil
		}
		return nil, classified("listing credentials", err)
	}

	for _, cred := range creds {
		summary := TokenSummary{
			ID:         cred.ID,
			Name:       cred.Name,
			Algorithm:  cred.Algorithm,
			ConsumerID: cred.ConsumerID,
			CreatedAt:  cred.CreatedAt,
		}
		// the registry stores secrets base64-encoded; the preview needs the
		// raw signing key
		if raw, err := base64.StdEncoding.DecodeString(cred.Secret); err == nil && len(raw) > 0 {
			if preview, err := s.minter.Preview(principal, &cred, string(raw)); err == nil {
				summary.Preview = preview
			}
		}
		list.Tokens = append(list.Tokens, summary)
	}

	list.Total = len(list.Tokens)
	return list, nil
}

// DeleteByID removes the principal's credential with the given registry ID.
// The credential lookup is scoped to the principal's consumer, so one user
// can never delete another's credential by guessing IDs.
func (s *LifecycleService) DeleteByID(ctx context.Context, principal, credentialID string) error {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	auditEntry := core.AuditEntry{
		ID:           reqID,
		Time:         time.Now(),
		Action:       "token.delete",
		Caller:       callerFromContext(ctx),
		Principal:    principal,
		CredentialID: credentialID,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for token deletion")
		}
	}()

	if err := s.registry.DeleteCredential(ctx, principal, credentialID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			auditEntry.Error = "not found"
			return httpError(http.StatusNotFound, fmt.Errorf("credential %q: %w", credentialID, core.ErrNotFound))
		}
		auditEntry.Error = "registry delete failed"
		return classified("deleting credential", err)
	}

	auditEntry.Success = true
	logger.Info().Str("credential_id", credentialID).Msg("token deleted")
	return nil
}

// DeleteByName scans the principal's OWN credentials for the name and
// deletes the match. Another consumer holding the same name is invisible
// here; names are resolved strictly within the principal's consumer.
func (s *LifecycleService) DeleteByName(ctx context.Context, principal, name string) (*DeleteResult, error) {
	logger := log.Ctx(ctx)
	reqID, _ := ctx.Value("correlation_id").(string)

	auditEntry := core.AuditEntry{
		ID:        reqID,
		Time:      time.Now(),
		Action:    "token.delete",
		Caller:    callerFromContext(ctx),
		Principal: principal,
		FinalName: name,
	}
	defer func() {
		if err := s.auditor.Log(auditEntry); err != nil {
			logger.Error().Err(err).Msg("failed to write audit log entry for token deletion")
		}
	}()

	creds, err := s.registry.ListCredentials(ctx, principal)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			auditEntry.Error = "not found"
			return nil, httpError(http.StatusNotFound, fmt.Errorf("token %q: %w", name, core.ErrNotFound))
		}
		auditEntry.Error = "listing credentials failed"
		return nil, classified("listing credentials", err)
	}

	for _, cred := range creds {
		if cred.Name != name {
			continue
		}
		if err := s.registry.DeleteCredential(ctx, principal, cred.ID); err != nil {
			auditEntry.Error = "registry delete failed"
			return nil, classified("deleting credential", err)
		}

		auditEntry.Success = true
		auditEntry.CredentialID = cred.ID
		logger.Info().Str("name", name).Str("credential_id", cred.ID).Msg("token deleted by name")
		return &DeleteResult{
			DeletedName: name,
			DeletedID:   cred.ID,
		}, nil
	}

	auditEntry.Error = "not found"
	return nil, httpError(http.StatusNotFound, fmt.Errorf("token %q: %w", name, core.ErrNotFound))
}

// ListConsumers returns all registry consumers (administrative surface).
func (s *LifecycleService) ListConsumers(ctx context.Context) ([]core.Consumer, error) {
	consumers, err := s.registry.ListConsumers(ctx)
	if err != nil {
		return nil, classified("listing consumers", err)
	}
	return consumers, nil
}

// callerFromContext picks up the authenticated caller the HTTP middleware
// stored, if any. CLI and test flows run without one.
func callerFromContext(ctx context.Context) *core.AuthUser {
	user, _ := ctx.Value("auth_user").(*core.AuthUser)
	return user
}

// defaultTokenName derives the credential name used when the caller does not
// request one, e.g. "alice_token_20240131_142659".
func defaultTokenName(principal string, now time.Time) string {
	return fmt.Sprintf("%s_token_%s", principal, now.Format("20060102_150405"))
}

// classified maps the registry error taxonomy onto HTTP semantics:
// unavailable 503, timeout 504, name exhaustion 409, not-found 404,
// everything else 502 with the raw diagnostics preserved in the chain.
func classified(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, core.ErrUnavailable):
		return httpError(http.StatusServiceUnavailable, wrapped)
	case errors.Is(err, core.ErrTimeout):
		return httpError(http.StatusGatewayTimeout, wrapped)
	case errors.Is(err, core.ErrNameExhausted):
		return httpError(http.StatusConflict, wrapped)
	case errors.Is(err, core.ErrNotFound):
		return httpError(http.StatusNotFound, wrapped)
	default:
		return httpError(http.StatusBadGateway, wrapped)
	}
}
