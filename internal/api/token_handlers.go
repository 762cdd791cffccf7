package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/gatekey/internal/api/middleware"
	"github.com/darmiel/gatekey/internal/api/presenter"
	"github.com/darmiel/gatekey/internal/service"
)

type IssuePayload struct {
	// Principal to issue for. Defaults to the caller's own username;
	// issuing for somebody else requires admin rights, the elevated
	// permission, or a matching access rule.
	Principal string `json:"principal"`

	// Name requests a credential name. The response carries the final
	// name, which differs when the requested one was already taken.
	Name string `json:"name"`

	// TTL for the token, e.g. "24h". Clamped to the configured ceiling.
	TTL string `json:"ttl"`
}

// resolvePrincipal applies the on-behalf-of access check and returns the
// effective principal, or writes the error response and returns false.
func (s *Server) resolvePrincipal(w http.ResponseWriter, r *http.Request, requested string) (string, bool) {
	user := middleware.UserCtx(r.Context())
	if user == nil {
		presenter.Error(w, r, "login required", http.StatusUnauthorized)
		return "", false
	}

	principal := requested
	if principal == "" {
		principal = user.Username
	}

	decision := s.policy.Check(user, principal)
	if !decision.Allowed {
		log.Ctx(r.Context()).Warn().
			Str("caller", user.Username).
			Str("principal", principal).
			Str("reason", decision.Reason).
			Msg("access denied")
		presenter.Error(w, r, "access denied: "+decision.Reason, http.StatusForbidden)
		return "", false
	}

	return principal, true
}

// handleIssue processes token issuance requests.
func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	var payload IssuePayload
	if err := DecodePayload(r, &payload, true /* allow empty */); err != nil {
		logger.Warn().Err(err).Msg("failed to decode issue request payload")
		presenter.Error(w, r, "invalid request payload", http.StatusBadRequest)
		return
	}

	var ttl time.Duration
	if payload.TTL != "" {
		parsed, err := time.ParseDuration(payload.TTL)
		if err != nil || parsed < 0 {
			presenter.Error(w, r, "invalid ttl", http.StatusBadRequest)
			return
		}
		ttl = parsed
	}

	principal, ok := s.resolvePrincipal(w, r, payload.Principal)
	if !ok {
		return
	}

	result, err := s.lifecycle.IssueForPrincipal(ctx, service.IssueRequest{
		Principal:     principal,
		RequestedName: payload.Name,
		TTL:           ttl,
	})
	if err != nil {
		logger.Error().Err(err).Msg("token issuance failed")
		presenter.Err(w, r, err, "token issuance failed")
		return
	}

	presenter.JSON(w, r, result, http.StatusCreated)
}

// handleList returns the principal's tokens without secrets.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	principal, ok := s.resolvePrincipal(w, r, r.URL.Query().Get("principal"))
	if !ok {
		return
	}

	list, err := s.lifecycle.ListTokens(ctx, principal)
	if err != nil {
		logger.Error().Err(err).Msg("listing tokens failed")
		presenter.Err(w, r, err, "listing tokens failed")
		return
	}

	presenter.JSON(w, r, list, http.StatusOK)
}

// handleDeleteByID deletes one of the principal's tokens by registry ID.
func (s *Server) handleDeleteByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	tokenID := r.PathValue("id")
	if tokenID == "" {
		presenter.Error(w, r, "missing token id", http.StatusBadRequest)
		return
	}

	principal, ok := s.resolvePrincipal(w, r, r.URL.Query().Get("principal"))
	if !ok {
		return
	}

	if err := s.lifecycle.DeleteByID(ctx, principal, tokenID); err != nil {
		logger.Error().Err(err).Msg("deleting token failed")
		presenter.Err(w, r, err, "deleting token failed")
		return
	}

	presenter.JSON(w, r, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleDeleteByName deletes one of the principal's tokens by its name.
func (s *Server) handleDeleteByName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	name := r.PathValue("name")
	if name == "" {
		presenter.Error(w, r, "missing token name", http.StatusBadRequest)
		return
	}

	principal, ok := s.resolvePrincipal(w, r, r.URL.Query().Get("principal"))
	if !ok {
		return
	}

	result, err := s.lifecycle.DeleteByName(ctx, principal, name)
	if err != nil {
		logger.Error().Err(err).Msg("deleting token by name failed")
		presenter.Err(w, r, err, "deleting token failed")
		return
	}

	presenter.JSON(w, r, result, http.StatusOK)
}
