package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/gatekey/internal/api/presenter"
)

// handleAdminConsumers lists every consumer known to the registry.
func (s *Server) handleAdminConsumers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.Ctx(ctx)

	consumers, err := s.lifecycle.ListConsumers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to list consumers")
		presenter.Err(w, r, err, "failed to list consumers")
		return
	}

	presenter.JSON(w, r, map[string]any{
		"total":     len(consumers),
		"consumers": consumers,
	}, http.StatusOK)
}

type registryStatus struct {
	Reachable bool   `json:"reachable"`
	Consumers int    `json:"consumers"`
	Error     string `json:"error,omitempty"`
}

// handleAdminRegistryStatus probes the registry and reports reachability.
func (s *Server) handleAdminRegistryStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := s.prober.Status(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("registry status probe failed")
		presenter.JSON(w, r, registryStatus{
			Reachable: false,
			Error:     err.Error(),
		}, http.StatusOK)
		return
	}

	presenter.JSON(w, r, registryStatus{
		Reachable: true,
		Consumers: count,
	}, http.StatusOK)
}
