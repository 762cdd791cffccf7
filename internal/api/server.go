package api

import (
	"context"
	"net/http"

	"github.com/darmiel/gatekey/internal/access"
	"github.com/darmiel/gatekey/internal/api/middleware"
	"github.com/darmiel/gatekey/internal/audit"
	"github.com/darmiel/gatekey/internal/core"
	"github.com/darmiel/gatekey/internal/identity"
	"github.com/darmiel/gatekey/internal/issuance"
	"github.com/darmiel/gatekey/internal/minter"
	"github.com/darmiel/gatekey/internal/service"
	"github.com/darmiel/gatekey/internal/verifiers"
)

// StatusProber reports whether the backing registry is reachable and how
// many consumers it holds.
type StatusProber interface {
	Status(ctx context.Context) (int, error)
}

type Server struct {
	verifiers *verifiers.Registry
	policy    *access.Policy
	auditor   core.Auditor
	prober    StatusProber
	lifecycle *service.LifecycleService
}

func NewServer(
	verifierRegistry *verifiers.Registry,
	policy *access.Policy,
	registry core.Registry,
	prober StatusProber,
	auditor core.Auditor,
	mapper *identity.Mapper,
	issuer *issuance.Issuer,
	tokenMinter *minter.Minter,
) *Server {
	if auditor == nil {
		auditor = audit.NewNoopAuditor()
	}

	svc := service.NewLifecycleService(registry, mapper, issuer, tokenMinter, auditor)

	return &Server{
		verifiers: verifierRegistry,
		policy:    policy,
		auditor:   auditor,
		prober:    prober,
		lifecycle: svc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// public routes
	mux.HandleFunc("GET "+HealthCheckRoute, s.handleHealth)
	mux.HandleFunc("GET "+AboutRoute, s.handleAbout)

	// token lifecycle routes
	auth := middleware.BearerAuth(s.verifiers)
	mux.Handle("POST "+IssueTokenRoute, auth(http.HandlerFunc(s.handleIssue)))
	mux.Handle("GET "+ListTokensRoute, auth(http.HandlerFunc(s.handleList)))
	mux.Handle("DELETE "+DeleteTokenRoute, auth(http.HandlerFunc(s.handleDeleteByID)))
	mux.Handle("DELETE "+DeleteTokenByNameRoute, auth(http.HandlerFunc(s.handleDeleteByName)))

	// admin routes
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET "+ListConsumersRoute, s.handleAdminConsumers)
	adminMux.HandleFunc("GET "+RegistryStatusRoute, s.handleAdminRegistryStatus)
	mux.Handle(AdminParent, auth(middleware.AdminAuth(s.policy.AdminRole())(adminMux)))

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				mux)))
}
