package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/gatekey/internal/access"
	"github.com/darmiel/gatekey/internal/api"
	"github.com/darmiel/gatekey/internal/audit"
	"github.com/darmiel/gatekey/internal/config"
	"github.com/darmiel/gatekey/internal/identity"
	"github.com/darmiel/gatekey/internal/issuance"
	"github.com/darmiel/gatekey/internal/minter"
	"github.com/darmiel/gatekey/internal/registry"
	"github.com/darmiel/gatekey/internal/verifiers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Gatekey server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		log.Info().Msg("Initializing verifiers...")
		verifierRegistry, err := verifiers.BuildRegistry(cmd.Context(), cfg.Verifiers)
		if err != nil {
			return fmt.Errorf("building verifier registry: %w", err)
		}

		policy, err := access.NewPolicy(cfg.Access)
		if err != nil {
			return fmt.Errorf("compiling access rules: %w", err)
		}

		auditor, err := audit.FromConfig(cfg.Audit)
		if err != nil {
			return fmt.Errorf("setting up auditor: %w", err)
		}
		defer func() {
			if err := auditor.Close(); err != nil {
				log.Error().Err(err).Msg("closing auditor")
			}
		}()

		var registryOpts []registry.Option
		if cfg.Registry.Timeout > 0 {
			registryOpts = append(registryOpts, registry.WithTimeout(cfg.Registry.Timeout))
		}
		reg := registry.New(cfg.Registry.AdminURL, registryOpts...)

		mapper := identity.NewMapper()

		// setup server
		srv := api.NewServer(
			verifierRegistry,
			policy,
			reg,
			reg,
			auditor,
			mapper,
			issuance.New(reg, mapper, cfg.Credentials.MaxAttempts),
			minter.New(cfg.Token.KeyClaim, cfg.Token.MaxTTL),
		)

		server := &http.Server{
			Addr:    addr,
			Handler: srv.Routes(),
		}

		go func() {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Server crashed")
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
}
