package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/darmiel/gatekey/pkg/client"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()

	greenCheck = color.New(color.FgGreen).Sprint("✓")
	redCross   = color.New(color.FgRed).Sprint("✗")
)

// BeQuietError signals that the error has already been logged and the
// command should just exit non-zero.
type BeQuietError struct{}

func (BeQuietError) Error() string {
	return "command failed"
}

func getClient() (*client.Client, error) {
	// we need the user to provide some server address first
	server := viper.GetString(GatekeyAddrKey)
	if server == "" {
		return nil, fmt.Errorf("server address not configured, provide via --server or GATEKEY_ADDR")
	}

	var opts []client.Option
	if token := os.Getenv("GATEKEY_TOKEN"); token != "" {
		opts = append(opts, client.WithAuthToken(token))
	}

	return client.New(server, opts...), nil
}

func logError(err error, correlation, msg string) error {
	if correlation != "" {
		log.Error().Msgf("%s %s (correlation ID: %s)", redCross, msg, correlation)
	} else {
		log.Error().Msgf("%s %s", redCross, msg)
	}
	log.Error().Msgf("error: %v", err)
	return BeQuietError{}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
