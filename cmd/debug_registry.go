package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// debugRegistryCmd represents the debug registry command
var debugRegistryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Probe the gateway Admin API through the server",
	Long: `Asks the server whether its backing gateway registry is reachable.
Requires admin privileges.`,
	Example: `  gatekey debug registry`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		status, correlation, err := cli.RegistryStatus(cmd.Context())
		if err != nil {
			return logError(err, correlation, "failed to probe registry")
		}

		if !status.Reachable {
			log.Error().Msgf("%s registry unreachable: %s", redCross, status.Error)
			return BeQuietError{}
		}

		log.Info().Msgf("%s registry reachable (%d consumer(s))", greenCheck, status.Consumers)
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugRegistryCmd)
}
