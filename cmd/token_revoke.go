package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	tokenRevokeID        string
	tokenRevokeName      string
	tokenRevokePrincipal string
)

// tokenRevokeCmd represents the token revoke command
var tokenRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke a token",
	Long: `Deletes the backing credential from the gateway, which immediately
invalidates every token minted from it.`,
	Example: `  # Revoke by credential name
  gatekey token revoke --name laptop

  # Revoke by credential ID
  gatekey token revoke --id 8f14e45f-ceea-4677-a7b5-20a1b64a6d9c`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenRevokeID == "" && tokenRevokeName == "" {
			return fmt.Errorf("must provide --id or --name")
		}
		if tokenRevokeID != "" && tokenRevokeName != "" {
			return fmt.Errorf("--id and --name are mutually exclusive")
		}

		cli, err := getClient()
		if err != nil {
			return err
		}

		if tokenRevokeID != "" {
			correlation, err := cli.DeleteToken(cmd.Context(), tokenRevokePrincipal, tokenRevokeID)
			if err != nil {
				return logError(err, correlation, "failed to revoke token")
			}
			log.Info().Msgf("%s token %s revoked", greenCheck, bold(tokenRevokeID))
			return nil
		}

		result, correlation, err := cli.DeleteTokenByName(cmd.Context(), tokenRevokePrincipal, tokenRevokeName)
		if err != nil {
			return logError(err, correlation, "failed to revoke token")
		}
		log.Info().Msgf("%s token %s (%s) revoked", greenCheck, bold(result.DeletedName), faint(result.DeletedID))
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenRevokeCmd)

	tokenRevokeCmd.Flags().StringVar(&tokenRevokeID, "id", "", "Credential ID to revoke")
	tokenRevokeCmd.Flags().StringVar(&tokenRevokeName, "name", "", "Credential name to revoke")
	tokenRevokeCmd.Flags().StringVar(&tokenRevokePrincipal, "principal", "", "Principal owning the token (defaults to yourself)")
}
