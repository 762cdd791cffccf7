package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/gatekey/pkg/client"
)

var (
	tokenIssuePrincipal string
	tokenIssueName      string
	tokenIssueTTL       string
	tokenIssueRaw       bool
)

// tokenIssueCmd represents the token issue command
var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a new gateway token",
	Long: `Creates a credential on the gateway and prints the signed token.
The caller's identity comes from the GATEKEY_TOKEN bearer token; issuing
for another principal requires admin privileges on the server.`,
	Example: `  # Issue a token for yourself
  gatekey token issue --name laptop

  # Issue on behalf of another principal (admin)
  gatekey token issue --principal svc-build --name ci --ttl 168h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Info().Msg("Requesting token...")
		result, correlation, err := cli.IssueToken(cmd.Context(), client.IssueTokenOptions{
			Principal: tokenIssuePrincipal,
			Name:      tokenIssueName,
			TTL:       tokenIssueTTL,
		})
		if err != nil {
			return logError(err, correlation, "failed to issue token")
		}

		if result.Renamed {
			log.Warn().Msgf("requested name was taken, credential stored as %s", bold(result.TokenName))
		}
		log.Info().Msgf("%s token issued as %s (expires %s)",
			greenCheck, bold(result.TokenName), result.ExpiresAt.Format("2006-01-02 15:04"))

		if tokenIssueRaw {
			// raw mode prints only the token for shell substitution
			fmt.Println(result.Token)
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	tokenCmd.AddCommand(tokenIssueCmd)

	tokenIssueCmd.Flags().StringVar(&tokenIssuePrincipal, "principal", "", "Principal to issue for (defaults to yourself)")
	tokenIssueCmd.Flags().StringVar(&tokenIssueName, "name", "", "Requested credential name (server may rename on conflict)")
	tokenIssueCmd.Flags().StringVar(&tokenIssueTTL, "ttl", "", "Token lifetime, e.g. 24h (clamped to the server ceiling)")
	tokenIssueCmd.Flags().BoolVar(&tokenIssueRaw, "raw", false, "Print only the raw token")
}
