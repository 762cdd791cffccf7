package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var tokenListPrincipal string

// tokenListCmd represents the token list command
var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your tokens",
	Long: `Lists the credentials stored on the gateway for a principal.
Secrets are never returned; the preview column is a truncated sample token.`,
	Example: `  gatekey token list
  gatekey token list --principal svc-build`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		list, correlation, err := cli.ListTokens(cmd.Context(), tokenListPrincipal)
		if err != nil {
			return logError(err, correlation, "failed to list tokens")
		}

		if list.Total == 0 {
			log.Info().Msgf("No tokens found for %s", bold(list.Principal))
			return nil
		}
		log.Debug().Msgf("Retrieved %d token(s)", list.Total)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"ID", "Name", "Algorithm", "Created", "Preview",
		})

		for _, tok := range list.Tokens {
			created := ""
			if !tok.CreatedAt.IsZero() {
				created = tok.CreatedAt.Format(time.RFC3339)
			}
			t.AppendRow(table.Row{
				tok.ID,
				bold(tok.Name),
				tok.Algorithm,
				created,
				faint(truncate(tok.Preview, 32)),
			})
		}

		s := table.StyleRounded
		s.Format.Header = text.FormatDefault
		t.SetStyle(s)
		t.Render()
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenListCmd)

	tokenListCmd.Flags().StringVar(&tokenListPrincipal, "principal", "", "Principal to list tokens for (defaults to yourself)")
}
