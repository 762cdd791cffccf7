package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// consumersListCmd represents the consumers list command
var consumersListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List all consumers on the gateway",
	Example: `  gatekey consumers list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := getClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Fetching consumers...")
		list, correlation, err := cli.ListConsumers(cmd.Context())
		if err != nil {
			return logError(err, correlation, "failed to list consumers")
		}

		if list.Total == 0 {
			log.Info().Msg("No consumers found")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"ID", "Username", "Consumer Key", "Created",
		})

		for _, consumer := range list.Consumers {
			created := ""
			if !consumer.CreatedAt.IsZero() {
				created = consumer.CreatedAt.Format(time.RFC3339)
			}
			t.AppendRow(table.Row{
				faint(consumer.ID),
				bold(consumer.Username),
				consumer.CustomID,
				created,
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
	consumersCmd.AddCommand(consumersListCmd)
}
