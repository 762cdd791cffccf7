package cmd

import (
	"github.com/spf13/cobra"
)

var consumersCmd = &cobra.Command{
	Use:   "consumers",
	Short: "Administrative consumer commands",
	Long:  `Inspect the consumers Gatekey manages on the gateway. Requires admin privileges.`,
}

func init() {
	rootCmd.AddCommand(consumersCmd)
}
