package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/gatekey/internal/core"
	"github.com/darmiel/gatekey/internal/minter"
)

var (
	debugMintPrincipal string
	debugMintName      string
	debugMintSecret    string
	debugMintTTL       time.Duration
	debugMintKeyClaim  string
)

// debugMintCmd represents the debug mint command
var debugMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint a token locally for testing",
	Long: `Test command that signs a token from a known credential name and secret
without touching the gateway. Useful to verify what the gateway will see.`,
	Example: `  gatekey debug mint --principal alice --name laptop --secret $SECRET`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if debugMintSecret == "" {
			return fmt.Errorf("must provide --secret")
		}

		m := minter.New(debugMintKeyClaim, 0)
		signed, err := m.Mint(debugMintPrincipal, &core.Credential{
			Name:      debugMintName,
			Algorithm: "HS256",
		}, debugMintSecret, debugMintTTL)
		if err != nil {
			return fmt.Errorf("minting failed: %w", err)
		}

		log.Info().Msgf("%s minted token (expires %s)", greenCheck, signed.ExpiresAt.Format(time.RFC3339))
		fmt.Println(signed.Token)
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugMintCmd)

	debugMintCmd.Flags().StringVar(&debugMintPrincipal, "principal", "", "Principal to mint for (becomes the iss claim)")
	debugMintCmd.Flags().StringVar(&debugMintName, "name", "", "Credential name (becomes the key claim)")
	debugMintCmd.Flags().StringVar(&debugMintSecret, "secret", "", "Raw signing secret")
	debugMintCmd.Flags().DurationVar(&debugMintTTL, "ttl", time.Hour, "Token lifetime")
	debugMintCmd.Flags().StringVar(&debugMintKeyClaim, "key-claim", "", "Claim name carrying the credential name (default kid)")

	_ = debugMintCmd.MarkFlagRequired("principal")
	_ = debugMintCmd.MarkFlagRequired("name")
	_ = debugMintCmd.MarkFlagRequired("secret")
}
