package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentic-research/deckguard/internal/approval"
)

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Mint approval artifacts for destructive operations",
}

var (
	mintScope    string
	mintTTL      time.Duration
	mintReusable bool
)

var approveMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint an approval artifact and print it as JSON",
	Long: `Mints a scoped, expiring approval artifact and registers it in the
ledger. Pass the printed JSON back via --approval-token (inline or @file).
Built-in scopes: delete:slide, delete:shape, replace:text.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPolicy()
		if err != nil {
			return err
		}
		gate, err := approval.Open(p.ApprovalLedgerPath, p.SigningKey(), p.ExtraDestructive)
		if err != nil {
			return err
		}
		defer func() { _ = gate.Close() }()

		art, err := gate.Mint(mintScope, mintTTL, !mintReusable)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(art, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	approveMintCmd.Flags().StringVar(&mintScope, "scope", "", "Scope the artifact authorizes (e.g. delete:slide)")
	approveMintCmd.Flags().DurationVar(&mintTTL, "ttl", 10*time.Minute, "Artifact lifetime")
	approveMintCmd.Flags().BoolVar(&mintReusable, "reusable", false, "Allow the artifact to be used more than once")
	_ = approveMintCmd.MarkFlagRequired("scope")

	approveCmd.AddCommand(approveMintCmd)
	rootCmd.AddCommand(approveCmd)
}
