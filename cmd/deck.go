package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentic-research/deckguard/api"
)

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Whole-deck operations",
}

var deckVersionCmd = &cobra.Command{
	Use:   "version <deck>",
	Short: "Print the deck's content fingerprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, api.Request{Operation: api.OpGetVersion, Path: args[0]})
	},
}

var (
	deckFind    string
	deckReplace string
)

var deckReplaceTextCmd = &cobra.Command{
	Use:   "replace-text <deck>",
	Short: "Replace text across all slides (destructive; needs --approval-token)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, api.Request{
			Operation: api.OpReplaceAllText,
			Path:      args[0],
			Find:      &deckFind,
			Replace:   &deckReplace,
		})
	},
}

func init() {
	deckReplaceTextCmd.Flags().StringVar(&deckFind, "find", "", "Substring to find")
	deckReplaceTextCmd.Flags().StringVar(&deckReplace, "replace", "", "Replacement text")
	_ = deckReplaceTextCmd.MarkFlagRequired("find")

	deckCmd.AddCommand(deckVersionCmd, deckReplaceTextCmd)
	rootCmd.AddCommand(deckCmd)
}
