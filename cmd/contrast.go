package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentic-research/deckguard/api"
)

var contrastLarge bool

var contrastCmd = &cobra.Command{
	Use:   "contrast <foreground> <background>",
	Short: "Check a color pair against the WCAG contrast thresholds",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, api.Request{
			Operation:  api.OpCheckContrast,
			Foreground: parseColor(args[0]),
			Background: parseColor(args[1]),
			LargeText:  contrastLarge,
		})
	},
}

func init() {
	contrastCmd.Flags().BoolVar(&contrastLarge, "large", false, "Apply the relaxed large-text threshold")
	rootCmd.AddCommand(contrastCmd)
}
