package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentic-research/deckguard/api"
)

var slideCmd = &cobra.Command{
	Use:   "slide",
	Short: "Slide-level operations",
}

var (
	slideAt    int
	slideTo    int
	slideTitle string
)

var slideInsertCmd = &cobra.Command{
	Use:   "insert <deck>",
	Short: "Insert a blank slide (appends unless --at is given)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.Request{Operation: api.OpInsertSlide, Path: args[0]}
		if cmd.Flags().Changed("at") {
			req.SlideIndex = &slideAt
		}
		if cmd.Flags().Changed("title") {
			req.Title = &slideTitle
		}
		return runOp(cmd, req)
	},
}

var slideRemoveCmd = &cobra.Command{
	Use:   "remove <deck>",
	Short: "Delete a slide (destructive; needs --approval-token)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, api.Request{
			Operation:  api.OpDeleteSlide,
			Path:       args[0],
			SlideIndex: &slideAt,
		})
	},
}

var slideMoveCmd = &cobra.Command{
	Use:   "move <deck>",
	Short: "Move a slide to a new position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, api.Request{
			Operation:  api.OpMoveSlide,
			Path:       args[0],
			SlideIndex: &slideAt,
			ToIndex:    &slideTo,
		})
	},
}

var slideSetTitleCmd = &cobra.Command{
	Use:   "set-title <deck>",
	Short: "Set a slide's title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, api.Request{
			Operation:  api.OpSetSlideTitle,
			Path:       args[0],
			SlideIndex: &slideAt,
			Title:      &slideTitle,
		})
	},
}

func init() {
	slideInsertCmd.Flags().IntVar(&slideAt, "at", 0, "Insertion index (default: append)")
	slideInsertCmd.Flags().StringVar(&slideTitle, "title", "", "Title for the new slide")

	slideRemoveCmd.Flags().IntVar(&slideAt, "at", 0, "Index of the slide to delete")
	_ = slideRemoveCmd.MarkFlagRequired("at")

	slideMoveCmd.Flags().IntVar(&slideAt, "at", 0, "Current index of the slide")
	slideMoveCmd.Flags().IntVar(&slideTo, "to", 0, "Target index")
	_ = slideMoveCmd.MarkFlagRequired("at")
	_ = slideMoveCmd.MarkFlagRequired("to")

	slideSetTitleCmd.Flags().IntVar(&slideAt, "at", 0, "Index of the slide")
	slideSetTitleCmd.Flags().StringVar(&slideTitle, "title", "", "New title")
	_ = slideSetTitleCmd.MarkFlagRequired("at")
	_ = slideSetTitleCmd.MarkFlagRequired("title")

	slideCmd.AddCommand(slideInsertCmd, slideRemoveCmd, slideMoveCmd, slideSetTitleCmd)
	rootCmd.AddCommand(slideCmd)
}
