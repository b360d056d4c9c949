package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agentic-research/deckguard/api"
)

var shapeCmd = &cobra.Command{
	Use:   "shape",
	Short: "Shape-level operations",
}

var (
	shapeSlide int
	shapeIdx   int
	shapeTo    int
	shapeText  string

	flagLeft   string
	flagTop    string
	flagGrid   string
	flagWidth  string
	flagHeight string
	flagRatio  float64
	flagColor  string

	flagDirection string
)

func shapeReq(op, path string) api.Request {
	return api.Request{
		Operation:  op,
		Path:       path,
		SlideIndex: &shapeSlide,
		ShapeIndex: &shapeIdx,
	}
}

func geometryFlags(cmd *cobra.Command, position, size bool) {
	if position {
		cmd.Flags().StringVar(&flagLeft, "left", "", "X position (1.5in, 50%, anchor:center+0.5)")
		cmd.Flags().StringVar(&flagTop, "top", "", "Y position (1.5in, 50%, anchor:middle-0.5)")
		cmd.Flags().StringVar(&flagGrid, "grid", "", "Grid cell row/colxdivisions (e.g. 2/3x4); exclusive with --left/--top")
	}
	if size {
		cmd.Flags().StringVar(&flagWidth, "width", "", "Width (1.5in, 50%, auto)")
		cmd.Flags().StringVar(&flagHeight, "height", "", "Height (1.5in, 50%, auto)")
		cmd.Flags().Float64Var(&flagRatio, "ratio", 0, "Aspect ratio (width/height) for auto axes")
	}
}

var shapeAddTextboxCmd = &cobra.Command{
	Use:   "add-textbox <deck>",
	Short: "Add a textbox to a slide",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parsePosition(flagLeft, flagTop, flagGrid)
		if err != nil {
			return err
		}
		size, err := parseSize(flagWidth, flagHeight, flagRatio)
		if err != nil {
			return err
		}
		return runOp(cmd, api.Request{
			Operation:  api.OpAddTextbox,
			Path:       args[0],
			SlideIndex: &shapeSlide,
			Text:       &shapeText,
			Position:   pos,
			Size:       size,
			Fill:       parseColor(flagColor),
		})
	},
}

var shapeRemoveCmd = &cobra.Command{
	Use:   "remove <deck>",
	Short: "Remove a shape (destructive; needs --approval-token)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, shapeReq(api.OpRemoveShape, args[0]))
	},
}

var shapeSetTextCmd = &cobra.Command{
	Use:   "set-text <deck>",
	Short: "Replace a shape's text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := shapeReq(api.OpSetShapeText, args[0])
		req.Text = &shapeText
		return runOp(cmd, req)
	},
}

var shapeMoveCmd = &cobra.Command{
	Use:   "move <deck>",
	Short: "Move a shape to a resolved position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := parsePosition(flagLeft, flagTop, flagGrid)
		if err != nil {
			return err
		}
		req := shapeReq(api.OpMoveShape, args[0])
		req.Position = pos
		return runOp(cmd, req)
	},
}

var shapeResizeCmd = &cobra.Command{
	Use:   "resize <deck>",
	Short: "Resize a shape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := parseSize(flagWidth, flagHeight, flagRatio)
		if err != nil {
			return err
		}
		req := shapeReq(api.OpResizeShape, args[0])
		req.Size = size
		return runOp(cmd, req)
	},
}

var shapeFillCmd = &cobra.Command{
	Use:   "fill <deck>",
	Short: "Set a shape's fill color",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := shapeReq(api.OpSetShapeFill, args[0])
		req.Fill = parseColor(flagColor)
		return runOp(cmd, req)
	},
}

var shapeOrderCmd = &cobra.Command{
	Use:   "order <deck>",
	Short: "Change a shape's position in the render order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := shapeReq(api.OpReorderShape, args[0])
		req.Direction = flagDirection
		if cmd.Flags().Changed("to") {
			req.ToIndex = &shapeTo
		}
		return runOp(cmd, req)
	},
}

func init() {
	for _, c := range []*cobra.Command{
		shapeAddTextboxCmd, shapeRemoveCmd, shapeSetTextCmd,
		shapeMoveCmd, shapeResizeCmd, shapeFillCmd, shapeOrderCmd,
	} {
		c.Flags().IntVar(&shapeSlide, "slide", 0, "Slide index")
		_ = c.MarkFlagRequired("slide")
		if c != shapeAddTextboxCmd {
			c.Flags().IntVar(&shapeIdx, "shape", 0, "Shape index on the slide")
			_ = c.MarkFlagRequired("shape")
		}
	}

	shapeAddTextboxCmd.Flags().StringVar(&shapeText, "text", "", "Textbox contents")
	_ = shapeAddTextboxCmd.MarkFlagRequired("text")
	geometryFlags(shapeAddTextboxCmd, true, true)
	shapeAddTextboxCmd.Flags().StringVar(&flagColor, "fill", "", "Fill color (#RRGGBB or name)")

	shapeSetTextCmd.Flags().StringVar(&shapeText, "text", "", "New text")
	_ = shapeSetTextCmd.MarkFlagRequired("text")

	geometryFlags(shapeMoveCmd, true, false)
	geometryFlags(shapeResizeCmd, false, true)

	shapeFillCmd.Flags().StringVar(&flagColor, "color", "", "Fill color (#RRGGBB or name)")
	_ = shapeFillCmd.MarkFlagRequired("color")

	shapeOrderCmd.Flags().StringVar(&flagDirection, "direction", "", "front | back | forward | backward | position")
	shapeOrderCmd.Flags().IntVar(&shapeTo, "to", 0, "Target index (direction=position)")
	_ = shapeOrderCmd.MarkFlagRequired("direction")

	shapeCmd.AddCommand(shapeAddTextboxCmd, shapeRemoveCmd, shapeSetTextCmd,
		shapeMoveCmd, shapeResizeCmd, shapeFillCmd, shapeOrderCmd)
	rootCmd.AddCommand(shapeCmd)
}
