// Package mcpserver exposes the mutation facade as MCP tools over stdio so
// agent runtimes can drive deck edits through the same guarded pipeline the
// CLI uses. Tool arguments mirror the request schema field for field; the
// tool result is the JSON result envelope verbatim.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/deckguard/api"
	"github.com/agentic-research/deckguard/internal/errs"
	"github.com/agentic-research/deckguard/internal/facade"
	"github.com/agentic-research/deckguard/internal/logging"
)

// Server wraps an MCP stdio server bound to one facade.
type Server struct {
	facade *facade.Facade
	mcp    *server.MCPServer
	log    *logging.Logger
}

// New builds the server and registers one tool per facade operation.
func New(f *facade.Facade, version string) *Server {
	s := &Server{
		facade: f,
		mcp: server.NewMCPServer("deckguard", version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		log: logging.Named("mcpserver"),
	}
	s.register()
	return s
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info().Msg("serving MCP over stdio")
	return server.ServeStdio(s.mcp)
}

// Shared parameter options reused across tool definitions.
func pathParam() mcp.ToolOption {
	return mcp.WithString("path", mcp.Required(),
		mcp.Description("Path to the deck file. Must sit under an allowed root and carry an accepted extension."))
}

func expectedVersionParam() mcp.ToolOption {
	return mcp.WithString("expected_version",
		mcp.Description("Optional version fingerprint from get_version; the call fails with VERSION_CONFLICT if the document changed since."))
}

func approvalParam() mcp.ToolOption {
	return mcp.WithObject("approval",
		mcp.Description("Approval artifact from `deckguard approve mint` (scope, expiry, single_use, token). Required for destructive operations."))
}

func slideIndexParam(desc string) mcp.ToolOption {
	return mcp.WithNumber("slide_index", mcp.Description(desc))
}

func shapeIndexParam() mcp.ToolOption {
	return mcp.WithNumber("shape_index", mcp.Description("Zero-based shape index on the slide (render order, 0 is bottom)."))
}

func positionParam() mcp.ToolOption {
	return mcp.WithObject("position",
		mcp.Description(`Position spec: {"x":{...},"y":{...}} or {"grid":{"row":R,"col":C,"divisions":N}}. Each axis is exactly one of {"abs":{"unit":"in|cm|pt","value":V}}, {"pct":P}, or {"anchor":{"name":N,"offset":O}}.`))
}

func sizeParam() mcp.ToolOption {
	return mcp.WithObject("size",
		mcp.Description(`Size spec: {"width":{...},"height":{...},"aspect_ratio":R}. An axis may be {"auto":true} if the other axis and aspect_ratio determine it.`))
}

func colorParam(name, desc string) mcp.ToolOption {
	return mcp.WithObject(name,
		mcp.Description(desc+` Exactly one of {"hex":"#RRGGBB"} or {"name":"red"}.`))
}

func (s *Server) register() {
	type tool struct {
		name string
		desc string
		opts []mcp.ToolOption
	}

	mutating := func(opts ...mcp.ToolOption) []mcp.ToolOption {
		return append([]mcp.ToolOption{pathParam(), expectedVersionParam()}, opts...)
	}

	tools := []tool{
		{api.OpInsertSlide, "Insert a blank slide, optionally titled, at an index (default: append).",
			mutating(slideIndexParam("Insertion index; omit to append."), mcp.WithString("title", mcp.Description("Title for the new slide.")))},
		{api.OpDeleteSlide, "Delete the slide at an index. Destructive: requires an approval artifact.",
			mutating(slideIndexParam("Index of the slide to delete."), approvalParam())},
		{api.OpMoveSlide, "Move a slide to a new position in the deck.",
			mutating(slideIndexParam("Current index of the slide."), mcp.WithNumber("to_index", mcp.Description("Target index.")))},
		{api.OpSetSlideTitle, "Set the title of a slide.",
			mutating(slideIndexParam("Index of the slide."), mcp.WithString("title", mcp.Required(), mcp.Description("New title.")))},
		{api.OpAddTextbox, "Add a textbox to a slide at a resolved position and size.",
			mutating(slideIndexParam("Index of the slide."),
				mcp.WithString("text", mcp.Required(), mcp.Description("Textbox contents.")),
				positionParam(), sizeParam(),
				colorParam("fill", "Optional fill color."))},
		{api.OpRemoveShape, "Remove a shape from a slide. Destructive: requires an approval artifact.",
			mutating(slideIndexParam("Index of the slide."), shapeIndexParam(), approvalParam())},
		{api.OpSetShapeText, "Replace the text of a shape.",
			mutating(slideIndexParam("Index of the slide."), shapeIndexParam(),
				mcp.WithString("text", mcp.Required(), mcp.Description("New text.")))},
		{api.OpMoveShape, "Move a shape to a resolved position.",
			mutating(slideIndexParam("Index of the slide."), shapeIndexParam(), positionParam())},
		{api.OpResizeShape, "Resize a shape to a resolved size.",
			mutating(slideIndexParam("Index of the slide."), shapeIndexParam(), sizeParam())},
		{api.OpSetShapeFill, "Set the fill color of a shape.",
			mutating(slideIndexParam("Index of the slide."), shapeIndexParam(),
				colorParam("fill", "New fill color."))},
		{api.OpReorderShape, "Change a shape's position in the render order.",
			mutating(slideIndexParam("Index of the slide."), shapeIndexParam(),
				mcp.WithString("direction", mcp.Required(), mcp.Enum("front", "back", "forward", "backward", "position"),
					mcp.Description("Where to move the shape in the stack.")),
				mcp.WithNumber("to_index", mcp.Description("Target index; required when direction is \"position\".")))},
		{api.OpReplaceAllText, "Replace every occurrence of a string across all slide titles and shape texts. Destructive: requires an approval artifact.",
			mutating(mcp.WithString("find", mcp.Required(), mcp.Description("Substring to find (non-empty).")),
				mcp.WithString("replace", mcp.Description("Replacement text (may be empty).")),
				approvalParam())},
		{api.OpGetVersion, "Capture the current content fingerprint of a deck without locking it.",
			[]mcp.ToolOption{pathParam()}},
		{api.OpCheckContrast, "Check a foreground/background pair against the WCAG contrast thresholds.",
			[]mcp.ToolOption{
				colorParam("foreground", "Text color."),
				colorParam("background", "Backdrop color."),
				mcp.WithBoolean("large_text", mcp.Description("Apply the relaxed large-text threshold.")),
			}},
	}

	for _, t := range tools {
		opts := append([]mcp.ToolOption{mcp.WithDescription(t.desc)}, t.opts...)
		s.mcp.AddTool(mcp.NewTool(t.name, opts...), s.handle(t.name))
	}
}

// handle adapts one operation: tool arguments decode straight into the
// request schema because property names match the JSON tags.
func (s *Server) handle(op string) server.ToolHandlerFunc {
	return func(ctx context.Context, call mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		req, err := decodeRequest(op, call.GetArguments())
		if err != nil {
			res := api.Result{
				Status: "error",
				Error:  &api.ErrorInfo{Code: string(errs.CodeRequestInvalid), Message: err.Error()},
			}
			return mcp.NewToolResultError(oj.JSON(res, 2)), nil
		}

		res := s.facade.Do(ctx, req)
		out := oj.JSON(res, 2)
		if res.Status != "success" {
			return mcp.NewToolResultError(out), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// decodeRequest goes through encoding/json so time-typed fields (the
// artifact expiry) parse from their RFC 3339 wire form.
func decodeRequest(op string, args map[string]any) (api.Request, error) {
	var req api.Request
	raw, err := json.Marshal(args)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, err
	}
	req.Operation = op
	return req, nil
}
