// Package api defines the wire-level types of deckguard: the request and
// result envelope of the mutation facade, the geometry/color specification
// unions, and the approval artifact schema. These types are shared by the
// CLI, the MCP server, and the facade; they carry no behavior.
package api

import "time"

// Operation names accepted by the facade. The set is fixed; unknown names
// are rejected, never guessed.
const (
	OpInsertSlide    = "insert_slide"
	OpDeleteSlide    = "delete_slide"
	OpMoveSlide      = "move_slide"
	OpSetSlideTitle  = "set_slide_title"
	OpAddTextbox     = "add_textbox"
	OpRemoveShape    = "remove_shape"
	OpSetShapeText   = "set_shape_text"
	OpMoveShape      = "move_shape"
	OpResizeShape    = "resize_shape"
	OpSetShapeFill   = "set_shape_fill"
	OpReorderShape   = "reorder_shape"
	OpReplaceAllText = "replace_all_text"
	OpGetVersion     = "get_version"
	OpCheckContrast  = "check_contrast"
)

// Reorder directions for OpReorderShape.
const (
	ReorderFront    = "front"
	ReorderBack     = "back"
	ReorderForward  = "forward"
	ReorderBackward = "backward"
	ReorderPosition = "position"
)

// Request is one facade invocation. Operation-specific arguments are
// pointers so "absent" is distinguishable from zero values.
type Request struct {
	Operation string `json:"operation" validate:"required"`
	Path      string `json:"path"`

	// ExpectedVersion, when set, must match the freshly captured version
	// before any mutation proceeds (stale-write detection).
	ExpectedVersion string `json:"expected_version,omitempty"`

	// Approval is required for destructive operations.
	Approval *ApprovalArtifact `json:"approval,omitempty"`

	SlideIndex *int `json:"slide_index,omitempty" validate:"omitempty,min=0"`
	ShapeIndex *int `json:"shape_index,omitempty" validate:"omitempty,min=0"`
	ToIndex    *int `json:"to_index,omitempty" validate:"omitempty,min=0"`

	Title     *string       `json:"title,omitempty"`
	Text      *string       `json:"text,omitempty"`
	Find      *string       `json:"find,omitempty"`
	Replace   *string       `json:"replace,omitempty"`
	Direction string        `json:"direction,omitempty" validate:"omitempty,oneof=front back forward backward position"`
	Position  *PositionSpec `json:"position,omitempty"`
	Size      *SizeSpec     `json:"size,omitempty"`
	Fill      *ColorSpec    `json:"fill,omitempty"`

	Foreground *ColorSpec `json:"foreground,omitempty"`
	Background *ColorSpec `json:"background,omitempty"`
	LargeText  bool       `json:"large_text,omitempty"`
}

// Result is the uniform envelope returned by every facade call.
type Result struct {
	Status string         `json:"status"` // "success" | "error"
	Data   map[string]any `json:"data,omitempty"`
	Error  *ErrorInfo     `json:"error"` // null on success
}

// ErrorInfo is the wire form of a failed call.
type ErrorInfo struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Data keys present on every mutating result.
const (
	KeyVersionBefore = "presentation_version_before"
	KeyVersionAfter  = "presentation_version_after"
)

// ApprovalArtifact authorizes at most one destructive call.
type ApprovalArtifact struct {
	Scope     string    `json:"scope" validate:"required"`
	Expiry    time.Time `json:"expiry" validate:"required"`
	SingleUse bool      `json:"single_use"`
	Token     string    `json:"token" validate:"required"`
}

// AxisSpec specifies one coordinate or one dimension. Exactly one of the
// fields must be set; Auto is only meaningful for size axes.
type AxisSpec struct {
	Abs    *AbsoluteValue `json:"abs,omitempty"`
	Pct    *float64       `json:"pct,omitempty"`
	Anchor *AnchorRef     `json:"anchor,omitempty"`
	Auto   bool           `json:"auto,omitempty"`
}

// AbsoluteValue is a length in an explicit unit ("in", "cm", "pt").
type AbsoluteValue struct {
	Unit  string  `json:"unit" validate:"required,oneof=in cm pt"`
	Value float64 `json:"value"`
}

// AnchorRef names one of the nine standard canvas anchor points plus an
// explicit offset in canonical units.
type AnchorRef struct {
	Name   string  `json:"name" validate:"required"`
	Offset float64 `json:"offset"`
}

// GridSpec positions an element on a canvas divided into equal cells.
// It specifies both axes at once and is mutually exclusive with X/Y.
type GridSpec struct {
	Row       int `json:"row" validate:"min=0"`
	Col       int `json:"col" validate:"min=0"`
	Divisions int `json:"divisions" validate:"required"`
}

// PositionSpec is the position union: either per-axis specs or a grid cell.
type PositionSpec struct {
	X    *AxisSpec `json:"x,omitempty"`
	Y    *AxisSpec `json:"y,omitempty"`
	Grid *GridSpec `json:"grid,omitempty"`
}

// SizeSpec is the size union. An axis marked Auto is derived from the other
// via AspectRatio (width/height); both Auto with no ratio is an error.
type SizeSpec struct {
	Width       *AxisSpec `json:"width,omitempty"`
	Height      *AxisSpec `json:"height,omitempty"`
	AspectRatio *float64  `json:"aspect_ratio,omitempty"`
}

// ColorSpec is either an RGB hex triple ("#RRGGBB") or a symbolic name
// resolved via a fixed lookup table. Exactly one field must be set.
type ColorSpec struct {
	Hex  string `json:"hex,omitempty"`
	Name string `json:"name,omitempty"`
}
