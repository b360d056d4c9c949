// Package geometry resolves heterogeneous position/size specifications into
// the canonical unit system (inches) relative to a canvas. Resolution is
// pure and total: every valid spec resolves to absolute values and every
// invalid spec is rejected with GEOMETRY_INVALID; there is no silent
// fallback position.
package geometry

import (
	"sort"

	"github.com/agentic-research/deckguard/api"
	"github.com/agentic-research/deckguard/internal/errs"
)

// Axis selects which fraction of a 2D anchor applies.
type Axis int

// Axis values.
const (
	AxisX Axis = iota
	AxisY
)

// unitsPerInch converts the accepted absolute units to inches.
var unitsPerInch = map[string]float64{
	"in": 1,
	"cm": 2.54,
	"pt": 72,
}

// anchors maps the nine standard reference points to fractional canvas
// positions (x, y).
var anchors = map[string][2]float64{
	"top_left":      {0, 0},
	"top_center":    {0.5, 0},
	"top_right":     {1, 0},
	"middle_left":   {0, 0.5},
	"center":        {0.5, 0.5},
	"middle_right":  {1, 0.5},
	"bottom_left":   {0, 1},
	"bottom_center": {0.5, 1},
	"bottom_right":  {1, 1},
}

// AnchorNames returns the valid anchor names, sorted, for error details.
func AnchorNames() []string {
	out := make([]string, 0, len(anchors))
	for name := range anchors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ResolvePosition resolves a position spec against the canvas, returning
// (x, y) in inches. The spec is either a grid cell or a pair of per-axis
// specs; mixing the two is rejected.
func ResolvePosition(spec api.PositionSpec, canvasW, canvasH float64) (float64, float64, error) {
	if spec.Grid != nil {
		if spec.X != nil || spec.Y != nil {
			return 0, 0, errs.New(errs.CodeGeometryInvalid, "grid position cannot be combined with per-axis specs")
		}
		return resolveGrid(*spec.Grid, canvasW, canvasH)
	}
	if spec.X == nil || spec.Y == nil {
		return 0, 0, errs.New(errs.CodeGeometryInvalid, "position requires both x and y (or a grid cell)")
	}
	x, err := resolveAxis(*spec.X, canvasW, AxisX, false)
	if err != nil {
		return 0, 0, err
	}
	y, err := resolveAxis(*spec.Y, canvasH, AxisY, false)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

// ResolveSize resolves a size spec against the canvas, returning (w, h) in
// inches. An axis marked auto is derived from the other via the aspect
// ratio (width/height); both axes auto is unresolvable.
func ResolveSize(spec api.SizeSpec, canvasW, canvasH float64) (float64, float64, error) {
	wAuto := spec.Width == nil || spec.Width.Auto
	hAuto := spec.Height == nil || spec.Height.Auto

	if wAuto && hAuto {
		return 0, 0, errs.New(errs.CodeGeometryInvalid, "size cannot leave both dimensions auto")
	}

	var w, h float64
	var err error
	if !wAuto {
		if w, err = resolveAxis(*spec.Width, canvasW, AxisX, true); err != nil {
			return 0, 0, err
		}
		if w <= 0 {
			return 0, 0, errs.Newf(errs.CodeGeometryInvalid, "resolved width %.4f is not positive", w)
		}
	}
	if !hAuto {
		if h, err = resolveAxis(*spec.Height, canvasH, AxisY, true); err != nil {
			return 0, 0, err
		}
		if h <= 0 {
			return 0, 0, errs.Newf(errs.CodeGeometryInvalid, "resolved height %.4f is not positive", h)
		}
	}

	switch {
	case wAuto:
		if spec.AspectRatio == nil || *spec.AspectRatio <= 0 {
			return 0, 0, errs.New(errs.CodeGeometryInvalid, "auto width requires a positive aspect ratio")
		}
		w = h * *spec.AspectRatio
	case hAuto:
		if spec.AspectRatio == nil || *spec.AspectRatio <= 0 {
			return 0, 0, errs.New(errs.CodeGeometryInvalid, "auto height requires a positive aspect ratio")
		}
		h = w / *spec.AspectRatio
	}
	return w, h, nil
}

// resolveAxis dispatches on the axis union tag. Exactly one tag must be
// set; size axes additionally reject anchors (an anchor names a point, not
// a length).
func resolveAxis(axis api.AxisSpec, canvasDim float64, which Axis, isSize bool) (float64, error) {
	tags := 0
	if axis.Abs != nil {
		tags++
	}
	if axis.Pct != nil {
		tags++
	}
	if axis.Anchor != nil {
		tags++
	}
	if axis.Auto {
		tags++
	}
	if tags != 1 {
		return 0, errs.Newf(errs.CodeGeometryInvalid, "axis spec must set exactly one of abs/pct/anchor/auto, got %d", tags)
	}

	switch {
	case axis.Abs != nil:
		per, ok := unitsPerInch[axis.Abs.Unit]
		if !ok {
			return 0, errs.NewD(errs.CodeGeometryInvalid, "unknown unit",
				map[string]any{"unit": axis.Abs.Unit, "accepted_units": []string{"in", "cm", "pt"}})
		}
		return axis.Abs.Value / per, nil

	case axis.Pct != nil:
		return *axis.Pct / 100 * canvasDim, nil

	case axis.Anchor != nil:
		if isSize {
			return 0, errs.New(errs.CodeGeometryInvalid, "anchors specify positions, not sizes")
		}
		frac, ok := anchors[axis.Anchor.Name]
		if !ok {
			return 0, errs.NewD(errs.CodeGeometryInvalid, "unknown anchor",
				map[string]any{"anchor": axis.Anchor.Name, "valid_anchors": AnchorNames()})
		}
		return frac[which]*canvasDim + axis.Anchor.Offset, nil

	default: // Auto
		if !isSize {
			return 0, errs.New(errs.CodeGeometryInvalid, "auto is only valid for size axes")
		}
		return 0, errs.New(errs.CodeGeometryInvalid, "auto axis reached resolution")
	}
}

// resolveGrid divides the canvas into divisions×divisions equal cells and
// returns the top-left corner of cell (row, col).
func resolveGrid(g api.GridSpec, canvasW, canvasH float64) (float64, float64, error) {
	if g.Divisions <= 0 {
		return 0, 0, errs.Newf(errs.CodeGeometryInvalid, "grid divisions must be positive, got %d", g.Divisions)
	}
	if g.Row < 0 || g.Row >= g.Divisions || g.Col < 0 || g.Col >= g.Divisions {
		return 0, 0, errs.NewD(errs.CodeGeometryInvalid, "grid cell outside the canvas",
			map[string]any{"row": g.Row, "col": g.Col, "divisions": g.Divisions})
	}
	return float64(g.Col) * canvasW / float64(g.Divisions),
		float64(g.Row) * canvasH / float64(g.Divisions), nil
}
