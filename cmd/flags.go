package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentic-research/deckguard/api"
)

// Geometry flag grammar. One axis value is one of:
//
//	1.5in | 20cm | 36pt   absolute length
//	1.5                   absolute length, inches implied
//	50%                   percentage of the canvas axis
//	anchor:center         canvas anchor, optional +0.5 / -0.5 offset (inches)
//	auto                  derived from the other axis via --ratio
//
// Positions may instead use --grid R/CxN (row R, column C, N divisions).

var (
	absRe    = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)(in|cm|pt)?$`)
	anchorRe = regexp.MustCompile(`^anchor:([a-z_]+)([+-]\d+(?:\.\d+)?)?$`)
	gridRe   = regexp.MustCompile(`^(?:grid:)?(\d+)/(\d+)x(\d+)$`)
)

// parseAxis parses one axis flag value into the tagged union.
func parseAxis(raw string) (*api.AxisSpec, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	switch {
	case s == "":
		return nil, nil
	case s == "auto":
		return &api.AxisSpec{Auto: true}, nil
	case strings.HasSuffix(s, "%"):
		pct, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid percentage %q", raw)
		}
		return &api.AxisSpec{Pct: &pct}, nil
	}
	if m := anchorRe.FindStringSubmatch(s); m != nil {
		ref := api.AnchorRef{Name: m[1]}
		if m[2] != "" {
			off, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid anchor offset %q", raw)
			}
			ref.Offset = off
		}
		return &api.AxisSpec{Anchor: &ref}, nil
	}
	if m := absRe.FindStringSubmatch(s); m != nil {
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid length %q", raw)
		}
		unit := m[2]
		if unit == "" {
			unit = "in"
		}
		return &api.AxisSpec{Abs: &api.AbsoluteValue{Unit: unit, Value: value}}, nil
	}
	return nil, fmt.Errorf("cannot parse axis value %q (want 1.5in, 50%%, anchor:center+0.5, or auto)", raw)
}

// parseGrid parses "R/CxN" (an optional "grid:" prefix is tolerated).
func parseGrid(raw string) (*api.GridSpec, error) {
	m := gridRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return nil, fmt.Errorf("cannot parse grid value %q (want row/colxdivisions, e.g. 2/3x4)", raw)
	}
	row, _ := strconv.Atoi(m[1])
	col, _ := strconv.Atoi(m[2])
	div, _ := strconv.Atoi(m[3])
	return &api.GridSpec{Row: row, Col: col, Divisions: div}, nil
}

// parsePosition combines the --left/--top/--grid flags into a PositionSpec.
// Returns nil when none are set so callers can distinguish "not requested".
func parsePosition(left, top, grid string) (*api.PositionSpec, error) {
	if grid != "" {
		if left != "" || top != "" {
			return nil, fmt.Errorf("--grid is exclusive with --left/--top")
		}
		g, err := parseGrid(grid)
		if err != nil {
			return nil, err
		}
		return &api.PositionSpec{Grid: g}, nil
	}
	if left == "" && top == "" {
		return nil, nil
	}
	x, err := parseAxis(left)
	if err != nil {
		return nil, fmt.Errorf("--left: %w", err)
	}
	y, err := parseAxis(top)
	if err != nil {
		return nil, fmt.Errorf("--top: %w", err)
	}
	return &api.PositionSpec{X: x, Y: y}, nil
}

// parseSize combines --width/--height/--ratio into a SizeSpec. Returns nil
// when no size flag is set.
func parseSize(width, height string, ratio float64) (*api.SizeSpec, error) {
	if width == "" && height == "" && ratio == 0 {
		return nil, nil
	}
	w, err := parseAxis(width)
	if err != nil {
		return nil, fmt.Errorf("--width: %w", err)
	}
	h, err := parseAxis(height)
	if err != nil {
		return nil, fmt.Errorf("--height: %w", err)
	}
	spec := &api.SizeSpec{Width: w, Height: h}
	if ratio != 0 {
		spec.AspectRatio = &ratio
	}
	return spec, nil
}

// parseColor reads a color flag: "#RRGGBB", bare hex, or a symbolic name.
// Hex digits and names are validated later by the resolver.
func parseColor(raw string) *api.ColorSpec {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "#") || isHex6(s) {
		return &api.ColorSpec{Hex: s}
	}
	return &api.ColorSpec{Name: s}
}

func isHex6(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
