package geometry

import (
	"testing"

	"github.com/agentic-research/deckguard/api"
	"github.com/agentic-research/deckguard/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(v float64) *api.AxisSpec  { return &api.AxisSpec{Pct: &v} }
func inch(v float64) *api.AxisSpec { return &api.AxisSpec{Abs: &api.AbsoluteValue{Unit: "in", Value: v}} }
func anchor(name string, off float64) *api.AxisSpec {
	return &api.AxisSpec{Anchor: &api.AnchorRef{Name: name, Offset: off}}
}
func ratio(v float64) *float64 { return &v }

const canvasW, canvasH = 10.0, 7.5

func TestResolvePosition_Percentage(t *testing.T) {
	x, y, err := ResolvePosition(api.PositionSpec{X: pct(50), Y: pct(50)}, canvasW, canvasH)
	require.NoError(t, err)
	assert.Equal(t, 5.0, x)
	assert.Equal(t, 3.75, y)
}

func TestResolvePosition_Absolute(t *testing.T) {
	x, y, err := ResolvePosition(api.PositionSpec{X: inch(1.5), Y: inch(2)}, canvasW, canvasH)
	require.NoError(t, err)
	assert.Equal(t, 1.5, x)
	assert.Equal(t, 2.0, y)
}

func TestResolvePosition_UnitConversion(t *testing.T) {
	cm := &api.AxisSpec{Abs: &api.AbsoluteValue{Unit: "cm", Value: 2.54}}
	pt := &api.AxisSpec{Abs: &api.AbsoluteValue{Unit: "pt", Value: 72}}
	x, y, err := ResolvePosition(api.PositionSpec{X: cm, Y: pt}, canvasW, canvasH)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, x, 1e-12)
	assert.InDelta(t, 1.0, y, 1e-12)
}

func TestResolvePosition_CenterAnchor(t *testing.T) {
	x, y, err := ResolvePosition(api.PositionSpec{
		X: anchor("center", 0),
		Y: anchor("center", 0),
	}, canvasW, canvasH)
	require.NoError(t, err)
	assert.Equal(t, 5.0, x)
	assert.Equal(t, 3.75, y)
}

func TestResolvePosition_AnchorWithOffset(t *testing.T) {
	x, y, err := ResolvePosition(api.PositionSpec{
		X: anchor("bottom_right", -1.0),
		Y: anchor("bottom_right", -0.5),
	}, canvasW, canvasH)
	require.NoError(t, err)
	assert.Equal(t, 9.0, x)
	assert.Equal(t, 7.0, y)
}

func TestResolvePosition_UnknownAnchor(t *testing.T) {
	_, _, err := ResolvePosition(api.PositionSpec{
		X: anchor("centre-ish", 0),
		Y: anchor("center", 0),
	}, canvasW, canvasH)
	require.Error(t, err)
	e, _ := errs.As(err)
	assert.Equal(t, errs.CodeGeometryInvalid, e.Code())
	assert.Contains(t, e.Details()["valid_anchors"], "top_left")
}

func TestResolvePosition_Grid(t *testing.T) {
	x, y, err := ResolvePosition(api.PositionSpec{
		Grid: &api.GridSpec{Row: 1, Col: 2, Divisions: 4},
	}, canvasW, canvasH)
	require.NoError(t, err)
	assert.Equal(t, 5.0, x)     // col 2 of 4 on a 10in canvas
	assert.Equal(t, 1.875, y)   // row 1 of 4 on a 7.5in canvas
}

func TestResolvePosition_GridErrors(t *testing.T) {
	_, _, err := ResolvePosition(api.PositionSpec{Grid: &api.GridSpec{Row: 0, Col: 0, Divisions: 0}}, canvasW, canvasH)
	assert.True(t, errs.IsCode(err, errs.CodeGeometryInvalid))

	_, _, err = ResolvePosition(api.PositionSpec{Grid: &api.GridSpec{Row: 4, Col: 0, Divisions: 4}}, canvasW, canvasH)
	assert.True(t, errs.IsCode(err, errs.CodeGeometryInvalid))

	// grid is exclusive with per-axis specs
	_, _, err = ResolvePosition(api.PositionSpec{
		Grid: &api.GridSpec{Row: 0, Col: 0, Divisions: 2},
		X:    pct(10),
	}, canvasW, canvasH)
	assert.True(t, errs.IsCode(err, errs.CodeGeometryInvalid))
}

func TestResolvePosition_MissingAxis(t *testing.T) {
	_, _, err := ResolvePosition(api.PositionSpec{X: pct(10)}, canvasW, canvasH)
	assert.True(t, errs.IsCode(err, errs.CodeGeometryInvalid))
}

func TestResolvePosition_EmptyAxisSpec(t *testing.T) {
	_, _, err := ResolvePosition(api.PositionSpec{X: &api.AxisSpec{}, Y: pct(10)}, canvasW, canvasH)
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.CodeGeometryInvalid))
}

func TestResolveSize_Explicit(t *testing.T) {
	w, h, err := ResolveSize(api.SizeSpec{Width: pct(50), Height: inch(2)}, canvasW, canvasH)
	require.NoError(t, err)
	assert.Equal(t, 5.0, w)
	assert.Equal(t, 2.0, h)
}

func TestResolveSize_AutoHeightFromRatio(t *testing.T) {
	w, h, err := ResolveSize(api.SizeSpec{
		Width:       inch(4),
		AspectRatio: ratio(2), // width/height
	}, canvasW, canvasH)
	require.NoError(t, err)
	assert.Equal(t, 4.0, w)
	assert.Equal(t, 2.0, h)
}

func TestResolveSize_AutoWidthFromRatio(t *testing.T) {
	w, h, err := ResolveSize(api.SizeSpec{
		Height:      inch(3),
		AspectRatio: ratio(1.5),
	}, canvasW, canvasH)
	require.NoError(t, err)
	assert.Equal(t, 4.5, w)
	assert.Equal(t, 3.0, h)
}

func TestResolveSize_Errors(t *testing.T) {
	// both auto, no ratio
	_, _, err := ResolveSize(api.SizeSpec{}, canvasW, canvasH)
	assert.True(t, errs.IsCode(err, errs.CodeGeometryInvalid))

	// one auto, no ratio
	_, _, err = ResolveSize(api.SizeSpec{Width: inch(4)}, canvasW, canvasH)
	assert.True(t, errs.IsCode(err, errs.CodeGeometryInvalid))

	// anchors are not sizes
	_, _, err = ResolveSize(api.SizeSpec{Width: anchor("center", 0), Height: inch(1)}, canvasW, canvasH)
	assert.True(t, errs.IsCode(err, errs.CodeGeometryInvalid))

	// non-positive resolved size
	_, _, err = ResolveSize(api.SizeSpec{Width: inch(0), Height: inch(1)}, canvasW, canvasH)
	assert.True(t, errs.IsCode(err, errs.CodeGeometryInvalid))

	// unknown unit
	_, _, err = ResolveSize(api.SizeSpec{
		Width:  &api.AxisSpec{Abs: &api.AbsoluteValue{Unit: "furlong", Value: 1}},
		Height: inch(1),
	}, canvasW, canvasH)
	assert.True(t, errs.IsCode(err, errs.CodeGeometryInvalid))
}

func TestAnchorNames_Sorted(t *testing.T) {
	names := AnchorNames()
	assert.Len(t, names, 9)
	assert.Contains(t, names, "center")
	assert.Contains(t, names, "bottom_center")
}
