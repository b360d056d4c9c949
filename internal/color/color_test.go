package color

import (
	"testing"

	"github.com/agentic-research/deckguard/api"
	"github.com/agentic-research/deckguard/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#FF8000")
	require.NoError(t, err)
	assert.Equal(t, RGB{0xFF, 0x80, 0x00}, c)

	c, err = ParseHex("ff8000") // no hash, lowercase
	require.NoError(t, err)
	assert.Equal(t, RGB{0xFF, 0x80, 0x00}, c)
	assert.Equal(t, "#FF8000", c.Hex())
}

func TestParseHex_Invalid(t *testing.T) {
	for _, bad := range []string{"", "#FFF", "#FFFFFFF", "#GGGGGG", "12345Z", "#12 456"} {
		_, err := ParseHex(bad)
		require.Error(t, err, "input %q", bad)
		assert.True(t, errs.IsCode(err, errs.CodeColorInvalid))
	}
}

func TestFromName(t *testing.T) {
	c, err := FromName("  White ")
	require.NoError(t, err)
	assert.Equal(t, RGB{0xFF, 0xFF, 0xFF}, c)

	_, err = FromName("chartreuse-ish")
	require.Error(t, err)
	assert.True(t, errs.IsCode(err, errs.CodeColorInvalid))
}

func TestResolve_ExactlyOneField(t *testing.T) {
	c, err := Resolve(api.ColorSpec{Hex: "#000000"})
	require.NoError(t, err)
	assert.Equal(t, RGB{}, c)

	c, err = Resolve(api.ColorSpec{Name: "navy"})
	require.NoError(t, err)
	assert.Equal(t, RGB{0x00, 0x00, 0x80}, c)

	_, err = Resolve(api.ColorSpec{})
	assert.True(t, errs.IsCode(err, errs.CodeColorInvalid))
	_, err = Resolve(api.ColorSpec{Hex: "#000000", Name: "black"})
	assert.True(t, errs.IsCode(err, errs.CodeColorInvalid))
}

func TestLuminance_Extremes(t *testing.T) {
	assert.InDelta(t, 0.0, Luminance(RGB{0, 0, 0}), 1e-12)
	assert.InDelta(t, 1.0, Luminance(RGB{255, 255, 255}), 1e-12)
}

func TestContrastRatio_Maximum(t *testing.T) {
	ratio := ContrastRatio(RGB{255, 255, 255}, RGB{0, 0, 0})
	assert.InDelta(t, 21.0, ratio, 1e-9)

	// symmetric in argument order
	assert.InDelta(t, ratio, ContrastRatio(RGB{0, 0, 0}, RGB{255, 255, 255}), 1e-12)

	// identical colors: minimum ratio
	assert.InDelta(t, 1.0, ContrastRatio(RGB{42, 42, 42}, RGB{42, 42, 42}), 1e-12)
}

func TestMeetsThreshold_GrayOnWhite(t *testing.T) {
	// #777777 on #FFFFFF is ~4.48:1, just under the 4.5 normal-text
	// threshold, comfortably over the 3.0 large-text one.
	gray, err := ParseHex("#777777")
	require.NoError(t, err)
	white := RGB{255, 255, 255}

	ratio := ContrastRatio(gray, white)
	assert.InDelta(t, 4.478, ratio, 0.01)
	assert.False(t, MeetsThreshold(gray, white, false))
	assert.True(t, MeetsThreshold(gray, white, true))
}
