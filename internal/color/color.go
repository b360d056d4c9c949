// Package color converts color encodings into a linear-light luminance
// model and computes perceptual (WCAG) contrast ratios.
package color

import (
	"math"
	"strings"

	"github.com/agentic-research/deckguard/api"
	"github.com/agentic-research/deckguard/internal/errs"
)

// RGB is an 8-bit-per-channel sRGB triple. Every color spec is normalized
// to this form before any contrast math.
type RGB struct {
	R, G, B uint8
}

// WCAG thresholds: normal text needs 4.5:1, large text 3:1.
const (
	ThresholdNormal = 4.5
	ThresholdLarge  = 3.0
)

// names is the fixed symbolic lookup table.
var names = map[string]RGB{
	"black":   {0x00, 0x00, 0x00},
	"white":   {0xFF, 0xFF, 0xFF},
	"red":     {0xFF, 0x00, 0x00},
	"green":   {0x00, 0x80, 0x00},
	"blue":    {0x00, 0x00, 0xFF},
	"yellow":  {0xFF, 0xFF, 0x00},
	"cyan":    {0x00, 0xFF, 0xFF},
	"magenta": {0xFF, 0x00, 0xFF},
	"gray":    {0x80, 0x80, 0x80},
	"grey":    {0x80, 0x80, 0x80},
	"silver":  {0xC0, 0xC0, 0xC0},
	"orange":  {0xFF, 0xA5, 0x00},
	"purple":  {0x80, 0x00, 0x80},
	"navy":    {0x00, 0x00, 0x80},
	"teal":    {0x00, 0x80, 0x80},
	"maroon":  {0x80, 0x00, 0x00},
}

// ParseHex parses "#RRGGBB" (the leading '#' is optional). Wrong length or
// non-hex characters yield COLOR_INVALID.
func ParseHex(s string) (RGB, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(raw) != 6 {
		return RGB{}, errs.Newf(errs.CodeColorInvalid, "hex color %q must have 6 hex digits", s)
	}
	var out [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexDigit(raw[2*i])
		lo, ok2 := hexDigit(raw[2*i+1])
		if !ok1 || !ok2 {
			return RGB{}, errs.Newf(errs.CodeColorInvalid, "hex color %q contains non-hex characters", s)
		}
		out[i] = hi<<4 | lo
	}
	return RGB{out[0], out[1], out[2]}, nil
}

// FromName resolves a symbolic color name.
func FromName(name string) (RGB, error) {
	if c, ok := names[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c, nil
	}
	return RGB{}, errs.NewD(errs.CodeColorInvalid, "unknown color name",
		map[string]any{"name": name, "known_names": knownNames()})
}

// Resolve normalizes a wire ColorSpec to an RGB triple. Exactly one of
// Hex/Name must be set.
func Resolve(spec api.ColorSpec) (RGB, error) {
	switch {
	case spec.Hex != "" && spec.Name != "":
		return RGB{}, errs.New(errs.CodeColorInvalid, "color spec sets both hex and name")
	case spec.Hex != "":
		return ParseHex(spec.Hex)
	case spec.Name != "":
		return FromName(spec.Name)
	default:
		return RGB{}, errs.New(errs.CodeColorInvalid, "color spec sets neither hex nor name")
	}
}

// Hex renders the triple back to "#RRGGBB".
func (c RGB) Hex() string {
	const digits = "0123456789ABCDEF"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range [3]uint8{c.R, c.G, c.B} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0xF]
	}
	return string(b)
}

// Luminance is the relative luminance of c: each channel passed through the
// piecewise sRGB-to-linear transform, then the fixed-weight sum.
func Luminance(c RGB) float64 {
	r := linearize(float64(c.R) / 255)
	g := linearize(float64(c.G) / 255)
	b := linearize(float64(c.B) / 255)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func linearize(ch float64) float64 {
	if ch <= 0.03928 {
		return ch / 12.92
	}
	return math.Pow((ch+0.055)/1.055, 2.4)
}

// ContrastRatio is (Lmax+0.05)/(Lmin+0.05); ranges from 1 to 21.
func ContrastRatio(a, b RGB) float64 {
	la, lb := Luminance(a), Luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// MeetsThreshold compares the contrast of fg on bg against the WCAG
// threshold for the text size.
func MeetsThreshold(fg, bg RGB, largeText bool) bool {
	threshold := ThresholdNormal
	if largeText {
		threshold = ThresholdLarge
	}
	return ContrastRatio(fg, bg) >= threshold
}

func hexDigit(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

func knownNames() []string {
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	return out
}
