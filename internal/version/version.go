// Package version computes deterministic content fingerprints of documents
// for optimistic-concurrency change detection. A fingerprint is derived
// from the text and geometry of every element in enumeration order, so any
// text edit, move, resize, or reorder changes it; two captures with no
// intervening mutation are identical.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// Element is one fingerprintable unit: its text content and its geometry
// in canonical units. Elements without geometry (e.g. slide titles) carry
// zeros.
type Element struct {
	Text   string
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Document is anything that can enumerate its elements in document order.
type Document interface {
	Elements() []Element
}

// FingerprintLen is the hex length of a fingerprint: 32 hex chars (128
// bits of the digest) make accidental collision astronomically unlikely.
const FingerprintLen = 32

// Capture fingerprints the current state of doc. Pure: no caching, no
// persistence, always freshly derived.
func Capture(doc Document) string {
	var acc strings.Builder
	for _, el := range doc.Elements() {
		acc.WriteString(el.Text)
		acc.WriteByte(':')
		acc.WriteString(formatCoord(el.Left))
		acc.WriteByte(':')
		acc.WriteString(formatCoord(el.Top))
		acc.WriteByte(':')
		acc.WriteString(formatCoord(el.Width))
		acc.WriteByte(':')
		acc.WriteString(formatCoord(el.Height))
		acc.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(acc.String()))
	return hex.EncodeToString(sum[:])[:FingerprintLen]
}

// formatCoord renders a coordinate with stable, locale-independent
// formatting ('g' keeps the shortest round-trippable form).
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
