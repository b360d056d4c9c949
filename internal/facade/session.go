package facade

import (
	"github.com/agentic-research/deckguard/api"
	"github.com/agentic-research/deckguard/internal/color"
	"github.com/agentic-research/deckguard/internal/docmodel"
	"github.com/agentic-research/deckguard/internal/geometry"
)

// session owns the state of one locked invocation: the open deck, its
// canvas, and per-session memoization. It is created after lock
// acquisition and discarded before release, so no resolution state leaks
// across invocations or processes.
type session struct {
	deck *docmodel.Deck
	path string

	canvasW float64
	canvasH float64

	colorCache map[api.ColorSpec]color.RGB
}

func newSession(deck *docmodel.Deck, path string) *session {
	return &session{
		deck:       deck,
		path:       path,
		canvasW:    deck.Canvas.Width,
		canvasH:    deck.Canvas.Height,
		colorCache: map[api.ColorSpec]color.RGB{},
	}
}

// resolveColor memoizes color resolution for the session.
func (s *session) resolveColor(spec api.ColorSpec) (color.RGB, error) {
	if c, ok := s.colorCache[spec]; ok {
		return c, nil
	}
	c, err := color.Resolve(spec)
	if err != nil {
		return color.RGB{}, err
	}
	s.colorCache[spec] = c
	return c, nil
}

// resolvePosition resolves a position spec against this deck's canvas.
func (s *session) resolvePosition(spec api.PositionSpec) (float64, float64, error) {
	return geometry.ResolvePosition(spec, s.canvasW, s.canvasH)
}

// resolveSize resolves a size spec against this deck's canvas.
func (s *session) resolveSize(spec api.SizeSpec) (float64, float64, error) {
	return geometry.ResolveSize(spec, s.canvasW, s.canvasH)
}
