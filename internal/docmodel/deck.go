// Package docmodel is the reference document collaborator: a slide deck
// stored as a JSON file. It owns opening, structural validation, atomic
// saving, and the slide/shape list surgery the facade delegates to. All
// geometry is in inches.
package docmodel

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ohler55/ojg/oj"

	"github.com/agentic-research/deckguard/internal/errs"
	"github.com/agentic-research/deckguard/internal/orderlist"
	"github.com/agentic-research/deckguard/internal/version"
)

// Default canvas size in inches (4:3).
const (
	DefaultCanvasWidth  = 10.0
	DefaultCanvasHeight = 7.5
)

// Canvas is the drawable area of every slide.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Shape is one element on a slide. Position and size are inches from the
// canvas top-left.
type Shape struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Text      string  `json:"text"`
	Left      float64 `json:"left"`
	Top       float64 `json:"top"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Fill      string  `json:"fill,omitempty"`
	TextColor string  `json:"text_color,omitempty"`
}

// Slide holds an ordered shape list; slice order is render order (later
// shapes draw on top).
type Slide struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Shapes []*Shape `json:"shapes"`
}

// Deck is a whole document. Slice order of Slides is presentation order.
type Deck struct {
	Title  string   `json:"title"`
	Canvas Canvas   `json:"canvas"`
	Slides []*Slide `json:"slides"`
}

// NewDeck returns an empty deck with the default canvas.
func NewDeck(title string) *Deck {
	return &Deck{
		Title:  title,
		Canvas: Canvas{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight},
		Slides: []*Slide{},
	}
}

// NewSlide returns an empty titled slide with a fresh id.
func NewSlide(title string) *Slide {
	return &Slide{ID: uuid.NewString(), Title: title, Shapes: []*Shape{}}
}

// NewTextbox returns a textbox shape with a fresh id.
func NewTextbox(text string, left, top, width, height float64) *Shape {
	return &Shape{
		ID:     uuid.NewString(),
		Kind:   "textbox",
		Text:   text,
		Left:   left,
		Top:    top,
		Width:  width,
		Height: height,
	}
}

// Open reads and parses a deck file. Parse and structural failures are
// DOCUMENT_INVALID; the caller is expected to have validated the path.
func Open(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrapf(err, errs.CodeDocumentInvalid, "read deck %s", path)
	}
	var d Deck
	if err := oj.Unmarshal(data, &d); err != nil {
		return nil, errs.Wrapf(err, errs.CodeDocumentInvalid, "parse deck %s", path)
	}
	if d.Canvas.Width <= 0 || d.Canvas.Height <= 0 {
		d.Canvas = Canvas{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight}
	}
	if d.Slides == nil {
		d.Slides = []*Slide{}
	}
	for i, s := range d.Slides {
		if s == nil {
			return nil, errs.Newf(errs.CodeDocumentInvalid, "deck %s: slide %d is null", path, i)
		}
		if s.Shapes == nil {
			s.Shapes = []*Shape{}
		}
		for j, sh := range s.Shapes {
			if sh == nil {
				return nil, errs.Newf(errs.CodeDocumentInvalid, "deck %s: slide %d shape %d is null", path, i, j)
			}
		}
	}
	return &d, nil
}

// Save writes the deck atomically: serialize, temp file in the same
// directory, then rename over the target, preserving the original mode.
func (d *Deck) Save(path string) error {
	out := []byte(oj.JSON(d, 2))

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".deckguard-save-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	if info, err := os.Stat(path); err == nil {
		_ = os.Chmod(tmpName, info.Mode()) // best-effort permission sync
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}
	return nil
}

// Elements enumerates the deck for fingerprinting: each slide contributes
// its title (no geometry), then its shapes in render order.
func (d *Deck) Elements() []version.Element {
	els := make([]version.Element, 0, len(d.Slides)*4)
	for _, s := range d.Slides {
		els = append(els, version.Element{Text: s.Title})
		for _, sh := range s.Shapes {
			els = append(els, version.Element{
				Text:   sh.Text,
				Left:   sh.Left,
				Top:    sh.Top,
				Width:  sh.Width,
				Height: sh.Height,
			})
		}
	}
	return els
}

// Slide returns the slide at index with bounds checking.
func (d *Deck) Slide(index int) (*Slide, error) {
	if index < 0 || index >= len(d.Slides) {
		return nil, errs.NewD(errs.CodeIndexOutOfRange, "slide index out of range",
			map[string]any{"index": index, "length": len(d.Slides)})
	}
	return d.Slides[index], nil
}

// InsertSlide inserts s at index (index may equal len to append).
func (d *Deck) InsertSlide(index int, s *Slide) error {
	slides, err := orderlist.InsertAt(d.Slides, index, s)
	if err != nil {
		return err
	}
	d.Slides = slides
	return nil
}

// RemoveSlide deletes the slide at index.
func (d *Deck) RemoveSlide(index int) error {
	slides, err := orderlist.Remove(d.Slides, index)
	if err != nil {
		return err
	}
	d.Slides = slides
	return nil
}

// MoveSlide moves the slide at from to position to.
func (d *Deck) MoveSlide(from, to int) error {
	return orderlist.MoveToPosition(d.Slides, from, to)
}

// ReplaceAllText substitutes every occurrence of find across slide titles
// and shape texts, returning the number of elements changed.
func (d *Deck) ReplaceAllText(find, replace string) int {
	changed := 0
	for _, s := range d.Slides {
		if strings.Contains(s.Title, find) {
			s.Title = strings.ReplaceAll(s.Title, find, replace)
			changed++
		}
		for _, sh := range s.Shapes {
			if strings.Contains(sh.Text, find) {
				sh.Text = strings.ReplaceAll(sh.Text, find, replace)
				changed++
			}
		}
	}
	return changed
}

// Shape returns the shape at index with bounds checking.
func (s *Slide) Shape(index int) (*Shape, error) {
	if index < 0 || index >= len(s.Shapes) {
		return nil, errs.NewD(errs.CodeIndexOutOfRange, "shape index out of range",
			map[string]any{"index": index, "length": len(s.Shapes)})
	}
	return s.Shapes[index], nil
}

// AddShape appends sh (topmost in render order).
func (s *Slide) AddShape(sh *Shape) {
	s.Shapes = append(s.Shapes, sh)
}

// RemoveShape deletes the shape at index.
func (s *Slide) RemoveShape(index int) error {
	shapes, err := orderlist.Remove(s.Shapes, index)
	if err != nil {
		return err
	}
	s.Shapes = shapes
	return nil
}
