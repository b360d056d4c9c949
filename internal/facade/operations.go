package facade

import (
	"sort"

	"github.com/agentic-research/deckguard/api"
	"github.com/agentic-research/deckguard/internal/docmodel"
	"github.com/agentic-research/deckguard/internal/errs"
	"github.com/agentic-research/deckguard/internal/orderlist"
)

// mutation applies one edit to the session's deck and returns its
// operation-specific payload. Version fields are added by the pipeline.
type mutation func(s *session, req api.Request) (map[string]any, error)

// mutations is the fixed operation table. An operation's presence here is
// what makes it known; destructive classification lives in the approval
// gate, not here.
var mutations = map[string]mutation{
	api.OpInsertSlide:    opInsertSlide,
	api.OpDeleteSlide:    opDeleteSlide,
	api.OpMoveSlide:      opMoveSlide,
	api.OpSetSlideTitle:  opSetSlideTitle,
	api.OpAddTextbox:     opAddTextbox,
	api.OpRemoveShape:    opRemoveShape,
	api.OpSetShapeText:   opSetShapeText,
	api.OpMoveShape:      opMoveShape,
	api.OpResizeShape:    opResizeShape,
	api.OpSetShapeFill:   opSetShapeFill,
	api.OpReorderShape:   opReorderShape,
	api.OpReplaceAllText: opReplaceAllText,
}

func operationNames() []string {
	names := make([]string, 0, len(mutations)+2)
	for name := range mutations {
		names = append(names, name)
	}
	names = append(names, api.OpGetVersion, api.OpCheckContrast)
	sort.Strings(names)
	return names
}

func opInsertSlide(s *session, req api.Request) (map[string]any, error) {
	title := ""
	if req.Title != nil {
		title = *req.Title
	}
	index := len(s.deck.Slides) // default: append
	if req.SlideIndex != nil {
		index = *req.SlideIndex
	}
	slide := docmodel.NewSlide(title)
	if err := s.deck.InsertSlide(index, slide); err != nil {
		return nil, err
	}
	return map[string]any{"slide_id": slide.ID, "slide_index": index, "slides": len(s.deck.Slides)}, nil
}

func opDeleteSlide(s *session, req api.Request) (map[string]any, error) {
	if req.SlideIndex == nil {
		return nil, missingArg(api.OpDeleteSlide, "slide_index")
	}
	slide, err := s.deck.Slide(*req.SlideIndex)
	if err != nil {
		return nil, err
	}
	if err := s.deck.RemoveSlide(*req.SlideIndex); err != nil {
		return nil, err
	}
	return map[string]any{"deleted_slide_id": slide.ID, "slides": len(s.deck.Slides)}, nil
}

func opMoveSlide(s *session, req api.Request) (map[string]any, error) {
	if req.SlideIndex == nil {
		return nil, missingArg(api.OpMoveSlide, "slide_index")
	}
	if req.ToIndex == nil {
		return nil, missingArg(api.OpMoveSlide, "to_index")
	}
	if err := s.deck.MoveSlide(*req.SlideIndex, *req.ToIndex); err != nil {
		return nil, err
	}
	return map[string]any{"from": *req.SlideIndex, "to": *req.ToIndex}, nil
}

func opSetSlideTitle(s *session, req api.Request) (map[string]any, error) {
	if req.SlideIndex == nil {
		return nil, missingArg(api.OpSetSlideTitle, "slide_index")
	}
	if req.Title == nil {
		return nil, missingArg(api.OpSetSlideTitle, "title")
	}
	slide, err := s.deck.Slide(*req.SlideIndex)
	if err != nil {
		return nil, err
	}
	slide.Title = *req.Title
	return map[string]any{"slide_id": slide.ID}, nil
}

func opAddTextbox(s *session, req api.Request) (map[string]any, error) {
	if req.SlideIndex == nil {
		return nil, missingArg(api.OpAddTextbox, "slide_index")
	}
	if req.Text == nil {
		return nil, missingArg(api.OpAddTextbox, "text")
	}
	if req.Position == nil {
		return nil, missingArg(api.OpAddTextbox, "position")
	}
	if req.Size == nil {
		return nil, missingArg(api.OpAddTextbox, "size")
	}
	slide, err := s.deck.Slide(*req.SlideIndex)
	if err != nil {
		return nil, err
	}

	x, y, err := s.resolvePosition(*req.Position)
	if err != nil {
		return nil, err
	}
	w, h, err := s.resolveSize(*req.Size)
	if err != nil {
		return nil, err
	}

	box := docmodel.NewTextbox(*req.Text, x, y, w, h)
	if req.Fill != nil {
		c, err := s.resolveColor(*req.Fill)
		if err != nil {
			return nil, err
		}
		box.Fill = c.Hex()
	}
	slide.AddShape(box)
	return map[string]any{
		"shape_id": box.ID, "shape_index": len(slide.Shapes) - 1,
		"left": x, "top": y, "width": w, "height": h,
	}, nil
}

func opRemoveShape(s *session, req api.Request) (map[string]any, error) {
	if req.SlideIndex == nil {
		return nil, missingArg(api.OpRemoveShape, "slide_index")
	}
	if req.ShapeIndex == nil {
		return nil, missingArg(api.OpRemoveShape, "shape_index")
	}
	slide, err := s.deck.Slide(*req.SlideIndex)
	if err != nil {
		return nil, err
	}
	shape, err := slide.Shape(*req.ShapeIndex)
	if err != nil {
		return nil, err
	}
	if err := slide.RemoveShape(*req.ShapeIndex); err != nil {
		return nil, err
	}
	return map[string]any{"deleted_shape_id": shape.ID, "shapes": len(slide.Shapes)}, nil
}

func opSetShapeText(s *session, req api.Request) (map[string]any, error) {
	if req.Text == nil {
		return nil, missingArg(api.OpSetShapeText, "text")
	}
	shape, err := shapeArg(s, req, api.OpSetShapeText)
	if err != nil {
		return nil, err
	}
	shape.Text = *req.Text
	return map[string]any{"shape_id": shape.ID}, nil
}

func opMoveShape(s *session, req api.Request) (map[string]any, error) {
	if req.Position == nil {
		return nil, missingArg(api.OpMoveShape, "position")
	}
	shape, err := shapeArg(s, req, api.OpMoveShape)
	if err != nil {
		return nil, err
	}
	x, y, err := s.resolvePosition(*req.Position)
	if err != nil {
		return nil, err
	}
	shape.Left, shape.Top = x, y
	return map[string]any{"shape_id": shape.ID, "left": x, "top": y}, nil
}

func opResizeShape(s *session, req api.Request) (map[string]any, error) {
	if req.Size == nil {
		return nil, missingArg(api.OpResizeShape, "size")
	}
	shape, err := shapeArg(s, req, api.OpResizeShape)
	if err != nil {
		return nil, err
	}
	w, h, err := s.resolveSize(*req.Size)
	if err != nil {
		return nil, err
	}
	shape.Width, shape.Height = w, h
	return map[string]any{"shape_id": shape.ID, "width": w, "height": h}, nil
}

func opSetShapeFill(s *session, req api.Request) (map[string]any, error) {
	if req.Fill == nil {
		return nil, missingArg(api.OpSetShapeFill, "fill")
	}
	shape, err := shapeArg(s, req, api.OpSetShapeFill)
	if err != nil {
		return nil, err
	}
	c, err := s.resolveColor(*req.Fill)
	if err != nil {
		return nil, err
	}
	shape.Fill = c.Hex()
	return map[string]any{"shape_id": shape.ID, "fill": shape.Fill}, nil
}

func opReorderShape(s *session, req api.Request) (map[string]any, error) {
	if req.SlideIndex == nil {
		return nil, missingArg(api.OpReorderShape, "slide_index")
	}
	if req.ShapeIndex == nil {
		return nil, missingArg(api.OpReorderShape, "shape_index")
	}
	if req.Direction == "" {
		return nil, missingArg(api.OpReorderShape, "direction")
	}
	slide, err := s.deck.Slide(*req.SlideIndex)
	if err != nil {
		return nil, err
	}

	index := *req.ShapeIndex
	switch req.Direction {
	case api.ReorderFront:
		err = orderlist.MoveToFront(slide.Shapes, index)
	case api.ReorderBack:
		err = orderlist.MoveToBack(slide.Shapes, index)
	case api.ReorderForward:
		err = orderlist.MoveForward(slide.Shapes, index)
	case api.ReorderBackward:
		err = orderlist.MoveBackward(slide.Shapes, index)
	case api.ReorderPosition:
		if req.ToIndex == nil {
			return nil, missingArg(api.OpReorderShape, "to_index")
		}
		err = orderlist.MoveToPosition(slide.Shapes, index, *req.ToIndex)
	default:
		return nil, errs.Newf(errs.CodeRequestInvalid, "unknown reorder direction %q", req.Direction)
	}
	if err != nil {
		return nil, err
	}
	// Indices observed before this call are stale now; report the new order.
	order := make([]string, len(slide.Shapes))
	for i, sh := range slide.Shapes {
		order[i] = sh.ID
	}
	return map[string]any{"direction": req.Direction, "shape_order": order}, nil
}

func opReplaceAllText(s *session, req api.Request) (map[string]any, error) {
	if req.Find == nil || *req.Find == "" {
		return nil, missingArg(api.OpReplaceAllText, "find")
	}
	replace := ""
	if req.Replace != nil {
		replace = *req.Replace
	}
	n := s.deck.ReplaceAllText(*req.Find, replace)
	return map[string]any{"replaced_elements": n}, nil
}

// shapeArg fetches the shape addressed by slide_index/shape_index.
func shapeArg(s *session, req api.Request, op string) (*docmodel.Shape, error) {
	if req.SlideIndex == nil {
		return nil, missingArg(op, "slide_index")
	}
	if req.ShapeIndex == nil {
		return nil, missingArg(op, "shape_index")
	}
	slide, err := s.deck.Slide(*req.SlideIndex)
	if err != nil {
		return nil, err
	}
	return slide.Shape(*req.ShapeIndex)
}
