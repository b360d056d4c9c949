package errs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf_RoundTrip(t *testing.T) {
	err := Newf(CodeLockTimeout, "could not lock %s", "/tmp/deck.deck.json")
	assert.Equal(t, CodeLockTimeout, CodeOf(err))
	assert.True(t, IsCode(err, CodeLockTimeout))
	assert.False(t, IsCode(err, CodePathInvalid))
}

func TestCodeOf_WrappedThroughFmt(t *testing.T) {
	inner := New(CodeVersionConflict, "expected version mismatch")
	outer := fmt.Errorf("facade: %w", inner)
	assert.Equal(t, CodeVersionConflict, CodeOf(outer))
}

func TestCodeOf_ForeignError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(fmt.Errorf("plain")))
}

func TestWithOp_SurfacesOnWire(t *testing.T) {
	err := WithOp(New(CodeApprovalRequired, "artifact expired"), "delete_slide")
	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "delete_slide", e.Op())

	w := e.ToWire()
	assert.Equal(t, CodeApprovalRequired, w.Code)
	assert.Equal(t, "delete_slide", w.Details["operation"])
}

func TestWithOp_WrapsForeignError(t *testing.T) {
	err := WithOp(fmt.Errorf("disk full"), "add_textbox")
	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, CodeInternal, e.Code())
	assert.Equal(t, "add_textbox", e.Op())
}

func TestWithDetail_CopyOnWrite(t *testing.T) {
	base := NewD(CodeIndexOutOfRange, "slide index out of range", map[string]any{"index": 9})
	derived := WithDetail(base, "length", 3)

	be, _ := As(base)
	de, _ := As(derived)
	assert.NotContains(t, be.Details(), "length")
	assert.Equal(t, 3, de.Details()["length"])
	assert.Equal(t, 9, de.Details()["index"])
}

func TestWireFrom(t *testing.T) {
	w := WireFrom(nil)
	assert.Empty(t, w.Code)

	w = WireFrom(fmt.Errorf("boom"))
	assert.Equal(t, CodeInternal, w.Code)
	assert.Equal(t, "boom", w.Message)

	w = WireFrom(Wrap(fmt.Errorf("no such file"), CodePathInvalid, "stat target"))
	assert.Equal(t, CodePathInvalid, w.Code)
	assert.Equal(t, "stat target", w.Message)
}

func TestUnwrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(cause, CodeDocumentInvalid, "parse deck")
	e, _ := As(err)
	assert.Equal(t, cause, e.Unwrap())
	assert.Contains(t, err.Error(), "root cause")
}
