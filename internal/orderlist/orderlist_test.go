package orderlist

import (
	"testing"

	"github.com/agentic-research/deckguard/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func letters() []string { return []string{"a", "b", "c", "d", "e"} }

func TestMoveToFront(t *testing.T) {
	l := letters()
	require.NoError(t, MoveToFront(l, 1))
	assert.Equal(t, []string{"a", "c", "d", "e", "b"}, l)
}

func TestMoveToBack(t *testing.T) {
	l := letters()
	require.NoError(t, MoveToBack(l, 3))
	assert.Equal(t, []string{"d", "a", "b", "c", "e"}, l)
}

func TestMoveForward(t *testing.T) {
	l := letters()
	require.NoError(t, MoveForward(l, 0))
	assert.Equal(t, []string{"b", "a", "c", "d", "e"}, l)

	// frontmost stays put
	require.NoError(t, MoveForward(l, 4))
	assert.Equal(t, []string{"b", "a", "c", "d", "e"}, l)
}

func TestMoveBackward(t *testing.T) {
	l := letters()
	require.NoError(t, MoveBackward(l, 2))
	assert.Equal(t, []string{"a", "c", "b", "d", "e"}, l)

	// backmost stays put
	require.NoError(t, MoveBackward(l, 0))
	assert.Equal(t, []string{"a", "c", "b", "d", "e"}, l)
}

func TestMoveToPosition(t *testing.T) {
	l := letters()
	require.NoError(t, MoveToPosition(l, 4, 1))
	assert.Equal(t, []string{"a", "e", "b", "c", "d"}, l)

	require.NoError(t, MoveToPosition(l, 1, 1))
	assert.Equal(t, []string{"a", "e", "b", "c", "d"}, l)
}

func TestOutOfRange_NoPartialMutation(t *testing.T) {
	l := letters()
	cases := []func() error{
		func() error { return MoveToFront(l, 5) },
		func() error { return MoveToBack(l, -1) },
		func() error { return MoveForward(l, 99) },
		func() error { return MoveBackward(l, -2) },
		func() error { return MoveToPosition(l, 0, 5) },
		func() error { return MoveToPosition(l, -1, 0) },
	}
	for _, fn := range cases {
		err := fn()
		require.Error(t, err)
		assert.True(t, errs.IsCode(err, errs.CodeIndexOutOfRange))
		assert.Equal(t, letters(), l, "list must be untouched after a failed move")
	}

	e, _ := errs.As(MoveToFront(l, 7))
	assert.Equal(t, 7, e.Details()["index"])
	assert.Equal(t, 5, e.Details()["length"])
}

func TestRemoveInsert(t *testing.T) {
	l := letters()
	l, err := Remove(l, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d", "e"}, l)

	l, err = InsertAt(l, 1, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "x", "b", "d", "e"}, l)

	// append position is legal for insert
	l, err = InsertAt(l, len(l), "z")
	require.NoError(t, err)
	assert.Equal(t, "z", l[len(l)-1])

	_, err = Remove(l, 42)
	assert.True(t, errs.IsCode(err, errs.CodeIndexOutOfRange))
	_, err = InsertAt(l, 99, "nope")
	assert.True(t, errs.IsCode(err, errs.CodeIndexOutOfRange))
}

func TestSingleElement(t *testing.T) {
	l := []string{"only"}
	require.NoError(t, MoveToFront(l, 0))
	require.NoError(t, MoveToBack(l, 0))
	assert.Equal(t, []string{"only"}, l)
}
