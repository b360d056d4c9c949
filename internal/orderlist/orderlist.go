// Package orderlist performs ordered-list surgery on caller-owned slices.
// The same primitive backs slide ordering (document order) and shape
// stacking (render order: later entries draw on top). Every operation is
// remove-then-insert with net-zero resizing, bounds-checked before any
// mutation.
//
// Positions are only meaningful until the next mutation: callers holding a
// previously observed index must re-fetch it after any call here.
package orderlist

import (
	"github.com/agentic-research/deckguard/internal/errs"
)

// MoveToFront moves list[index] to the last position (topmost in render
// order, last in document order).
func MoveToFront[T any](list []T, index int) error {
	return MoveToPosition(list, index, len(list)-1)
}

// MoveToBack moves list[index] to position 0 (bottom of the stack).
func MoveToBack[T any](list []T, index int) error {
	return MoveToPosition(list, index, 0)
}

// MoveForward swaps list[index] one position toward the front.
// Already-frontmost elements stay put.
func MoveForward[T any](list []T, index int) error {
	if err := checkIndex(len(list), index); err != nil {
		return err
	}
	if index == len(list)-1 {
		return nil
	}
	return MoveToPosition(list, index, index+1)
}

// MoveBackward swaps list[index] one position toward the back.
// Already-backmost elements stay put.
func MoveBackward[T any](list []T, index int) error {
	if err := checkIndex(len(list), index); err != nil {
		return err
	}
	if index == 0 {
		return nil
	}
	return MoveToPosition(list, index, index-1)
}

// MoveToPosition removes list[from] and reinserts it at to, shifting the
// elements in between. Both indexes are checked against the current length
// before anything moves; on error the list is untouched.
func MoveToPosition[T any](list []T, from, to int) error {
	if err := checkIndex(len(list), from); err != nil {
		return err
	}
	if err := checkIndex(len(list), to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	v := list[from]
	if from < to {
		copy(list[from:to], list[from+1:to+1])
	} else {
		copy(list[to+1:from+1], list[to:from])
	}
	list[to] = v
	return nil
}

// Remove deletes list[index] and returns the shortened slice.
func Remove[T any](list []T, index int) ([]T, error) {
	if err := checkIndex(len(list), index); err != nil {
		return list, err
	}
	return append(list[:index], list[index+1:]...), nil
}

// InsertAt inserts v at index and returns the grown slice. index may equal
// len(list) to append.
func InsertAt[T any](list []T, index int, v T) ([]T, error) {
	if index < 0 || index > len(list) {
		return list, outOfRange(len(list), index)
	}
	var zero T
	list = append(list, zero)
	copy(list[index+1:], list[index:])
	list[index] = v
	return list, nil
}

func checkIndex(length, index int) error {
	if index < 0 || index >= length {
		return outOfRange(length, index)
	}
	return nil
}

func outOfRange(length, index int) error {
	return errs.NewD(errs.CodeIndexOutOfRange, "index out of range",
		map[string]any{"index": index, "length": length})
}
