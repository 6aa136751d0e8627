// Package ordering keeps the members of a parent (tasks in a column, columns
// in a board) at dense, unique, zero-based positions while they are inserted,
// removed, moved and reordered.
//
// Every function operates on a List bound to one open transaction and leaves
// the parent(s) it touched at positions exactly 0..N-1 when it returns nil.
// When it returns an error the caller must roll the transaction back; partial
// shifts are never meant to be committed.
package ordering

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
)

// ErrInvalidRange is returned when a requested index lies outside the valid
// range for the destination, or a reorder list is not a permutation of the
// current members.
var ErrInvalidRange = errors.New("position out of range")

// Unbounded is the open upper end of a Span.
const Unbounded = math.MaxInt32

// Placement is where an item currently sits.
type Placement struct {
	Parent   uuid.UUID
	Position int
}

// Span is an inclusive range of positions.
type Span struct {
	From int
	To   int
}

// From returns the span [from, Unbounded].
func From(from int) Span {
	return Span{From: from, To: Unbounded}
}

// Contains reports whether position lies within s.
func (s Span) Contains(position int) bool {
	return position >= s.From && position <= s.To
}

// List is the persistence surface the engine needs for one kind of sibling
// list. Implementations must run every call in the same transaction.
type List interface {
	// LockParent serializes writers on parent for the rest of the transaction
	// and returns its new order version. Returns a not-found error if the
	// parent does not exist.
	LockParent(ctx context.Context, parent uuid.UUID) (int64, error)

	// Count returns the number of items under parent.
	Count(ctx context.Context, parent uuid.UUID) (int, error)

	// Locate returns the current placement of item, or a not-found error.
	Locate(ctx context.Context, item uuid.UUID) (Placement, error)

	// Shift adds delta to the position of every item under parent whose
	// position lies in span, as one bulk statement.
	Shift(ctx context.Context, parent uuid.UUID, span Span, delta int) error

	// Place sets the parent and position of a single item.
	Place(ctx context.Context, item, parent uuid.UUID, position int) error

	// Remove deletes item.
	Remove(ctx context.Context, item uuid.UUID) error

	// Members returns the ids under parent ordered by position.
	Members(ctx context.Context, parent uuid.UUID) ([]uuid.UUID, error)
}
