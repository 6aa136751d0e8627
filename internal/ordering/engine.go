package ordering

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/taskify/taskify-api/internal/ordering"

// CreateFunc stores a new item at position. It runs after the slot is open.
type CreateFunc func(ctx context.Context, position int) error

// InsertAt opens a slot at index under parent, shifting members at or after
// index down by one, and calls create with the slot's position.
// index must lie in [0, Count(parent)].
func InsertAt(ctx context.Context, l List, parent uuid.UUID, index int, create CreateFunc) (err error) {
	ctx, span := startSpan(ctx, "ordering.InsertAt",
		attribute.String("ordering.parent", parent.String()),
		attribute.Int("ordering.index", index))
	defer func() { finish(span, err) }()

	if _, err = l.LockParent(ctx, parent); err != nil {
		return err
	}

	n, err := l.Count(ctx, parent)
	if err != nil {
		return err
	}
	if index < 0 || index > n {
		return rangeError(index, n)
	}

	if index < n {
		if err = l.Shift(ctx, parent, From(index), 1); err != nil {
			return err
		}
	}

	return create(ctx, index)
}

// Append stores a new item after the last member of parent and returns its
// position. No existing member moves.
func Append(ctx context.Context, l List, parent uuid.UUID, create CreateFunc) (position int, err error) {
	ctx, span := startSpan(ctx, "ordering.Append",
		attribute.String("ordering.parent", parent.String()))
	defer func() { finish(span, err) }()

	if _, err = l.LockParent(ctx, parent); err != nil {
		return 0, err
	}

	n, err := l.Count(ctx, parent)
	if err != nil {
		return 0, err
	}

	if err = create(ctx, n); err != nil {
		return 0, err
	}
	return n, nil
}

// RemoveAt deletes item and closes the gap it leaves by shifting every later
// sibling up by one. It returns where the item was.
func RemoveAt(ctx context.Context, l List, item uuid.UUID) (removed Placement, err error) {
	ctx, span := startSpan(ctx, "ordering.RemoveAt",
		attribute.String("ordering.item", item.String()))
	defer func() { finish(span, err) }()

	seen, err := l.Locate(ctx, item)
	if err != nil {
		return Placement{}, err
	}

	if _, err = l.LockParent(ctx, seen.Parent); err != nil {
		return Placement{}, err
	}

	// Re-read under the lock; the position may have changed meanwhile.
	cur, err := relocate(ctx, l, item, seen.Parent)
	if err != nil {
		return Placement{}, err
	}

	if err = l.Remove(ctx, item); err != nil {
		return Placement{}, err
	}
	if err = l.Shift(ctx, cur.Parent, From(cur.Position+1), -1); err != nil {
		return Placement{}, err
	}

	return cur, nil
}

// MoveTo moves item to index under newParent and returns its final placement.
//
// Within one parent only the members between the old and new index shift, by
// one, towards the vacated slot. Across parents the old parent closes the gap
// and the new parent opens a slot at index. index must lie in [0, size] where
// size is Count(newParent), minus one when newParent is the current parent.
// Moving an item onto its own position changes nothing.
func MoveTo(ctx context.Context, l List, item, newParent uuid.UUID, index int) (moved Placement, err error) {
	ctx, span := startSpan(ctx, "ordering.MoveTo",
		attribute.String("ordering.item", item.String()),
		attribute.String("ordering.parent", newParent.String()),
		attribute.Int("ordering.index", index))
	defer func() { finish(span, err) }()

	if index < 0 {
		return Placement{}, rangeError(index, -1)
	}

	seen, err := l.Locate(ctx, item)
	if err != nil {
		return Placement{}, err
	}

	if err = lockParents(ctx, l, seen.Parent, newParent); err != nil {
		return Placement{}, err
	}

	cur, err := relocate(ctx, l, item, seen.Parent)
	if err != nil {
		return Placement{}, err
	}

	size, err := l.Count(ctx, newParent)
	if err != nil {
		return Placement{}, err
	}
	sameParent := cur.Parent == newParent
	if sameParent {
		size--
	}
	if index > size {
		return Placement{}, rangeError(index, size)
	}

	span.SetAttributes(
		attribute.Int("ordering.from_index", cur.Position),
		attribute.Bool("ordering.cross_parent", !sameParent))

	switch {
	case sameParent && cur.Position == index:
		return cur, nil
	case sameParent && cur.Position < index:
		err = l.Shift(ctx, cur.Parent, Span{From: cur.Position + 1, To: index}, -1)
	case sameParent:
		err = l.Shift(ctx, cur.Parent, Span{From: index, To: cur.Position - 1}, 1)
	default:
		if err = l.Shift(ctx, cur.Parent, From(cur.Position+1), -1); err != nil {
			return Placement{}, err
		}
		err = l.Shift(ctx, newParent, From(index), 1)
	}
	if err != nil {
		return Placement{}, err
	}

	if err = l.Place(ctx, item, newParent, index); err != nil {
		return Placement{}, err
	}

	return Placement{Parent: newParent, Position: index}, nil
}

// Reorder assigns position i to ids[i]. ids must contain every current member
// of parent exactly once and nothing else.
func Reorder(ctx context.Context, l List, parent uuid.UUID, ids []uuid.UUID) (err error) {
	ctx, span := startSpan(ctx, "ordering.Reorder",
		attribute.String("ordering.parent", parent.String()),
		attribute.Int("ordering.count", len(ids)))
	defer func() { finish(span, err) }()

	if _, err = l.LockParent(ctx, parent); err != nil {
		return err
	}

	members, err := l.Members(ctx, parent)
	if err != nil {
		return err
	}
	if err = checkPermutation(members, ids); err != nil {
		return err
	}

	for i, id := range ids {
		if members[i] == id {
			continue
		}
		if err = l.Place(ctx, id, parent, i); err != nil {
			return err
		}
	}
	return nil
}

func checkPermutation(members, ids []uuid.UUID) error {
	if len(ids) != len(members) {
		return fmt.Errorf("%w: got %d ids for %d members", ErrInvalidRange, len(ids), len(members))
	}

	current := make(map[uuid.UUID]bool, len(members))
	for _, id := range members {
		current[id] = false
	}
	for _, id := range ids {
		used, ok := current[id]
		if !ok {
			return fmt.Errorf("%w: %s is not a member", ErrInvalidRange, id)
		}
		if used {
			return fmt.Errorf("%w: %s listed twice", ErrInvalidRange, id)
		}
		current[id] = true
	}
	return nil
}

// lockParents locks a and b in ascending id order so two cross-parent moves
// in opposite directions cannot deadlock.
func lockParents(ctx context.Context, l List, a, b uuid.UUID) error {
	if a == b {
		_, err := l.LockParent(ctx, a)
		return err
	}
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	if _, err := l.LockParent(ctx, a); err != nil {
		return err
	}
	_, err := l.LockParent(ctx, b)
	return err
}

// relocate re-reads item after its parent was locked and fails if a
// concurrent writer moved it to another parent in between.
func relocate(ctx context.Context, l List, item, lockedParent uuid.UUID) (Placement, error) {
	cur, err := l.Locate(ctx, item)
	if err != nil {
		return Placement{}, err
	}
	if cur.Parent != lockedParent {
		return Placement{}, fmt.Errorf("%w: %s moved to another parent", store.ErrConcurrentConflict, item)
	}
	return cur, nil
}

func rangeError(index, max int) error {
	if max < 0 {
		return fmt.Errorf("%w: index %d is negative", ErrInvalidRange, index)
	}
	return fmt.Errorf("%w: index %d not in [0, %d]", ErrInvalidRange, index, max)
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
