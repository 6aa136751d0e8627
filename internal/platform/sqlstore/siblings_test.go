package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/ordering"
	"github.com/taskify/taskify-api/internal/store"
)

type boardFixture struct {
	*fixture
	owner *domain.User
	home  *domain.Board
	cols  []*domain.Column
}

func newBoardFixture(t *testing.T, columns ...string) *boardFixture {
	f := newFixture(t)
	u := f.user("owner@example.com")
	p := f.project(u.ID, "Project")
	b := f.board(p.ID)
	return &boardFixture{fixture: f, owner: u, home: b, cols: f.columns(b.ID, columns...)}
}

func TestTaskListMoveWithinColumn(t *testing.T) {
	f := newBoardFixture(t, "Todo")
	col := f.cols[0].ID
	ids := f.tasks(col, f.owner.ID, "A", "B", "C", "D")

	err := f.tx(func(ctx context.Context, tx *sql.Tx) error {
		_, err := ordering.MoveTo(ctx, NewTaskList(tx), ids["A"], col, 2)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "A", "D"}, f.titles(col))

	err = f.tx(func(ctx context.Context, tx *sql.Tx) error {
		_, err := ordering.MoveTo(ctx, NewTaskList(tx), ids["D"], col, 0)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "B", "C", "A"}, f.titles(col))
}

func TestTaskListMoveAcrossColumns(t *testing.T) {
	f := newBoardFixture(t, "Todo", "Doing")
	src, dst := f.cols[0].ID, f.cols[1].ID
	srcIDs := f.tasks(src, f.owner.ID, "M", "N")
	f.tasks(dst, f.owner.ID, "X", "Y", "Z")

	var moved ordering.Placement
	err := f.tx(func(ctx context.Context, tx *sql.Tx) error {
		var err error
		moved, err = ordering.MoveTo(ctx, NewTaskList(tx), srcIDs["M"], dst, 1)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, ordering.Placement{Parent: dst, Position: 1}, moved)
	assert.Equal(t, []string{"N"}, f.titles(src))
	assert.Equal(t, []string{"X", "M", "Y", "Z"}, f.titles(dst))

	// Both parents had their order version bumped.
	var srcVersion, dstVersion int64
	require.NoError(t, f.db.QueryRow(`SELECT task_order_version FROM board_columns WHERE id = $1`, src).Scan(&srcVersion))
	require.NoError(t, f.db.QueryRow(`SELECT task_order_version FROM board_columns WHERE id = $1`, dst).Scan(&dstVersion))
	assert.Equal(t, int64(1), srcVersion)
	assert.Equal(t, int64(1), dstVersion)
}

func TestTaskListRemoveClosesGap(t *testing.T) {
	f := newBoardFixture(t, "Todo")
	col := f.cols[0].ID
	ids := f.tasks(col, f.owner.ID, "A", "B", "C")

	err := f.tx(func(ctx context.Context, tx *sql.Tx) error {
		_, err := ordering.RemoveAt(ctx, NewTaskList(tx), ids["B"])
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, f.titles(col))
}

func TestTaskListInsertAtTop(t *testing.T) {
	f := newBoardFixture(t, "Todo")
	col := f.cols[0].ID
	f.tasks(col, f.owner.ID, "A", "B")

	err := f.tx(func(ctx context.Context, tx *sql.Tx) error {
		return ordering.InsertAt(ctx, NewTaskList(tx), col, 0, func(ctx context.Context, pos int) error {
			task, err := domain.NewTask(col, f.owner.ID, domain.TaskFields{Title: "N"})
			if err != nil {
				return err
			}
			task.Position = pos
			return NewTaskStore(tx).Insert(ctx, task)
		})
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"N", "A", "B"}, f.titles(col))
}

func TestFailedMoveRollsBackEveryShift(t *testing.T) {
	f := newBoardFixture(t, "Todo", "Doing")
	src, dst := f.cols[0].ID, f.cols[1].ID
	srcIDs := f.tasks(src, f.owner.ID, "A", "B", "C")
	f.tasks(dst, f.owner.ID, "X", "Y")
	boom := errors.New("boom")

	err := f.tx(func(ctx context.Context, tx *sql.Tx) error {
		if _, err := ordering.MoveTo(ctx, NewTaskList(tx), srcIDs["A"], dst, 1); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"A", "B", "C"}, f.titles(src))
	assert.Equal(t, []string{"X", "Y"}, f.titles(dst))
}

func TestTaskListNotFound(t *testing.T) {
	f := newBoardFixture(t, "Todo")
	col := f.cols[0].ID

	err := f.tx(func(ctx context.Context, tx *sql.Tx) error {
		_, err := ordering.MoveTo(ctx, NewTaskList(tx), uuid.New(), col, 0)
		return err
	})
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	ids := f.tasks(col, f.owner.ID, "A")
	err = f.tx(func(ctx context.Context, tx *sql.Tx) error {
		_, err := ordering.MoveTo(ctx, NewTaskList(tx), ids["A"], uuid.New(), 0)
		return err
	})
	assert.ErrorIs(t, err, store.ErrColumnNotFound)
}

func TestColumnListReorderAndRemove(t *testing.T) {
	f := newBoardFixture(t, "To Do", "In Progress", "Done")
	board := f.home.ID
	todo, doing, done := f.cols[0].ID, f.cols[1].ID, f.cols[2].ID
	f.tasks(doing, f.owner.ID, "T1", "T2")

	err := f.tx(func(ctx context.Context, tx *sql.Tx) error {
		return ordering.Reorder(ctx, NewColumnList(tx), board, []uuid.UUID{done, todo, doing})
	})
	require.NoError(t, err)

	cols, err := NewColumnStore(f.db).ListByBoard(context.Background(), board)
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.Equal(t, []string{"Done", "To Do", "In Progress"}, []string{cols[0].Name, cols[1].Name, cols[2].Name})

	err = f.tx(func(ctx context.Context, tx *sql.Tx) error {
		return ordering.Reorder(ctx, NewColumnList(tx), board, []uuid.UUID{done, todo})
	})
	assert.ErrorIs(t, err, ordering.ErrInvalidRange)

	err = f.tx(func(ctx context.Context, tx *sql.Tx) error {
		_, err := ordering.RemoveAt(ctx, NewColumnList(tx), todo)
		return err
	})
	require.NoError(t, err)

	cols, err = NewColumnStore(f.db).ListByBoard(context.Background(), board)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "Done", cols[0].Name)
	assert.Equal(t, 0, cols[0].Position)
	assert.Equal(t, "In Progress", cols[1].Name)
	assert.Equal(t, 1, cols[1].Position)
	assert.Equal(t, 2, cols[1].TaskCount)

	var version int64
	require.NoError(t, f.db.QueryRow(`SELECT column_order_version FROM boards WHERE id = $1`, board).Scan(&version))
	assert.Equal(t, int64(2), version, "committed operations bump the version; the rejected reorder rolled back")
}

func TestConcurrentMovesKeepPositionsDense(t *testing.T) {
	f := newBoardFixture(t, "Todo", "Doing")
	a, b := f.cols[0].ID, f.cols[1].ID
	idsA := f.tasks(a, f.owner.ID, "A0", "A1", "A2", "A3", "A4", "A5")
	idsB := f.tasks(b, f.owner.ID, "B0", "B1", "B2", "B3", "B4", "B5")

	var items []uuid.UUID
	for _, id := range idsA {
		items = append(items, id)
	}
	for _, id := range idsB {
		items = append(items, id)
	}

	var wg sync.WaitGroup
	for i, id := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			target := a
			if i%2 == 0 {
				target = b
			}
			for attempt := 0; attempt < 20; attempt++ {
				err := f.tx(func(ctx context.Context, tx *sql.Tx) error {
					_, err := ordering.MoveTo(ctx, NewTaskList(tx), id, target, 0)
					return err
				})
				if err == nil || !store.IsConflictError(err) {
					assert.NoError(t, err)
					return
				}
			}
			t.Errorf("move of %s kept conflicting", id)
		}()
	}
	wg.Wait()

	total := len(f.titles(a)) + len(f.titles(b))
	assert.Equal(t, len(items), total)
}
