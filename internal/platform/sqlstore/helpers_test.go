package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/store"
	"github.com/taskify/taskify-api/internal/testdb"
	"golang.org/x/crypto/bcrypt"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return testdb.Open(t)
}

// fixture builds rows through the stores under test.
type fixture struct {
	t  *testing.T
	db *sql.DB
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, db: newTestDB(t)}
}

func (f *fixture) user(email string) *domain.User {
	f.t.Helper()
	u, err := domain.NewUser(email, "User "+email, "password123")
	require.NoError(f.t, err)
	require.NoError(f.t, NewUserStore(f.db, bcrypt.MinCost).Create(context.Background(), u))
	return u
}

func (f *fixture) project(owner uuid.UUID, name string) *domain.Project {
	f.t.Helper()
	p, err := domain.NewProject(owner, name, nil, "")
	require.NoError(f.t, err)
	require.NoError(f.t, NewProjectStore(f.db).Create(context.Background(), p))
	return p
}

func (f *fixture) board(projectID uuid.UUID) *domain.Board {
	f.t.Helper()
	b, err := domain.NewBoard(projectID, "Board")
	require.NoError(f.t, err)
	require.NoError(f.t, NewBoardStore(f.db).Create(context.Background(), b))
	return b
}

// columns inserts columns named names at positions 0..n-1.
func (f *fixture) columns(boardID uuid.UUID, names ...string) []*domain.Column {
	f.t.Helper()
	out := make([]*domain.Column, 0, len(names))
	for i, name := range names {
		c, err := domain.NewColumn(boardID, name, "")
		require.NoError(f.t, err)
		c.Position = i
		require.NoError(f.t, NewColumnStore(f.db).Insert(context.Background(), c))
		out = append(out, c)
	}
	return out
}

// tasks inserts tasks titled titles at positions 0..n-1 and returns their ids
// keyed by title.
func (f *fixture) tasks(columnID, creator uuid.UUID, titles ...string) map[string]uuid.UUID {
	f.t.Helper()
	ids := make(map[string]uuid.UUID, len(titles))
	for i, title := range titles {
		task, err := domain.NewTask(columnID, creator, domain.TaskFields{Title: title})
		require.NoError(f.t, err)
		task.Position = i
		require.NoError(f.t, NewTaskStore(f.db).Insert(context.Background(), task))
		ids[title] = task.ID
	}
	return ids
}

// titles returns the task titles of a column in position order and checks
// that positions are exactly 0..n-1.
func (f *fixture) titles(columnID uuid.UUID) []string {
	f.t.Helper()
	rows, err := f.db.Query(`SELECT title, position FROM tasks WHERE column_id = $1 ORDER BY position`, columnID)
	require.NoError(f.t, err)
	defer func() { _ = rows.Close() }()

	out := []string{}
	for i := 0; rows.Next(); i++ {
		var (
			title string
			pos   int
		)
		require.NoError(f.t, rows.Scan(&title, &pos))
		require.Equal(f.t, i, pos, fmt.Sprintf("position of %q", title))
		out = append(out, title)
	}
	require.NoError(f.t, rows.Err())
	return out
}

// tx runs fn in a transaction with the commit error mapper the services use.
func (f *fixture) tx(fn func(ctx context.Context, tx *sql.Tx) error) error {
	return store.RunInTransaction(context.Background(), f.db, fn, store.WithCommitErrorMapper(MapError))
}
