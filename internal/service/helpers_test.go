package service_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/taskify/taskify-api/internal/app"
	"github.com/taskify/taskify-api/internal/config"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/mocks"
	"github.com/taskify/taskify-api/internal/platform/cache"
	"github.com/taskify/taskify-api/internal/service"
	"github.com/taskify/taskify-api/internal/service/auth"
	"github.com/taskify/taskify-api/internal/testdb"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

// env wires every service over a fresh database, a miniredis board cache
// and a recording event emitter.
type env struct {
	t      *testing.T
	ctx    context.Context
	db     *sql.DB
	stores service.Stores
	redis  *miniredis.Miniredis
	events *mocks.EventEmitter
	tokens auth.JWTService
	svc    app.Services
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testdb.Open(t)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)

	e := &env{
		t:      t,
		ctx:    context.Background(),
		db:     db,
		stores: app.NewStores(db, bcrypt.MinCost),
		redis:  mr,
		events: &mocks.EventEmitter{},
		tokens: tokens,
	}
	e.svc = app.NewServices(service.Deps{
		DB:        db,
		Stores:    e.stores,
		TxOptions: app.TxOptions(),
		Cache:     cache.NewBoardCache(client, time.Minute, logger),
		Events:    e.events,
		Logger:    logger,
	}, tokens, nil)
	return e
}

// user creates a user with role and returns it as an actor.
func (e *env) user(name string, role domain.Role) domain.Actor {
	e.t.Helper()
	u, err := domain.NewUser(name+"@example.com", name, "password123")
	require.NoError(e.t, err)
	u.Role = role
	require.NoError(e.t, e.stores.Users.Create(e.ctx, u))
	return u.Actor()
}

func (e *env) project(owner domain.Actor, name string) *domain.Project {
	e.t.Helper()
	p, err := e.svc.Projects.Create(e.ctx, owner, service.ProjectInput{Name: name})
	require.NoError(e.t, err)
	return p
}

// board creates a board with the default columns.
func (e *env) board(owner domain.Actor, projectID uuid.UUID) *domain.BoardView {
	e.t.Helper()
	view, err := e.svc.Boards.Create(e.ctx, owner, projectID, service.BoardInput{Name: "Sprint"})
	require.NoError(e.t, err)
	require.Len(e.t, view.Columns, len(domain.DefaultColumns))
	return view
}

// tasks creates tasks in column so that they end up ordered as titles.
func (e *env) tasks(owner domain.Actor, columnID uuid.UUID, titles ...string) map[string]uuid.UUID {
	e.t.Helper()
	ids := make(map[string]uuid.UUID, len(titles))
	for i := len(titles) - 1; i >= 0; i-- {
		task, err := e.svc.Tasks.Create(e.ctx, owner, service.TaskInput{ColumnID: columnID, Title: titles[i]})
		require.NoError(e.t, err)
		ids[titles[i]] = task.ID
	}
	return ids
}

// titles returns the task titles of a column in position order and checks
// that positions are exactly 0..n-1.
func (e *env) titles(columnID uuid.UUID) []string {
	e.t.Helper()
	rows, err := e.db.QueryContext(e.ctx,
		`SELECT title, position FROM tasks WHERE column_id = $1 ORDER BY position`, columnID)
	require.NoError(e.t, err)
	defer func() { _ = rows.Close() }()

	out := []string{}
	for i := 0; rows.Next(); i++ {
		var (
			title string
			pos   int
		)
		require.NoError(e.t, rows.Scan(&title, &pos))
		require.Equal(e.t, i, pos, "position of %q", title)
		out = append(out, title)
	}
	require.NoError(e.t, rows.Err())
	return out
}

// columnNames returns the column names of a board in position order and
// checks that positions are exactly 0..n-1.
func (e *env) columnNames(boardID uuid.UUID) []string {
	e.t.Helper()
	cols, err := e.stores.Columns.ListByBoard(e.ctx, boardID)
	require.NoError(e.t, err)
	out := make([]string, 0, len(cols))
	for i, c := range cols {
		require.Equal(e.t, i, c.Position, "position of %q", c.Name)
		out = append(out, c.Name)
	}
	return out
}

func (e *env) cached(boardID uuid.UUID) bool {
	return e.redis.Exists("board:view:" + boardID.String())
}

func ptr[T any](v T) *T {
	return &v
}
