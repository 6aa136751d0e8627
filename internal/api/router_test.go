package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskify/taskify-api/internal/api"
	"github.com/taskify/taskify-api/internal/app"
	"github.com/taskify/taskify-api/internal/config"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/mocks"
	"github.com/taskify/taskify-api/internal/service"
	"github.com/taskify/taskify-api/internal/service/auth"
	"github.com/taskify/taskify-api/internal/testdb"
	"golang.org/x/crypto/bcrypt"
)

type server struct {
	t      *testing.T
	srv    *httptest.Server
	events *mocks.EventEmitter
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testdb.Open(t)
	tokens, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "router-test-secret-at-least-32-characters",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	events := &mocks.EventEmitter{}
	services := app.NewServices(service.Deps{
		DB:        db,
		Stores:    app.NewStores(db, bcrypt.MinCost),
		TxOptions: app.TxOptions(),
		Events:    events,
		Logger:    logger,
	}, tokens, nil)

	srv := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Services: services,
		Tokens:   tokens,
		DB:       db,
		Logger:   logger,
	}))
	t.Cleanup(srv.Close)
	return &server{t: t, srv: srv, events: events}
}

// do sends a JSON request and decodes the response into out when it is
// non-nil. It returns the status code.
func (s *server) do(method, path, token string, body, out any) int {
	s.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, s.srv.URL+path, rd)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.srv.Client().Do(req)
	require.NoError(s.t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out), "%s %s", method, path)
	}
	return resp.StatusCode
}

func (s *server) register(name string) (string, uuid.UUID) {
	s.t.Helper()
	var resp api.AuthResponse
	status := s.do(http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Email:    name + "@example.com",
		Name:     name,
		Password: "password123",
	}, &resp)
	require.Equal(s.t, http.StatusCreated, status)
	return resp.Token, resp.User.ID
}

func (s *server) taskTitles(token string, boardID uuid.UUID, column int) []string {
	s.t.Helper()
	var view domain.BoardView
	require.Equal(s.t, http.StatusOK, s.do(http.MethodGet, "/api/boards/"+boardID.String(), token, nil, &view))
	out := []string{}
	for i, task := range view.Columns[column].Tasks {
		require.Equal(s.t, i, task.Position)
		out = append(out, task.Title)
	}
	return out
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)
	token, id := s.register("ana")

	var login api.AuthResponse
	status := s.do(http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: "ANA@example.com", Password: "password123"}, &login)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, id, login.User.ID)

	var me map[string]any
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/auth/me", token, nil, &me))
	assert.Equal(t, "ana@example.com", me["email"])
	assert.NotContains(t, me, "password")
	assert.NotContains(t, me, "hashedPassword")

	var errBody map[string]any
	assert.Equal(t, http.StatusUnauthorized,
		s.do(http.MethodPost, "/api/auth/login", "", api.LoginRequest{Email: "ana@example.com", Password: "nope"}, &errBody))
	assert.Equal(t, "Invalid credentials", errBody["error"])

	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Email: "ana@example.com", Name: "Ana", Password: "password123",
	}, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Email: "bo@example.com", Name: "Bo", Password: "short",
	}, nil))

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/projects", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/projects", "garbage", nil, nil))
}

func TestBoardWorkflow(t *testing.T) {
	s := newServer(t)
	token, _ := s.register("ana")

	var project domain.Project
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/projects", token, map[string]any{"name": "Web"}, &project))

	var board domain.BoardView
	require.Equal(t, http.StatusCreated,
		s.do(http.MethodPost, fmt.Sprintf("/api/projects/%s/boards", project.ID), token, map[string]any{"name": "Sprint"}, &board))
	require.Len(t, board.Columns, 3)
	todo, doing := board.Columns[0].ID, board.Columns[1].ID

	for _, title := range []string{"D", "C", "B", "A"} {
		require.Equal(t, http.StatusCreated,
			s.do(http.MethodPost, "/api/tasks", token, map[string]any{"columnId": todo, "title": title}, nil))
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, s.taskTitles(token, board.ID, 0))

	var view domain.BoardView
	s.do(http.MethodGet, "/api/boards/"+board.ID.String(), token, nil, &view)
	a := view.Columns[0].Tasks[0].ID
	d := view.Columns[0].Tasks[3].ID

	var moved domain.Task
	require.Equal(t, http.StatusOK,
		s.do(http.MethodPatch, "/api/tasks/"+a.String()+"/move", token, service.TaskMove{ColumnID: todo, Position: 2}, &moved))
	assert.Equal(t, 2, moved.Position)
	assert.Equal(t, []string{"B", "C", "A", "D"}, s.taskTitles(token, board.ID, 0))

	s.do(http.MethodPatch, "/api/tasks/"+d.String()+"/move", token, service.TaskMove{ColumnID: todo, Position: 0}, nil)
	assert.Equal(t, []string{"D", "B", "C", "A"}, s.taskTitles(token, board.ID, 0))

	var errBody map[string]any
	assert.Equal(t, http.StatusBadRequest,
		s.do(http.MethodPatch, "/api/tasks/"+d.String()+"/move", token, service.TaskMove{ColumnID: todo, Position: 4}, &errBody))
	assert.Equal(t, "Position out of range", errBody["error"])

	s.do(http.MethodPatch, "/api/tasks/"+d.String()+"/move", token, service.TaskMove{ColumnID: doing, Position: 0}, nil)
	assert.Equal(t, []string{"B", "C", "A"}, s.taskTitles(token, board.ID, 0))
	assert.Equal(t, []string{"D"}, s.taskTitles(token, board.ID, 1))

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/tasks/"+a.String(), token, nil, nil))
	assert.Equal(t, []string{"B", "C"}, s.taskTitles(token, board.ID, 0))

	var col domain.Column
	require.Equal(t, http.StatusCreated,
		s.do(http.MethodPost, "/api/boards/"+board.ID.String()+"/columns", token, map[string]any{"name": "Review"}, &col))
	assert.Equal(t, 3, col.Position)

	var cols []domain.Column
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/boards/"+board.ID.String()+"/columns/reorder", token,
		api.ReorderColumnsRequest{ColumnIDs: []uuid.UUID{col.ID, todo, doing, board.Columns[2].ID}}, &cols))
	require.Len(t, cols, 4)
	assert.Equal(t, "Review", cols[0].Name)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/boards/"+board.ID.String()+"/columns/reorder", token,
		api.ReorderColumnsRequest{ColumnIDs: []uuid.UUID{col.ID, todo}}, nil))

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/columns/"+todo.String(), token, nil, nil))
	var after []domain.Column
	s.do(http.MethodGet, "/api/boards/"+board.ID.String()+"/columns", token, nil, &after)
	require.Len(t, after, 3)
	for i, c := range after {
		assert.Equal(t, i, c.Position)
	}
}

func TestAccessAndLookupErrors(t *testing.T) {
	s := newServer(t)
	ana, _ := s.register("ana")
	bo, _ := s.register("bo")

	var project domain.Project
	s.do(http.MethodPost, "/api/projects", ana, map[string]any{"name": "Private"}, &project)

	var errBody map[string]any
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/projects/"+project.ID.String(), bo, nil, &errBody))
	assert.Equal(t, "Access denied", errBody["error"])
	assert.NotEmpty(t, errBody["traceId"])

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/boards/"+uuid.NewString(), ana, nil, &errBody))
	assert.Equal(t, "Board not found", errBody["error"])

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/boards/not-a-uuid", ana, nil, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/tasks?priority=SOON", ana, nil, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/tasks?dueDate=someday", ana, nil, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/labels", ana, nil, nil))
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/projects", ana, map[string]any{"color": "#fff"}, nil))
}

func TestLabelDeleteNeedsConfirmation(t *testing.T) {
	s := newServer(t)
	token, _ := s.register("ana")

	var project domain.Project
	s.do(http.MethodPost, "/api/projects", token, map[string]any{"name": "Web"}, &project)
	var board domain.BoardView
	s.do(http.MethodPost, fmt.Sprintf("/api/projects/%s/boards", project.ID), token, map[string]any{"name": "Sprint"}, &board)

	var label domain.Label
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/labels", token,
		map[string]any{"projectId": project.ID, "name": "bug", "color": "#ef4444"}, &label))
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/labels", token,
		map[string]any{"projectId": project.ID, "name": "bug"}, nil))

	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/tasks", token,
		map[string]any{"columnId": board.Columns[0].ID, "title": "Crash", "labelId": label.ID}, nil))

	var labels []domain.Label
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/labels?projectId="+project.ID.String(), token, nil, &labels))
	require.Len(t, labels, 1)
	assert.Equal(t, 1, labels[0].TaskCount)

	var conflict map[string]any
	require.Equal(t, http.StatusConflict, s.do(http.MethodDelete, "/api/labels/"+label.ID.String(), token, nil, &conflict))
	assert.Equal(t, float64(1), conflict["taskCount"])
	assert.Equal(t, true, conflict["requiresConfirmation"])

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/labels/"+label.ID.String()+"?force=true", token, nil, nil))
	s.do(http.MethodGet, "/api/labels?projectId="+project.ID.String(), token, nil, &labels)
	assert.Empty(t, labels)
}

func TestTaskAssignmentEmitsEvent(t *testing.T) {
	s := newServer(t)
	ana, _ := s.register("ana")
	_, boID := s.register("bo")

	var project domain.Project
	s.do(http.MethodPost, "/api/projects", ana, map[string]any{"name": "Web"}, &project)
	var board domain.BoardView
	s.do(http.MethodPost, fmt.Sprintf("/api/projects/%s/boards", project.ID), ana, map[string]any{"name": "Sprint"}, &board)

	var task domain.Task
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/tasks", ana,
		map[string]any{"columnId": board.Columns[0].ID, "title": "Ship", "assigneeId": boID}, &task))

	require.Len(t, s.events.Events(), 1)
	assert.Equal(t, "task.assigned", s.events.Events()[0].Type)

	var list domain.PageResult[domain.Task]
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/tasks?q=ship&boardId="+board.ID.String(), ana, nil, &list))
	assert.Equal(t, 1, list.Total)
}

func TestNotificationsEndpoints(t *testing.T) {
	s := newServer(t)
	token, _ := s.register("ana")

	var page service.NotificationPage
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/notifications", token, nil, &page))
	assert.Zero(t, page.UnreadCount)
	assert.Equal(t, 20, page.PageSize)

	var marked api.MarkAllReadResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodPatch, "/api/notifications/read-all", token, nil, &marked))
	assert.Zero(t, marked.Updated)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPatch, "/api/notifications/"+uuid.NewString()+"/read", token, nil, nil))
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	var resp api.HealthResponse
	require.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", "", nil, &resp))
	assert.Equal(t, "ok", resp.Status)
}
