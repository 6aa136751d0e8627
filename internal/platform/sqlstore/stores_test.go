package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

func TestUserStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	users := NewUserStore(f.db, bcrypt.MinCost)

	u, err := domain.NewUser("Ada@Example.com", "Ada", "correct-horse")
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, u))
	assert.Empty(t, u.Password, "plaintext is cleared after hashing")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte("correct-horse")))

	got, err := users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, domain.RoleUser, got.Role)

	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)

	dup, err := domain.NewUser("ada@example.com", "Other", "password123")
	require.NoError(t, err)
	assert.ErrorIs(t, users.Create(ctx, dup), store.ErrEmailExists)

	_, err = users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestProjectStoreListAndSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user("owner@example.com")
	other := f.user("other@example.com")

	for i := 0; i < 5; i++ {
		f.project(owner.ID, fmt.Sprintf("Alpha %d", i))
	}
	f.project(owner.ID, "Beta 100%")
	f.project(other.ID, "Alpha elsewhere")

	projects := NewProjectStore(f.db)

	items, total, err := projects.List(ctx, store.ProjectQuery{
		OwnerID: owner.ID,
		Page:    domain.Page{Number: 1, Size: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	assert.Len(t, items, 4)
	assert.Equal(t, owner.ID, items[0].Owner.ID)

	items, total, err = projects.List(ctx, store.ProjectQuery{
		OwnerID: owner.ID,
		Page:    domain.Page{Number: 2, Size: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, total)
	assert.Len(t, items, 2)

	items, total, err = projects.List(ctx, store.ProjectQuery{
		Search: "alpha",
		Page:   domain.Page{Number: 1, Size: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, 6, total, "no owner filter spans every owner")
	assert.Len(t, items, 6)

	items, total, err = projects.List(ctx, store.ProjectQuery{
		Search: "100%",
		Page:   domain.Page{Number: 1, Size: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total, "LIKE wildcards in the search are matched literally")
	require.Len(t, items, 1)
	assert.Equal(t, "Beta 100%", items[0].Name)

	_, total, err = projects.List(ctx, store.ProjectQuery{Search: "zzz", Page: domain.Page{Number: 1, Size: 10}})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestProjectStoreUpdateAndCascadeDelete(t *testing.T) {
	f := newBoardFixture(t, "Todo")
	ctx := context.Background()
	projects := NewProjectStore(f.db)
	f.tasks(f.cols[0].ID, f.owner.ID, "A")

	p, err := projects.GetByID(ctx, f.home.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.BoardCount)
	assert.Equal(t, domain.DefaultProjectColor, p.Color)

	desc := "updated"
	p.Name = "Renamed"
	p.Description = &desc
	require.NoError(t, projects.Update(ctx, p))

	p, err = projects.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", p.Name)
	require.NotNil(t, p.Description)
	assert.Equal(t, "updated", *p.Description)

	require.NoError(t, projects.Delete(ctx, p.ID))
	assert.ErrorIs(t, projects.Delete(ctx, p.ID), store.ErrProjectNotFound)

	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM tasks`).Scan(&n))
	assert.Zero(t, n, "deleting a project removes its boards, columns and tasks")
}

func TestOwnershipStore(t *testing.T) {
	f := newBoardFixture(t, "Todo")
	ctx := context.Background()
	owners := NewOwnershipStore(f.db)
	ids := f.tasks(f.cols[0].ID, f.owner.ID, "A")
	label, err := domain.NewLabel(f.home.ProjectID, "bug", "")
	require.NoError(t, err)
	require.NoError(t, NewLabelStore(f.db).Create(ctx, label))

	for name, lookup := range map[string]func() (uuid.UUID, error){
		"project": func() (uuid.UUID, error) { return owners.ProjectOwner(ctx, f.home.ProjectID) },
		"board":   func() (uuid.UUID, error) { return owners.BoardOwner(ctx, f.home.ID) },
		"column":  func() (uuid.UUID, error) { return owners.ColumnOwner(ctx, f.cols[0].ID) },
		"task":    func() (uuid.UUID, error) { return owners.TaskOwner(ctx, ids["A"]) },
		"label":   func() (uuid.UUID, error) { return owners.LabelOwner(ctx, label.ID) },
	} {
		owner, err := lookup()
		require.NoError(t, err, name)
		assert.Equal(t, f.owner.ID, owner, name)
	}

	_, err = owners.TaskOwner(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	_, err = owners.ColumnOwner(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrColumnNotFound)
}

func TestBoardStoreView(t *testing.T) {
	f := newBoardFixture(t, "Todo", "Doing", "Done")
	ctx := context.Background()
	assignee := f.user("dev@example.com")

	label, err := domain.NewLabel(f.home.ProjectID, "bug", "#ff0000")
	require.NoError(t, err)
	require.NoError(t, NewLabelStore(f.db).Create(ctx, label))

	f.tasks(f.cols[0].ID, f.owner.ID, "A", "B")
	ids := f.tasks(f.cols[1].ID, f.owner.ID, "C")

	tasks := NewTaskStore(f.db)
	c, err := tasks.GetByID(ctx, ids["C"])
	require.NoError(t, err)
	c.AssigneeID = uuid.NullUUID{UUID: assignee.ID, Valid: true}
	c.LabelID = uuid.NullUUID{UUID: label.ID, Valid: true}
	require.NoError(t, tasks.Update(ctx, c))

	view, err := NewBoardStore(f.db).View(ctx, f.home.ID)
	require.NoError(t, err)

	assert.Equal(t, f.home.ID, view.ID)
	assert.Equal(t, f.owner.ID, view.Project.OwnerID)
	require.Len(t, view.Columns, 3)
	assert.Equal(t, 3, view.ColumnCount)
	assert.Equal(t, "Todo", view.Columns[0].Name)
	require.Len(t, view.Columns[0].Tasks, 2)
	assert.Equal(t, "A", view.Columns[0].Tasks[0].Title)
	assert.Equal(t, "B", view.Columns[0].Tasks[1].Title)
	assert.NotNil(t, view.Columns[2].Tasks)
	assert.Empty(t, view.Columns[2].Tasks)

	got := view.Columns[1].Tasks[0]
	require.NotNil(t, got.Assignee)
	assert.Equal(t, assignee.Name, got.Assignee.Name)
	require.NotNil(t, got.Label)
	assert.Equal(t, "bug", got.Label.Name)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, f.owner.ID, got.CreatedBy.ID)

	require.Len(t, view.Labels, 1)
	assert.Equal(t, 1, view.Labels[0].TaskCount)

	_, err = NewBoardStore(f.db).View(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrBoardNotFound)
}

func TestBoardStoreRenameListDelete(t *testing.T) {
	f := newBoardFixture(t, "Todo")
	ctx := context.Background()
	boards := NewBoardStore(f.db)

	require.NoError(t, boards.Rename(ctx, f.home.ID, "Sprint 1"))
	list, err := boards.ListByProject(ctx, f.home.ProjectID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Sprint 1", list[0].Name)
	assert.Equal(t, 1, list[0].ColumnCount)

	require.NoError(t, boards.Delete(ctx, f.home.ID))
	_, err = boards.GetByID(ctx, f.home.ID)
	assert.ErrorIs(t, err, store.ErrBoardNotFound)
	assert.ErrorIs(t, boards.Rename(ctx, f.home.ID, "x"), store.ErrBoardNotFound)
}

func TestTaskStoreListFilters(t *testing.T) {
	f := newBoardFixture(t, "Todo", "Doing")
	ctx := context.Background()
	tasks := NewTaskStore(f.db)
	outsider := f.user("outsider@example.com")
	otherProject := f.project(outsider.ID, "Other")
	otherBoard := f.board(otherProject.ID)
	otherCol := f.columns(otherBoard.ID, "Backlog")[0]

	now := time.Now().UTC()
	yesterday := now.Add(-24 * time.Hour)
	nextWeek := now.Add(5 * 24 * time.Hour)

	create := func(columnID uuid.UUID, title string, priority domain.Priority, due *time.Time, desc *string) {
		t.Helper()
		task, err := domain.NewTask(columnID, f.owner.ID, domain.TaskFields{
			Title: title, Description: desc, Priority: priority, DueDate: due,
		})
		require.NoError(t, err)
		n, err := NewTaskList(f.db).Count(ctx, columnID)
		require.NoError(t, err)
		task.Position = n
		require.NoError(t, tasks.Insert(ctx, task))
	}
	typos := "Fix the typos in the README"
	create(f.cols[0].ID, "Fix login", domain.PriorityHigh, &yesterday, nil)
	create(f.cols[0].ID, "Write docs", domain.PriorityLow, &nextWeek, &typos)
	create(f.cols[1].ID, "Fix logout", domain.PriorityUrgent, nil, nil)
	create(otherCol.ID, "Fix elsewhere", domain.PriorityHigh, nil, nil)

	page := domain.Page{Number: 1, Size: 20}
	tests := []struct {
		name  string
		query store.TaskQuery
		want  int
	}{
		{name: "all", query: store.TaskQuery{Page: page}, want: 4},
		{name: "owner scoped", query: store.TaskQuery{OwnerID: f.owner.ID, Page: page}, want: 3},
		{name: "search", query: store.TaskQuery{Search: "FIX", Page: page}, want: 4},
		{name: "search description", query: store.TaskQuery{Search: "readme", Page: page}, want: 1},
		{name: "priority", query: store.TaskQuery{Priority: domain.PriorityHigh, Page: page}, want: 2},
		{name: "column", query: store.TaskQuery{ColumnID: f.cols[0].ID, Page: page}, want: 2},
		{name: "board", query: store.TaskQuery{BoardID: f.home.ID, Page: page}, want: 3},
		{name: "project", query: store.TaskQuery{ProjectID: otherProject.ID, Page: page}, want: 1},
		{name: "overdue", query: store.TaskQuery{DueTo: now, Page: page}, want: 1},
		{name: "due this week", query: store.TaskQuery{DueFrom: now, DueTo: now.Add(7 * 24 * time.Hour), Page: page}, want: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			items, total, err := tasks.List(ctx, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, total)
			assert.Len(t, items, tc.want)
		})
	}
}

func TestLabelStore(t *testing.T) {
	f := newBoardFixture(t, "Todo")
	ctx := context.Background()
	labels := NewLabelStore(f.db)

	bug, err := domain.NewLabel(f.home.ProjectID, "bug", "")
	require.NoError(t, err)
	require.NoError(t, labels.Create(ctx, bug))

	dup, err := domain.NewLabel(f.home.ProjectID, "bug", "#000000")
	require.NoError(t, err)
	assert.ErrorIs(t, labels.Create(ctx, dup), store.ErrLabelNameExists)

	feature, err := domain.NewLabel(f.home.ProjectID, "feature", "")
	require.NoError(t, err)
	require.NoError(t, labels.Create(ctx, feature))
	feature.Name = "bug"
	assert.ErrorIs(t, labels.Update(ctx, feature), store.ErrLabelNameExists)

	ids := f.tasks(f.cols[0].ID, f.owner.ID, "A")
	_, err = f.db.Exec(`UPDATE tasks SET label_id = $1 WHERE id = $2`, bug.ID, ids["A"])
	require.NoError(t, err)

	got, err := labels.GetByID(ctx, bug.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TaskCount)

	require.NoError(t, labels.Delete(ctx, bug.ID))
	task, err := NewTaskStore(f.db).GetByID(ctx, ids["A"])
	require.NoError(t, err)
	assert.False(t, task.LabelID.Valid, "deleting a label detaches it from tasks")
	assert.Nil(t, task.Label)

	list, err := labels.ListByProject(ctx, f.home.ProjectID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "feature", list[0].Name)
}

func TestNotificationStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user("reader@example.com")
	notifications := NewNotificationStore(f.db)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		link := "/boards/x"
		n, err := domain.NewNotification(u.ID, domain.NotificationTaskAssigned, "Task assigned", fmt.Sprintf("message %d", i), &link)
		require.NoError(t, err)
		n.CreatedAt = n.CreatedAt.Add(time.Duration(i) * time.Second)
		require.NoError(t, notifications.Create(ctx, n))
		ids = append(ids, n.ID)
	}

	items, total, unread, err := notifications.List(ctx, u.ID, domain.Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 3, unread)
	require.Len(t, items, 2)
	assert.Equal(t, "message 2", items[0].Message, "newest first")

	require.NoError(t, notifications.MarkRead(ctx, ids[0]))
	n, err := notifications.GetByID(ctx, ids[0])
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	changed, err := notifications.MarkAllRead(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	_, _, unread, err = notifications.List(ctx, u.ID, domain.Page{Number: 1, Size: 20})
	require.NoError(t, err)
	assert.Zero(t, unread)

	require.NoError(t, notifications.Delete(ctx, ids[1]))
	assert.ErrorIs(t, notifications.Delete(ctx, ids[1]), store.ErrNotificationNotFound)
	assert.ErrorIs(t, notifications.MarkRead(ctx, uuid.New()), store.ErrNotificationNotFound)
}
