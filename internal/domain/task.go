package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority ranks the urgency of a task.
type Priority string

// Supported priorities.
const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// IsValid reports whether p is a supported priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

var (
	ErrEmptyTaskTitle   = invalid("task title cannot be empty")
	ErrInvalidPriority  = invalid("invalid priority")
	ErrEmptyTaskCreator = invalid("task creator cannot be empty")
)

// Task is an ordered member of a column. Position is dense within the column.
type Task struct {
	ID          uuid.UUID     `json:"id"`
	ColumnID    uuid.UUID     `json:"columnId"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Position    int           `json:"position"`
	Priority    Priority      `json:"priority"`
	DueDate     *time.Time    `json:"dueDate"`
	CreatedByID uuid.UUID     `json:"createdById"`
	AssigneeID  uuid.NullUUID `json:"assigneeId"`
	LabelID     uuid.NullUUID `json:"labelId"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Read-side projections.
	CreatedBy *UserRef `json:"createdBy,omitempty"`
	Assignee  *UserRef `json:"assignee,omitempty"`
	Label     *Label   `json:"label,omitempty"`
}

// TaskFields are the user-editable attributes of a task.
type TaskFields struct {
	Title       string
	Description *string
	Priority    Priority
	DueDate     *time.Time
	AssigneeID  uuid.NullUUID
	LabelID     uuid.NullUUID
}

// NewTask creates an unplaced task; the ordering engine assigns Position.
func NewTask(columnID, createdByID uuid.UUID, fields TaskFields) (*Task, error) {
	if fields.Priority == "" {
		fields.Priority = PriorityMedium
	}
	now := time.Now().UTC()
	t := &Task{
		ID:          uuid.New(),
		ColumnID:    columnID,
		Title:       strings.TrimSpace(fields.Title),
		Description: fields.Description,
		Priority:    fields.Priority,
		DueDate:     fields.DueDate,
		CreatedByID: createdByID,
		AssigneeID:  fields.AssigneeID,
		LabelID:     fields.LabelID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrInvalidID
	}
	if t.ColumnID == uuid.Nil {
		return ErrEmptyParentID
	}
	if t.Title == "" {
		return ErrEmptyTaskTitle
	}
	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if t.CreatedByID == uuid.Nil {
		return ErrEmptyTaskCreator
	}
	if t.Position < 0 {
		return NewValidationError("position", "cannot be negative", ErrValidation)
	}
	return nil
}

// DueFilter selects tasks by due date relative to now.
type DueFilter string

const (
	DueOverdue DueFilter = "overdue"
	DueToday   DueFilter = "today"
	DueWeek    DueFilter = "week"
)

// IsValid reports whether f is empty or a supported filter.
func (f DueFilter) IsValid() bool {
	switch f {
	case "", DueOverdue, DueToday, DueWeek:
		return true
	}
	return false
}

// Window returns the half-open [from, to) range f selects at now. A zero from
// means unbounded below.
func (f DueFilter) Window(now time.Time) (from, to time.Time) {
	switch f {
	case DueOverdue:
		return time.Time{}, now
	case DueToday:
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 0, 1)
	case DueWeek:
		return now, now.Add(7 * 24 * time.Hour)
	}
	return time.Time{}, time.Time{}
}
