package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyBoardName  = invalid("board name cannot be empty")
	ErrEmptyColumnName = invalid("column name cannot be empty")
	ErrEmptyParentID   = invalid("parent ID cannot be empty")
)

// ColumnTemplate describes a column created together with a new board.
type ColumnTemplate struct {
	Name  string
	Color string
}

// DefaultColumns are added to a board on creation unless the caller opts out.
var DefaultColumns = []ColumnTemplate{
	{Name: "To Do", Color: "#6b7280"},
	{Name: "In Progress", Color: "#3b82f6"},
	{Name: "Done", Color: "#22c55e"},
}

// Board groups ordered columns inside a project.
type Board struct {
	ID                 uuid.UUID `json:"id"`
	ProjectID          uuid.UUID `json:"projectId"`
	Name               string    `json:"name"`
	ColumnOrderVersion int64     `json:"columnOrderVersion"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`

	ColumnCount int `json:"columnCount"`
}

// NewBoard creates a board in projectID.
func NewBoard(projectID uuid.UUID, name string) (*Board, error) {
	now := time.Now().UTC()
	b := &Board{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks if the Board has valid data.
func (b *Board) Validate() error {
	if b.ID == uuid.Nil {
		return ErrInvalidID
	}
	if b.ProjectID == uuid.Nil {
		return ErrEmptyParentID
	}
	if b.Name == "" {
		return ErrEmptyBoardName
	}
	return nil
}

// Column is an ordered member of a board. Position is dense within the board.
type Column struct {
	ID               uuid.UUID `json:"id"`
	BoardID          uuid.UUID `json:"boardId"`
	Name             string    `json:"name"`
	Color            string    `json:"color"`
	Position         int       `json:"position"`
	TaskOrderVersion int64     `json:"taskOrderVersion"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	TaskCount int `json:"taskCount"`
}

// NewColumn creates an unplaced column; the ordering engine assigns Position.
func NewColumn(boardID uuid.UUID, name, color string) (*Column, error) {
	if color == "" {
		color = DefaultColumnColor
	}
	now := time.Now().UTC()
	c := &Column{
		ID:        uuid.New(),
		BoardID:   boardID,
		Name:      strings.TrimSpace(name),
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks if the Column has valid data.
func (c *Column) Validate() error {
	if c.ID == uuid.Nil {
		return ErrInvalidID
	}
	if c.BoardID == uuid.Nil {
		return ErrEmptyParentID
	}
	if c.Name == "" {
		return ErrEmptyColumnName
	}
	if !ValidColor(c.Color) {
		return ErrInvalidColor
	}
	if c.Position < 0 {
		return NewValidationError("position", "cannot be negative", ErrValidation)
	}
	return nil
}

// BoardView is the full read model of a board: columns and their tasks, both
// ordered by position, plus the project's labels.
type BoardView struct {
	Board
	Project ProjectRef   `json:"project"`
	Columns []ColumnView `json:"columns"`
	Labels  []Label      `json:"labels"`
}

// ColumnView is a column with its ordered tasks.
type ColumnView struct {
	Column
	Tasks []Task `json:"tasks"`
}

// ProjectRef is the public projection of a project embedded in other resources.
type ProjectRef struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"ownerId"`
	Name    string    `json:"name"`
	Color   string    `json:"color"`
}
