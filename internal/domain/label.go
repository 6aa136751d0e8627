package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyLabelName = invalid("label name cannot be empty")

// Label categorizes tasks within a project. Names are unique per project.
type Label struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"projectId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`

	TaskCount int `json:"taskCount"`
}

// NewLabel creates a label in projectID.
func NewLabel(projectID uuid.UUID, name, color string) (*Label, error) {
	if color == "" {
		color = DefaultLabelColor
	}
	l := &Label{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      strings.TrimSpace(name),
		Color:     color,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks if the Label has valid data.
func (l *Label) Validate() error {
	if l.ID == uuid.Nil {
		return ErrInvalidID
	}
	if l.ProjectID == uuid.Nil {
		return ErrEmptyParentID
	}
	if l.Name == "" {
		return ErrEmptyLabelName
	}
	if !ValidColor(l.Color) {
		return ErrInvalidColor
	}
	return nil
}
