package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default colors.
const (
	DefaultProjectColor = "#6366f1"
	DefaultColumnColor  = "#6b7280"
	DefaultLabelColor   = "#6b7280"
)

var (
	ErrEmptyProjectName  = invalid("project name cannot be empty")
	ErrEmptyProjectOwner = invalid("project owner cannot be empty")
	ErrInvalidColor      = invalid("color must be a hex value like #1a2b3c")
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidColor reports whether c is a CSS hex color.
func ValidColor(c string) bool {
	return hexColor.MatchString(c)
}

// Project is the ownership root of boards and labels.
type Project struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Read-side projections, filled by list/get queries.
	Owner      *UserRef `json:"owner,omitempty"`
	BoardCount int      `json:"boardCount"`
}

// NewProject creates a project owned by ownerID.
func NewProject(ownerID uuid.UUID, name string, description *string, color string) (*Project, error) {
	if color == "" {
		color = DefaultProjectColor
	}
	now := time.Now().UTC()
	p := &Project{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(name),
		Description: description,
		Color:       color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks if the Project has valid data.
func (p *Project) Validate() error {
	if p.ID == uuid.Nil {
		return ErrInvalidID
	}
	if p.OwnerID == uuid.Nil {
		return ErrEmptyProjectOwner
	}
	if p.Name == "" {
		return ErrEmptyProjectName
	}
	if !ValidColor(p.Color) {
		return ErrInvalidColor
	}
	return nil
}
