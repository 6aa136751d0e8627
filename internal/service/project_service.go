package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/store"
)

// ProjectInput holds the fields of a new project.
type ProjectInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Color       string  `json:"color" validate:"omitempty,hexcolor"`
}

// ProjectPatch holds the fields of a project update. Unset fields are kept.
type ProjectPatch struct {
	Name        domain.Optional[string]  `json:"name"`
	Description domain.Optional[*string] `json:"description"`
	Color       domain.Optional[string]  `json:"color"`
}

// ProjectListParams selects one page of projects.
type ProjectListParams struct {
	Page     int
	PageSize int
	Search   string
}

// ProjectService manages projects, the ownership roots of boards and labels.
type ProjectService interface {
	// List returns the projects visible to actor. USER actors only see
	// their own projects.
	List(ctx context.Context, actor domain.Actor, params ProjectListParams) (domain.PageResult[domain.Project], error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Project, error)
	Create(ctx context.Context, actor domain.Actor, in ProjectInput) (*domain.Project, error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, patch ProjectPatch) (*domain.Project, error)

	// Delete removes the project with all of its boards and labels. Only the
	// owner or an ADMIN may delete.
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

type projectService struct {
	base
}

// NewProjectService creates a ProjectService.
func NewProjectService(d Deps) ProjectService {
	return &projectService{base: newBase(d, "project_service")}
}

func (s *projectService) List(
	ctx context.Context,
	actor domain.Actor,
	params ProjectListParams,
) (domain.PageResult[domain.Project], error) {
	page := domain.NormalizePage(params.Page, params.PageSize, defaultProjectPageSize, maxPageSize)
	q := store.ProjectQuery{
		Search: strings.TrimSpace(params.Search),
		Page:   page,
	}
	if !actor.Role.Privileged() {
		q.OwnerID = actor.UserID
	}

	projects, total, err := s.stores.Projects.List(ctx, q)
	if err != nil {
		return domain.PageResult[domain.Project]{}, s.fail(ctx, "list_projects", "failed to list projects", err)
	}
	return domain.NewPageResult(projects, page, total), nil
}

func (s *projectService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Project, error) {
	project, err := s.stores.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, "get_project", "failed to retrieve project", err,
			slog.String("project_id", id.String()))
	}
	if !s.policy(actor, project.OwnerID) {
		return nil, s.fail(ctx, "get_project", "project not accessible", ErrForbidden,
			slog.String("project_id", id.String()))
	}
	return project, nil
}

func (s *projectService) Create(ctx context.Context, actor domain.Actor, in ProjectInput) (*domain.Project, error) {
	project, err := domain.NewProject(actor.UserID, in.Name, trimOptional(in.Description), in.Color)
	if err != nil {
		return nil, s.fail(ctx, "create_project", "invalid project", err)
	}

	err = s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.stores.Projects.WithTx(tx).Create(ctx, project)
	})
	if err != nil {
		return nil, s.fail(ctx, "create_project", "failed to create project", err)
	}

	s.log(ctx).Info("project created",
		slog.String("project_id", project.ID.String()),
		slog.String("owner_id", actor.UserID.String()))
	return s.reload(ctx, "create_project", project.ID)
}

func (s *projectService) Update(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
	patch ProjectPatch,
) (*domain.Project, error) {
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, s.policy, s.stores.Ownership.WithTx(tx).ProjectOwner, id); err != nil {
			return err
		}
		projects := s.stores.Projects.WithTx(tx)
		project, err := projects.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if patch.Name.Set {
			project.Name = strings.TrimSpace(patch.Name.Value)
		}
		if patch.Description.Set {
			project.Description = trimOptional(patch.Description.Value)
		}
		if patch.Color.Set {
			project.Color = patch.Color.Value
		}
		return projects.Update(ctx, project)
	})
	if err != nil {
		return nil, s.fail(ctx, "update_project", "failed to update project", err,
			slog.String("project_id", id.String()))
	}

	s.evictProjectBoards(ctx, id)
	return s.reload(ctx, "update_project", id)
}

// reload fetches a project with its read-side projections after a write.
func (s *projectService) reload(ctx context.Context, op string, id uuid.UUID) (*domain.Project, error) {
	project, err := s.stores.Projects.GetByID(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, op, "failed to reload project", err, slog.String("project_id", id.String()))
	}
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	var boardIDs []uuid.UUID
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, domain.CanDelete, s.stores.Ownership.WithTx(tx).ProjectOwner, id); err != nil {
			return err
		}
		boards, err := s.stores.Boards.WithTx(tx).ListByProject(ctx, id)
		if err != nil {
			return err
		}
		for _, b := range boards {
			boardIDs = append(boardIDs, b.ID)
		}
		return s.stores.Projects.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return s.fail(ctx, "delete_project", "failed to delete project", err,
			slog.String("project_id", id.String()))
	}

	s.cache.Evict(ctx, boardIDs...)
	s.log(ctx).Info("project deleted",
		slog.String("project_id", id.String()),
		slog.Int("boards", len(boardIDs)))
	return nil
}

// trimOptional trims s and maps blank text to nil.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
