package service

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
)

// LabelInput holds the fields of a new label.
type LabelInput struct {
	Name  string `json:"name" validate:"required,max=50"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

// LabelPatch holds the fields of a label update. Unset fields are kept.
type LabelPatch struct {
	Name  domain.Optional[string] `json:"name"`
	Color domain.Optional[string] `json:"color"`
}

// LabelService manages the labels of a project.
type LabelService interface {
	ListByProject(ctx context.Context, actor domain.Actor, projectID uuid.UUID) ([]domain.Label, error)
	Create(ctx context.Context, actor domain.Actor, projectID uuid.UUID, in LabelInput) (*domain.Label, error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, patch LabelPatch) (*domain.Label, error)

	// Delete removes the label. A label still attached to tasks is only
	// removed with force, which detaches it first; otherwise a
	// *LabelInUseError is returned.
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID, force bool) error
}

type labelService struct {
	base
}

// NewLabelService creates a LabelService.
func NewLabelService(d Deps) LabelService {
	return &labelService{base: newBase(d, "label_service")}
}

func (s *labelService) ListByProject(ctx context.Context, actor domain.Actor, projectID uuid.UUID) ([]domain.Label, error) {
	if err := authorize(ctx, actor, s.policy, s.stores.Ownership.ProjectOwner, projectID); err != nil {
		return nil, s.fail(ctx, "list_labels", "project not accessible", err,
			slog.String("project_id", projectID.String()))
	}
	labels, err := s.stores.Labels.ListByProject(ctx, projectID)
	if err != nil {
		return nil, s.fail(ctx, "list_labels", "failed to list labels", err,
			slog.String("project_id", projectID.String()))
	}
	return labels, nil
}

func (s *labelService) Create(
	ctx context.Context,
	actor domain.Actor,
	projectID uuid.UUID,
	in LabelInput,
) (*domain.Label, error) {
	label, err := domain.NewLabel(projectID, in.Name, in.Color)
	if err != nil {
		return nil, s.fail(ctx, "create_label", "invalid label", err)
	}

	err = s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, s.policy, s.stores.Ownership.WithTx(tx).ProjectOwner, projectID); err != nil {
			return err
		}
		return s.stores.Labels.WithTx(tx).Create(ctx, label)
	})
	if err != nil {
		return nil, s.fail(ctx, "create_label", "failed to create label", err,
			slog.String("project_id", projectID.String()),
			slog.String("name", label.Name))
	}

	s.evictProjectBoards(ctx, projectID)
	return label, nil
}

func (s *labelService) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, patch LabelPatch) (*domain.Label, error) {
	var label *domain.Label
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, s.policy, s.stores.Ownership.WithTx(tx).LabelOwner, id); err != nil {
			return err
		}
		labels := s.stores.Labels.WithTx(tx)
		var err error
		if label, err = labels.GetByID(ctx, id); err != nil {
			return err
		}
		if patch.Name.Set {
			label.Name = strings.TrimSpace(patch.Name.Value)
		}
		if patch.Color.Set {
			label.Color = patch.Color.Value
		}
		return labels.Update(ctx, label)
	})
	if err != nil {
		return nil, s.fail(ctx, "update_label", "failed to update label", err, slog.String("label_id", id.String()))
	}

	s.evictProjectBoards(ctx, label.ProjectID)
	return label, nil
}

func (s *labelService) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID, force bool) error {
	var label *domain.Label
	err := s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := authorize(ctx, actor, s.policy, s.stores.Ownership.WithTx(tx).LabelOwner, id); err != nil {
			return err
		}
		labels := s.stores.Labels.WithTx(tx)
		var err error
		if label, err = labels.GetByID(ctx, id); err != nil {
			return err
		}
		if label.TaskCount > 0 && !force {
			return &LabelInUseError{TaskCount: label.TaskCount}
		}
		return labels.Delete(ctx, id)
	})
	if err != nil {
		return s.fail(ctx, "delete_label", "failed to delete label", err, slog.String("label_id", id.String()))
	}

	s.evictProjectBoards(ctx, label.ProjectID)
	s.log(ctx).Info("label deleted",
		slog.String("label_id", id.String()),
		slog.Int("detached_tasks", label.TaskCount))
	return nil
}
