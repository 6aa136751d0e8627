package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/store"
)

// LabelStore implements store.LabelStore.
type LabelStore struct {
	db store.DBTX
}

func NewLabelStore(db store.DBTX) *LabelStore {
	return &LabelStore{db: db}
}

var _ store.LabelStore = (*LabelStore)(nil)

func (s *LabelStore) Create(ctx context.Context, l *domain.Label) error {
	if err := l.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO labels (id, project_id, name, color, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.ProjectID, l.Name, l.Color, l.CreatedAt)
	if err != nil {
		return mapDuplicate(err, store.ErrLabelNameExists)
	}
	return nil
}

const labelSelect = `
	SELECT l.id, l.project_id, l.name, l.color, l.created_at,
	       (SELECT COUNT(*) FROM tasks t WHERE t.label_id = l.id)
	FROM labels l`

func (s *LabelStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Label, error) {
	l, err := scanLabel(s.db.QueryRowContext(ctx, labelSelect+` WHERE l.id = $1`, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrLabelNotFound)
	}
	return l, nil
}

func (s *LabelStore) Update(ctx context.Context, l *domain.Label) error {
	if err := l.Validate(); err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE labels SET name = $1, color = $2 WHERE id = $3`, l.Name, l.Color, l.ID)
	if err != nil {
		return mapDuplicate(err, store.ErrLabelNameExists)
	}
	return checkRowsAffected(result, store.ErrLabelNotFound)
}

func (s *LabelStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET label_id = NULL WHERE label_id = $1`, id); err != nil {
		return store.NewStoreError("label", "delete", "failed to detach label", MapError(err))
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM labels WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("label", "delete", "failed to delete label", MapError(err))
	}
	return checkRowsAffected(result, store.ErrLabelNotFound)
}

func (s *LabelStore) ListByProject(ctx context.Context, projectID uuid.UUID) ([]domain.Label, error) {
	rows, err := s.db.QueryContext(ctx,
		labelSelect+` WHERE l.project_id = $1 ORDER BY l.name`, projectID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	labels := []domain.Label{}
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return labels, nil
}

func (s *LabelStore) WithTx(tx *sql.Tx) store.LabelStore {
	return &LabelStore{db: tx}
}

func scanLabel(row rowScanner) (*domain.Label, error) {
	var l domain.Label
	if err := row.Scan(&l.ID, &l.ProjectID, &l.Name, &l.Color, &l.CreatedAt, &l.TaskCount); err != nil {
		return nil, err
	}
	return &l, nil
}
