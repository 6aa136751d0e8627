package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/store"
)

// ProjectStore implements store.ProjectStore.
type ProjectStore struct {
	db store.DBTX
}

func NewProjectStore(db store.DBTX) *ProjectStore {
	return &ProjectStore{db: db}
}

var _ store.ProjectStore = (*ProjectStore)(nil)

func (s *ProjectStore) Create(ctx context.Context, p *domain.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, owner_id, name, description, color, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.OwnerID, p.Name, nullString(p.Description), p.Color, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return store.NewStoreError("project", "create", "failed to insert project", MapError(err))
	}
	return nil
}

const projectSelect = `
	SELECT p.id, p.owner_id, p.name, p.description, p.color, p.created_at, p.updated_at,
	       u.name,
	       (SELECT COUNT(*) FROM boards b WHERE b.project_id = p.id)
	FROM projects p
	JOIN users u ON u.id = p.owner_id`

func (s *ProjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx, projectSelect+` WHERE p.id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		return nil, mapNotFound(err, store.ErrProjectNotFound)
	}
	return p, nil
}

func (s *ProjectStore) Update(ctx context.Context, p *domain.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = now()
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects SET name = $1, description = $2, color = $3, updated_at = $4
		WHERE id = $5`,
		p.Name, nullString(p.Description), p.Color, p.UpdatedAt, p.ID)
	if err != nil {
		return store.NewStoreError("project", "update", "failed to update project", MapError(err))
	}
	return checkRowsAffected(result, store.ErrProjectNotFound)
}

func (s *ProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return store.NewStoreError("project", "delete", "failed to delete project", MapError(err))
	}
	return checkRowsAffected(result, store.ErrProjectNotFound)
}

func (s *ProjectStore) List(ctx context.Context, q store.ProjectQuery) ([]domain.Project, int, error) {
	var f filter
	if q.OwnerID != uuid.Nil {
		f.add("p.owner_id = ?", q.OwnerID)
	}
	if q.Search != "" {
		f.add(`LOWER(p.name) LIKE LOWER(?) ESCAPE '\'`, containsPattern(q.Search))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM projects p` + f.where()
	if err := s.db.QueryRowContext(ctx, countQuery, f.args...).Scan(&total); err != nil {
		return nil, 0, MapError(err)
	}
	if total == 0 {
		return []domain.Project{}, 0, nil
	}

	where := f.where()
	limit := f.bind(q.Page.Size)
	offset := f.bind(q.Page.Offset())
	query := projectSelect + where +
		fmt.Sprintf(` ORDER BY p.updated_at DESC, p.id LIMIT %s OFFSET %s`, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, f.args...)
	if err != nil {
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	projects := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, MapError(err)
	}
	return projects, total, nil
}

func (s *ProjectStore) WithTx(tx *sql.Tx) store.ProjectStore {
	return &ProjectStore{db: tx}
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var (
		p         domain.Project
		desc      sql.NullString
		ownerName string
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &desc, &p.Color, &p.CreatedAt, &p.UpdatedAt,
		&ownerName, &p.BoardCount)
	if err != nil {
		return nil, err
	}
	p.Description = stringPtr(desc)
	p.Owner = &domain.UserRef{ID: p.OwnerID, Name: ownerName}
	return &p, nil
}

// OwnershipStore implements store.OwnershipStore by walking up to the
// owning project.
type OwnershipStore struct {
	db store.DBTX
}

func NewOwnershipStore(db store.DBTX) *OwnershipStore {
	return &OwnershipStore{db: db}
}

var _ store.OwnershipStore = (*OwnershipStore)(nil)

func (s *OwnershipStore) ProjectOwner(ctx context.Context, projectID uuid.UUID) (uuid.UUID, error) {
	return s.owner(ctx, `SELECT owner_id FROM projects WHERE id = $1`, projectID, store.ErrProjectNotFound)
}

func (s *OwnershipStore) BoardOwner(ctx context.Context, boardID uuid.UUID) (uuid.UUID, error) {
	return s.owner(ctx, `
		SELECT p.owner_id FROM boards b
		JOIN projects p ON p.id = b.project_id
		WHERE b.id = $1`, boardID, store.ErrBoardNotFound)
}

func (s *OwnershipStore) ColumnOwner(ctx context.Context, columnID uuid.UUID) (uuid.UUID, error) {
	return s.owner(ctx, `
		SELECT p.owner_id FROM board_columns c
		JOIN boards b ON b.id = c.board_id
		JOIN projects p ON p.id = b.project_id
		WHERE c.id = $1`, columnID, store.ErrColumnNotFound)
}

func (s *OwnershipStore) TaskOwner(ctx context.Context, taskID uuid.UUID) (uuid.UUID, error) {
	return s.owner(ctx, `
		SELECT p.owner_id FROM tasks t
		JOIN board_columns c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		JOIN projects p ON p.id = b.project_id
		WHERE t.id = $1`, taskID, store.ErrTaskNotFound)
}

func (s *OwnershipStore) LabelOwner(ctx context.Context, labelID uuid.UUID) (uuid.UUID, error) {
	return s.owner(ctx, `
		SELECT p.owner_id FROM labels l
		JOIN projects p ON p.id = l.project_id
		WHERE l.id = $1`, labelID, store.ErrLabelNotFound)
}

func (s *OwnershipStore) WithTx(tx *sql.Tx) store.OwnershipStore {
	return &OwnershipStore{db: tx}
}

func (s *OwnershipStore) owner(ctx context.Context, query string, id uuid.UUID, notFound error) (uuid.UUID, error) {
	var owner uuid.UUID
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&owner); err != nil {
		return uuid.Nil, mapNotFound(err, notFound)
	}
	return owner, nil
}
