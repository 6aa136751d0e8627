package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/platform/logger"
	"github.com/taskify/taskify-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// UserStore implements store.UserStore.
type UserStore struct {
	db         store.DBTX
	bcryptCost int
}

// NewUserStore creates a UserStore. bcryptCost outside bcrypt's accepted
// range falls back to bcrypt.DefaultCost.
func NewUserStore(db store.DBTX, bcryptCost int) *UserStore {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserStore{db: db, bcryptCost: bcryptCost}
}

var _ store.UserStore = (*UserStore)(nil)

// Create validates user, hashes its plaintext password and inserts it.
// The plaintext is cleared on success.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	if err := user.Validate(); err != nil {
		return err
	}
	if user.Password == "" {
		return domain.ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.Name, string(user.Role), string(hash),
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		err = mapDuplicate(err, store.ErrEmailExists)
		log.Warn("failed to insert user",
			slog.String("user_id", user.ID.String()),
			slog.String("error", err.Error()))
		return err
	}

	user.HashedPassword = string(hash)
	user.Password = ""
	return nil
}

const userColumns = `id, email, name, role, hashed_password, created_at, updated_at`

func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail looks the email up as stored, lower-cased.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *UserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &UserStore{db: tx, bcryptCost: s.bcryptCost}
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u    domain.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.HashedPassword, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapNotFound(err, store.ErrUserNotFound)
	}
	u.Role = domain.Role(role)
	return &u, nil
}
