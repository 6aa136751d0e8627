package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/taskify/taskify-api/internal/domain"
	"github.com/taskify/taskify-api/internal/service/auth"
	"github.com/taskify/taskify-api/internal/store"
)

// Session is the result of a successful registration or login.
type Session struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// UserService registers and authenticates users.
type UserService interface {
	// Register creates a USER-role account and signs it in.
	Register(ctx context.Context, email, name, password string) (*Session, error)

	// Login checks the credentials and issues a token.
	// Returns ErrInvalidCredentials on an unknown email or wrong password.
	Login(ctx context.Context, email, password string) (*Session, error)

	// GetUser retrieves a user by their ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type userService struct {
	base
	tokens   auth.JWTService
	verifier auth.PasswordVerifier
}

// NewUserService creates a UserService.
func NewUserService(d Deps, tokens auth.JWTService, verifier auth.PasswordVerifier) UserService {
	if verifier == nil {
		verifier = auth.NewBcryptVerifier()
	}
	return &userService{
		base:     newBase(d, "user_service"),
		tokens:   tokens,
		verifier: verifier,
	}
}

func (s *userService) Register(ctx context.Context, email, name, password string) (*Session, error) {
	user, err := domain.NewUser(email, name, password)
	if err != nil {
		return nil, s.fail(ctx, "register", "invalid user", err)
	}

	err = s.inTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.stores.Users.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		return nil, s.fail(ctx, "register", "failed to create user", err, slog.String("email", user.Email))
	}

	s.log(ctx).Info("user registered", slog.String("user_id", user.ID.String()))
	return s.session(ctx, user)
}

func (s *userService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.stores.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, s.fail(ctx, "login", "failed to load user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.log(ctx).Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	return s.session(ctx, user)
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.stores.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, "get_user", "failed to retrieve user", err, slog.String("user_id", userID.String()))
	}
	return user, nil
}

func (s *userService) session(ctx context.Context, user *domain.User) (*Session, error) {
	token, err := s.tokens.GenerateToken(ctx, user)
	if err != nil {
		return nil, s.fail(ctx, "issue_token", "failed to issue token", err)
	}
	return &Session{Token: token, User: user}, nil
}
