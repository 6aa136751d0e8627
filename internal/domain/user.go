package domain

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Validation errors for User.
var (
	ErrEmptyUserID         = invalid("user ID cannot be empty")
	ErrEmptyEmail          = invalid("email cannot be empty")
	ErrInvalidEmail        = invalid("invalid email format")
	ErrEmptyUserName       = invalid("user name cannot be empty")
	ErrPasswordTooShort    = invalid("password must be at least 8 characters long")
	ErrPasswordTooLong     = invalid("password must be at most 72 characters long")
	ErrEmptyPassword       = invalid("password cannot be empty")
	ErrInvalidRole         = invalid("invalid role")
	ErrEmptyHashedPassword = invalid("hashed password cannot be empty")
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLength = 72
)

// User is a registered account.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Role           Role      `json:"role"`
	Password       string    `json:"-"` // plaintext, only set during registration
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUser creates a USER-role account. The caller hashes the password before
// storing it.
func NewUser(email, name, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      strings.TrimSpace(name),
		Role:      RoleUser,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}
	if u.Name == "" {
		return ErrEmptyUserName
	}
	if !u.Role.IsValid() {
		return ErrInvalidRole
	}

	if u.Password != "" {
		if len(u.Password) < minPasswordLength {
			return ErrPasswordTooShort
		}
		if len(u.Password) > maxPasswordLength {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// Actor returns the access-control identity of u.
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

// UserRef is the public projection of a user embedded in other resources.
type UserRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
