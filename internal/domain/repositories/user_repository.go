package repositories

import (
	"context"
	"errors"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
)

// ErrDuplicate is returned when a unique key (such as a user's email) already exists
var ErrDuplicate = errors.New("duplicate record")

// UserRepository defines the interface for user accounts
type UserRepository interface {
	// GetByID returns nil when no such user exists
	GetByID(ctx context.Context, userID string) (*entities.User, error)

	// GetByEmail returns nil when no such user exists
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// Create persists a new user, returning ErrDuplicate when the email is taken
	Create(ctx context.Context, user *entities.User) error

	// UpdateProfile overwrites the display name and picture
	UpdateProfile(ctx context.Context, userID, name string, picture *string) error
}

// SessionRepository defines the interface for login sessions
type SessionRepository interface {
	// Create persists a new session
	Create(ctx context.Context, session *entities.Session) error

	// GetByToken returns nil when the token is unknown
	GetByToken(ctx context.Context, token string) (*entities.Session, error)

	// Delete removes the session; deleting an unknown token is not an error
	Delete(ctx context.Context, token string) error
}
