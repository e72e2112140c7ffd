package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/domain/repositories"
)

// uniqueViolation is the PostgreSQL error code for unique_violation
const uniqueViolation = "23505"

var (
	_ repositories.UserRepository    = (*UserRepo)(nil)
	_ repositories.SessionRepository = (*SessionRepo)(nil)
)

// UserRepo implements UserRepository using PostgreSQL
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `user_id, email, name, picture, password_hash, created_at`

// GetByID retrieves a user by id
func (r *UserRepo) GetByID(ctx context.Context, userID string) (*entities.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
}

// GetByEmail retrieves a user by email
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg string) (*entities.User, error) {
	var user entities.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Create inserts a new user
func (r *UserRepo) Create(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (user_id, email, name, picture, password_hash, created_at)
		VALUES (:user_id, :email, :name, :picture, :password_hash, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdateProfile overwrites name and picture
func (r *UserRepo) UpdateProfile(ctx context.Context, userID, name string, picture *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET name = $2, picture = $3 WHERE user_id = $1`, userID, name, picture)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return nil
}

// SessionRepo implements SessionRepository using PostgreSQL
type SessionRepo struct {
	db *sqlx.DB
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *sqlx.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create inserts a session
func (r *SessionRepo) Create(ctx context.Context, s *entities.Session) error {
	query := `
		INSERT INTO user_sessions (session_token, user_id, expires_at, created_at)
		VALUES (:session_token, :user_id, :expires_at, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		if isUniqueViolation(err) {
			return repositories.ErrDuplicate
		}
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetByToken retrieves a session by its token
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*entities.Session, error) {
	var s entities.Session
	query := `SELECT session_token, user_id, expires_at, created_at FROM user_sessions WHERE session_token = $1`

	if err := r.db.GetContext(ctx, &s, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// Delete removes a session
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE session_token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
