package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bimakw/portfolio-tracker/internal/domain/entities"
	"github.com/bimakw/portfolio-tracker/internal/domain/repositories"
	"github.com/bimakw/portfolio-tracker/internal/infrastructure/authprovider"
)

const minPasswordLength = 6

// SessionProvider exchanges a one-time session id for the user's profile
type SessionProvider interface {
	SessionData(ctx context.Context, sessionID string) (*authprovider.SessionData, error)
}

// AuthService manages accounts and login sessions
type AuthService struct {
	userRepo    repositories.UserRepository
	sessionRepo repositories.SessionRepository
	provider    SessionProvider
	sessionTTL  time.Duration
	hashCost    int
	logger      *zap.Logger
	now         func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	sessionRepo repositories.SessionRepository,
	provider SessionProvider,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		provider:    provider,
		sessionTTL:  sessionTTL,
		hashCost:    bcrypt.DefaultCost,
		logger:      logger,
		now:         utcNow,
	}
}

// UserDTO is the API representation of a user
type UserDTO struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Picture   *string `json:"picture"`
	CreatedAt string  `json:"created_at"`
}

// AuthResult is a signed-in user together with their session
type AuthResult struct {
	User      UserDTO
	Token     string
	ExpiresAt time.Time
}

// Signup registers a password account and signs it in
func (s *AuthService) Signup(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if !strings.Contains(email, "@") {
		return nil, invalid("email", "must be a valid email address")
	}
	if len(password) < minPasswordLength {
		return nil, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	user := &entities.User{
		UserID:       newUserID(),
		Email:        email,
		Name:         name,
		PasswordHash: &hashStr,
		CreatedAt:    s.now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User signed up", zap.String("user_id", user.UserID))

	return s.startSession(ctx, user)
}

// Login checks a password and opens a new session
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

// ExchangeSession signs in through the external provider, creating or refreshing the account
func (s *AuthService) ExchangeSession(ctx context.Context, sessionID string) (*AuthResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, invalid("session_id", "must not be empty")
	}

	data, err := s.provider.SessionData(ctx, sessionID)
	if err != nil {
		if errors.Is(err, authprovider.ErrRejected) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Session exchange failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAuthProvider, err)
	}

	email := normalizeEmail(data.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user != nil {
		if err := s.userRepo.UpdateProfile(ctx, user.UserID, data.Name, data.Picture); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		user.Name = data.Name
		user.Picture = data.Picture
	} else {
		user = &entities.User{
			UserID:    newUserID(),
			Email:     email,
			Name:      data.Name,
			Picture:   data.Picture,
			CreatedAt: s.now(),
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		s.logger.Info("User created from provider session", zap.String("user_id", user.UserID))
	}

	return s.saveSession(ctx, user, data.SessionToken)
}

// Authenticate resolves a session token to its user.
// Expired sessions are removed.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrInvalidSession
	}

	if session.Expired(s.now()) {
		if err := s.sessionRepo.Delete(ctx, token); err != nil {
			s.logger.Warn("Failed to delete expired session", zap.Error(err))
		}
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// SessionTTL is how long new sessions stay valid
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// Logout ends the session, if any
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ToUserDTO converts a user to its API representation
func ToUserDTO(u *entities.User) UserDTO {
	return UserDTO{
		UserID:    u.UserID,
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		CreatedAt: u.CreatedAt.Format(time.RFC3339Nano),
	}
}

func (s *AuthService) startSession(ctx context.Context, user *entities.User) (*AuthResult, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	return s.saveSession(ctx, user, token)
}

func (s *AuthService) saveSession(ctx context.Context, user *entities.User, token string) (*AuthResult, error) {
	now := s.now()
	session := &entities.Session{
		Token:     token,
		UserID:    user.UserID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	err := s.sessionRepo.Create(ctx, session)
	if errors.Is(err, repositories.ErrDuplicate) {
		// Provider tokens can be handed out again for the same login
		if err = s.sessionRepo.Delete(ctx, token); err == nil {
			err = s.sessionRepo.Create(ctx, session)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResult{
		User:      ToUserDTO(user),
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newUserID returns "user_" followed by 12 hex characters
func newUserID() string {
	return "user_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
