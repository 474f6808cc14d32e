package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/avolkov/taskboard/internal/models"
	"github.com/avolkov/taskboard/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLen is enforced at registration, matching the client-side
// validation the API replaces.
const minPasswordLen = 8

// AuthRepository defines the persistence operations required by the
// authentication service.
type AuthRepository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, user models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateSession(ctx context.Context, session models.Session) error
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// AuthService is the session manager: it owns registration, login,
// logout and token resolution. It is constructed explicitly and passed to
// whatever needs it; there is no hidden process-wide session state.
type AuthService struct {
	repo       AuthRepository
	sessionTTL time.Duration
}

// NewAuthService constructs an AuthService with the provided repository
// and session lifetime.
func NewAuthService(repo AuthRepository, sessionTTL time.Duration) *AuthService {
	return &AuthService{repo: repo, sessionTTL: sessionTTL}
}

// Register creates a new user with a bcrypt-hashed password and returns
// it. The email must be unused and the password at least eight characters.
func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") || len(password) < minPasswordLen {
		return nil, ErrInvalid
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login verifies the credentials and issues a new session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return nil, ErrBadCredentials
	}

	now := time.Now().UTC()
	session := models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Logout revokes the session token. Revoking an unknown token succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.repo.DeleteSession(ctx, token)
}

// Authenticate resolves a bearer token to the owning user id. Expired
// sessions are revoked on sight and rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrBadCredentials
	}

	session, err := s.repo.GetSession(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrBadCredentials
	}
	if err != nil {
		return "", err
	}
	if time.Now().After(session.ExpiresAt) {
		_ = s.repo.DeleteSession(ctx, token)
		return "", ErrBadCredentials
	}
	return session.UserID, nil
}

// GetUser returns the profile fields of a user.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
