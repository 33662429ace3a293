package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/JBK2116/CollaBoard/pkg/clock"
	"github.com/JBK2116/CollaBoard/pkg/config"
	"github.com/JBK2116/CollaBoard/pkg/database"
	"github.com/JBK2116/CollaBoard/pkg/models"

	"github.com/google/uuid"
)

const (
	minPasswordLength = 8
	maxNameLength     = 150
)

// RegisterInput contains the domain-level data needed to create a director
// account. Transformed from the HTTP request by the handler.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AuthService handles director registration, login, and session
// resolution. Session tokens are opaque random strings stored server-side.
type AuthService struct {
	store *database.Store
	cfg   *config.AuthConfig
	clk   clock.Clock
}

// NewAuthService creates a new AuthService.
func NewAuthService(store *database.Store, cfg *config.AuthConfig, clk clock.Clock) *AuthService {
	if store == nil {
		panic("NewAuthService: store must not be nil")
	}
	if cfg == nil {
		panic("NewAuthService: cfg must not be nil")
	}
	return &AuthService{store: store, cfg: cfg, clk: clk}
}

// Register creates a new director account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || len(firstName) > maxNameLength {
		return nil, NewValidationError("first_name", fmt.Sprintf("must be 1-%d characters", maxNameLength))
	}
	if lastName == "" || len(lastName) > maxNameLength {
		return nil, NewValidationError("last_name", fmt.Sprintf("must be 1-%d characters", maxNameLength))
	}
	email := models.NormalizeEmail(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, NewValidationError("email", "must be a valid email address")
	}
	if len(input.Password) < minPasswordLength {
		return nil, NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, fmt.Errorf("email %s: %w", email, ErrAlreadyExists)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and issues a new session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.store.GetUserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return "", nil, ErrAuthFailed
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthFailed
	}

	token, err := newSessionToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	expiresAt := s.clk.Now().Add(s.cfg.SessionTTL)
	if err := s.store.CreateAuthSession(ctx, token, user.ID, expiresAt); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}
	return token, user, nil
}

// ResolveSession maps a session token to its director. Missing, expired,
// and orphaned tokens all come back as ErrAuthFailed.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrAuthFailed
	}
	user, err := s.store.GetAuthSessionUser(ctx, token, s.clk.Now())
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrAuthFailed
		}
		return nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	return user, nil
}

// Logout invalidates a session token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteAuthSession(ctx, token)
}

// PurgeExpiredSessions removes expired session rows and reports the count.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredAuthSessions(ctx, s.clk.Now())
}

// newSessionToken returns 32 random bytes hex-encoded.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
