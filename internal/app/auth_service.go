package app

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"streaks/internal/domain"
)

var (
	// ErrInvalidCredentials indicates that the provided username or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrAdminNotFound indicates that the admin does not exist.
	ErrAdminNotFound = errors.New("admin not found")
)

const sessionTTL = 24 * time.Hour

// AuthService handles admin authentication and session management.
type AuthService struct {
	admins   domain.AdminRepository
	sessions domain.SessionRepository
}

// NewAuthService creates a new authentication service.
func NewAuthService(admins domain.AdminRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{
		admins:   admins,
		sessions: sessions,
	}
}

// Login authenticates an admin and creates a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil || admin == nil {
		return "", ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.createSession(ctx, admin.ID)
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks if a session token is valid and returns its admin.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*domain.Admin, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil || session == nil {
		return nil, ErrSessionNotFound
	}

	if time.Now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	admin, err := s.admins.GetByID(ctx, session.AdminID)
	if err != nil || admin == nil {
		return nil, ErrAdminNotFound
	}

	return admin, nil
}

// CreateAdmin registers a new admin account with a bcrypt password hash.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return Validationf("username and password are required")
	}

	existing, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("lookup admin: %w", err)
	}
	if existing != nil {
		return Validationf("admin %q already exists", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.admins.Create(ctx, username, string(hash))
	return err
}

// LoginWithAdmin creates a session for an already authenticated admin
// (e.g. via SSO), auto-provisioning the account on first login.
func (s *AuthService) LoginWithAdmin(ctx context.Context, username string) (string, error) {
	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("lookup admin: %w", err)
	}
	if admin == nil {
		// Empty hash: the account can only log in through SSO.
		admin, err = s.admins.Create(ctx, username, "")
		if err != nil {
			// Try getting again if creation lost a race on the unique constraint.
			admin, err = s.admins.GetByUsername(ctx, username)
			if err != nil || admin == nil {
				return "", fmt.Errorf("provision admin: %w", err)
			}
		}
	}

	return s.createSession(ctx, admin.ID)
}

func (s *AuthService) createSession(ctx context.Context, adminID int64) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(sessionTTL)
	if err := s.sessions.Create(ctx, adminID, token, expiresAt); err != nil {
		return "", err
	}

	return token, nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
