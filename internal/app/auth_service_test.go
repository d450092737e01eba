package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"streaks/internal/domain"
)

type mockAdminRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.Admin, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.Admin, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.Admin, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockAdminRepo) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockAdminRepo) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockAdminRepo) Create(ctx context.Context, username, passwordHash string) (*domain.Admin, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.Admin{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockAdminRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, adminID int64, token string, expiresAt time.Time) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, adminID int64, token string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, adminID, token, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, errors.New("not found")
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	password := "testpass123"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	admins := &mockAdminRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.Admin, error) {
			return &domain.Admin{
				ID:           1,
				Username:     "ops",
				PasswordHash: string(hash),
			}, nil
		},
	}

	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, adminID int64, token string, expiresAt time.Time) error {
			if adminID != 1 {
				t.Errorf("expected adminID 1, got %d", adminID)
			}
			if token == "" {
				t.Error("token should not be empty")
			}
			return nil
		},
	}

	svc := NewAuthService(admins, sessions)
	token, err := svc.Login(ctx, "ops", password)

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Error("expected token, got empty string")
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)

	admins := &mockAdminRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.Admin, error) {
			return &domain.Admin{ID: 1, Username: "ops", PasswordHash: string(hash)}, nil
		},
	}

	svc := NewAuthService(admins, &mockSessionRepo{})
	if _, err := svc.Login(ctx, "ops", "wrongpass"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownAdmin(t *testing.T) {
	svc := NewAuthService(&mockAdminRepo{}, &mockSessionRepo{})
	if _, err := svc.Login(context.Background(), "nobody", "pass"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_ValidateSession_Expired(t *testing.T) {
	deleted := false
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, token string) (*domain.Session, error) {
			return &domain.Session{
				Token:     token,
				AdminID:   1,
				ExpiresAt: time.Now().Add(-time.Hour),
			}, nil
		},
		deleteFn: func(ctx context.Context, token string) error {
			deleted = true
			return nil
		},
	}

	svc := NewAuthService(&mockAdminRepo{}, sessions)
	if _, err := svc.ValidateSession(context.Background(), "tok"); err != ErrSessionExpired {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if !deleted {
		t.Error("expected expired session to be deleted")
	}
}

func TestAuthService_ValidateSession_Success(t *testing.T) {
	sessions := &mockSessionRepo{
		getByTokenFn: func(ctx context.Context, token string) (*domain.Session, error) {
			return &domain.Session{
				Token:     token,
				AdminID:   1,
				ExpiresAt: time.Now().Add(time.Hour),
			}, nil
		},
	}
	admins := &mockAdminRepo{
		getByIDFn: func(ctx context.Context, id int64) (*domain.Admin, error) {
			return &domain.Admin{ID: id, Username: "ops"}, nil
		},
	}

	svc := NewAuthService(admins, sessions)
	admin, err := svc.ValidateSession(context.Background(), "tok")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if admin.Username != "ops" {
		t.Errorf("expected admin ops, got %q", admin.Username)
	}
}

func TestAuthService_CreateAdmin_Duplicate(t *testing.T) {
	admins := &mockAdminRepo{
		getByUsernameFn: func(ctx context.Context, username string) (*domain.Admin, error) {
			return &domain.Admin{ID: 1, Username: username}, nil
		},
	}

	svc := NewAuthService(admins, &mockSessionRepo{})
	err := svc.CreateAdmin(context.Background(), "ops", "pass")
	if !IsValidation(err) {
		t.Fatalf("expected validation error for duplicate admin, got %v", err)
	}
}

func TestAuthService_CreateAdmin_HashesPassword(t *testing.T) {
	var gotHash string
	admins := &mockAdminRepo{
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.Admin, error) {
			gotHash = passwordHash
			return &domain.Admin{ID: 1, Username: username, PasswordHash: passwordHash}, nil
		},
	}

	svc := NewAuthService(admins, &mockSessionRepo{})
	if err := svc.CreateAdmin(context.Background(), "ops", "secret"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotHash == "secret" || gotHash == "" {
		t.Fatal("password must be stored as a bcrypt hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(gotHash), []byte("secret")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_LoginWithAdmin_AutoProvision(t *testing.T) {
	created := false
	admins := &mockAdminRepo{
		createFn: func(ctx context.Context, username, passwordHash string) (*domain.Admin, error) {
			created = true
			if passwordHash != "" {
				t.Error("SSO-provisioned admin must have an empty password hash")
			}
			return &domain.Admin{ID: 2, Username: username}, nil
		},
	}

	svc := NewAuthService(admins, &mockSessionRepo{})
	token, err := svc.LoginWithAdmin(context.Background(), "sso-user@example.com")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Error("expected token")
	}
	if !created {
		t.Error("expected admin to be auto-provisioned")
	}
}
