package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/auth"
	"github.com/vellt/eduinfo-api/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAuthService(users *fakeUsers, tokens *fakeTokens) *AuthService {
	return NewAuthService(
		users,
		tokens,
		auth.NewIssuer(tokens),
		auth.NewPasswordServiceForTest(bcrypt.MinCost),
		testLogger(),
	)
}

func TestRegister(t *testing.T) {
	users := newFakeUsers()
	svc := newTestAuthService(users, newFakeTokens())

	if err := svc.Register(context.Background(), "ovi@example.com", "Katica Óvoda", "titkos1", "institution"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if len(users.created) != 1 {
		t.Fatalf("created %d users, want 1", len(users.created))
	}
	user := users.created[0]
	if user.RoleID != model.RoleIDInstitution {
		t.Errorf("role id = %d, want %d", user.RoleID, model.RoleIDInstitution)
	}
	if user.PasswordHash == "titkos1" {
		t.Error("password stored in plaintext")
	}
}

func TestRegister_CollectsValidationErrors(t *testing.T) {
	svc := newTestAuthService(newFakeUsers(), newFakeTokens())

	err := svc.Register(context.Background(), "nem-email", "", "abc", "robot")

	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Register() error = %v, want validation error", err)
	}
	if len(appErr.Errors) != 4 {
		t.Errorf("collected %d validation details, want 4: %v", len(appErr.Errors), appErr.Errors)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newFakeUsers()
	users.add(&model.User{Email: "foglalt@example.com", RoleID: model.RoleIDPerson})
	svc := newTestAuthService(users, newFakeTokens())

	err := svc.Register(context.Background(), "foglalt@example.com", "Valaki", "titkos1", "person")
	if !errors.Is(err, apperror.ErrDuplicateEmail) {
		t.Errorf("Register() error = %v, want ErrDuplicateEmail", err)
	}
}

func TestLogin(t *testing.T) {
	users := newFakeUsers()
	tokens := newFakeTokens()
	svc := newTestAuthService(users, tokens)

	hash, _ := bcrypt.GenerateFromPassword([]byte("jelszo1"), bcrypt.MinCost)
	user := users.add(&model.User{Email: "bela@example.com", PasswordHash: string(hash)})

	token, err := svc.Login(context.Background(), "bela@example.com", "jelszo1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Fatal("Login() returned an empty token")
	}
	if tokens.inserted[token] != user.ID {
		t.Errorf("token stored for user %d, want %d", tokens.inserted[token], user.ID)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	users := newFakeUsers()
	svc := newTestAuthService(users, newFakeTokens())

	hash, _ := bcrypt.GenerateFromPassword([]byte("helyes"), bcrypt.MinCost)
	users.add(&model.User{Email: "bela@example.com", PasswordHash: string(hash)})

	_, err := svc.Login(context.Background(), "bela@example.com", "helytelen")
	if !errors.Is(err, apperror.ErrInvalidCredential) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredential", err)
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Message != "Hibás belépési adatok" {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newTestAuthService(newFakeUsers(), newFakeTokens())

	_, err := svc.Login(context.Background(), "senki@example.com", "akarmi")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Login() error = %v, want ErrNotFound", err)
	}
}

func TestRotate_RevokesTheOldToken(t *testing.T) {
	tokens := newFakeTokens()
	svc := newTestAuthService(newFakeUsers(), tokens)

	fresh, err := svc.Rotate(context.Background(), "regi-token", 5)
	if err != nil {
		t.Fatalf("Rotate() error = %v", err)
	}
	if fresh == "" || fresh == "regi-token" {
		t.Errorf("Rotate() = %q, want a new token", fresh)
	}
	if len(tokens.invalidated) != 1 || tokens.invalidated[0] != "regi-token" {
		t.Errorf("invalidated = %v, want [regi-token]", tokens.invalidated)
	}
}

func TestLogout(t *testing.T) {
	tokens := newFakeTokens()
	svc := newTestAuthService(newFakeUsers(), tokens)

	if err := svc.Logout(context.Background(), "t"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if len(tokens.invalidated) != 1 || tokens.invalidated[0] != "t" {
		t.Errorf("invalidated = %v, want [t]", tokens.invalidated)
	}
}

func TestRegisterAdmin_ReturnsToken(t *testing.T) {
	users := newFakeUsers()
	tokens := newFakeTokens()
	svc := newTestAuthService(users, tokens)

	token, err := svc.RegisterAdmin(context.Background(), "admin@example.com", "Admin", "titkos1")
	if err != nil {
		t.Fatalf("RegisterAdmin() error = %v", err)
	}
	if token == "" {
		t.Fatal("RegisterAdmin() returned no token")
	}
	if len(users.created) != 1 || users.created[0].RoleID != model.RoleIDAdmin {
		t.Errorf("created = %+v, want one admin user", users.created)
	}
}
