// Package service contains the business logic layer. Handlers parse
// HTTP and serialize responses; services validate, enforce the domain
// rules and orchestrate the repositories; repositories own the SQL.
// Every service takes interfaces, so tests swap in hand-written fakes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/auth"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
)

// MinPasswordLength matches the public registration contract.
const MinPasswordLength = 6

// Deliberately loose: one @ with something on both sides and a dot in
// the domain. Real validation happens when mail is actually sent.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// TokenInvalidator is the slice of the token store the auth flows
// need next to the issuer: revocation only.
type TokenInvalidator interface {
	Invalidate(ctx context.Context, token string) error
}

// AuthService implements registration, login and session handling.
type AuthService struct {
	users     repository.UserRepository
	tokens    TokenInvalidator
	issuer    *auth.Issuer
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens TokenInvalidator,
	issuer *auth.Issuer,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		issuer:    issuer,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a person or institution account together with its
// role-profile row in one transaction. Persons start accepted and
// enabled; institutions wait for admin approval.
func (s *AuthService) Register(ctx context.Context, email, name, password, as string) error {
	details := registrationErrors(email, name, password)
	if as != model.RolePerson && as != model.RoleInstitution {
		details = append(details, "Nem megfelelő felhasználói szerep")
	}
	if len(details) > 0 {
		return apperror.ValidationFailed(details)
	}

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return fmt.Errorf("service: checking email: %w", err)
	}
	if taken {
		return apperror.DuplicateEmail()
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("service: hashing password: %w", err)
	}

	roleID := model.RoleIDPerson
	if as == model.RoleInstitution {
		roleID = model.RoleIDInstitution
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		RoleID:       roleID,
	}
	if err := s.users.CreateWithProfile(ctx, user); err != nil {
		return fmt.Errorf("service: creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("role", as),
	)
	return nil
}

// RegisterAdmin creates an admin account (no profile row) and signs it
// in immediately, returning the fresh token.
func (s *AuthService) RegisterAdmin(ctx context.Context, email, name, password string) (string, error) {
	if details := registrationErrors(email, name, password); len(details) > 0 {
		return "", apperror.ValidationFailed(details)
	}

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return "", fmt.Errorf("service: checking email: %w", err)
	}
	if taken {
		return "", apperror.DuplicateEmail()
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return "", fmt.Errorf("service: hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		RoleID:       model.RoleIDAdmin,
	}
	if err := s.users.CreateWithProfile(ctx, user); err != nil {
		return "", fmt.Errorf("service: creating admin: %w", err)
	}

	s.logger.Info("admin registered", slog.Int64("userID", user.ID))
	return s.issuer.Issue(ctx, user.ID)
}

// Login checks the credentials and issues a new session token. The
// previous sessions of the user stay valid; clients hold independent
// tokens.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var details []string
	if !emailPattern.MatchString(email) {
		details = append(details, "Nem valós email cím")
	}
	if password == "" {
		details = append(details, "A jelszó megadása kötelező!")
	}
	if len(details) > 0 {
		return "", apperror.ValidationFailed(details)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return "", apperror.InvalidCredential("Hibás belépési adatok")
	}

	s.logger.Info("user logged in", slog.Int64("userID", user.ID))
	return s.issuer.Issue(ctx, user.ID)
}

// Rotate trades a presented valid token for a fresh one. The old token
// is revoked first, so a stolen copy dies the moment the real client
// rotates.
func (s *AuthService) Rotate(ctx context.Context, token string, userID int64) (string, error) {
	if err := s.tokens.Invalidate(ctx, token); err != nil {
		return "", fmt.Errorf("service: revoking token: %w", err)
	}
	return s.issuer.Issue(ctx, userID)
}

// Logout revokes the presented token. The row stays in the store so
// the value can never be reissued.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.tokens.Invalidate(ctx, token); err != nil {
		return fmt.Errorf("service: revoking token: %w", err)
	}
	return nil
}

func registrationErrors(email, name, password string) []string {
	var details []string
	if !emailPattern.MatchString(email) {
		details = append(details, "Nem valós email cím")
	}
	if strings.TrimSpace(name) == "" {
		details = append(details, "Töltsd ki a nevet!")
	}
	if len(password) < MinPasswordLength {
		details = append(details, "A jelszónak legalább 6 karakternek kell lennie!")
	}
	return details
}
