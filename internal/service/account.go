package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/auth"
	"github.com/vellt/eduinfo-api/internal/repository"
)

// ImageRemover is the slice of the upload store the services need:
// best-effort cleanup of replaced or orphaned files. Saving images is
// an HTTP concern and stays in the handlers.
type ImageRemover interface {
	Remove(filename string)
}

// ProfileImages reads and replaces the stored profile image names.
type ProfileImages interface {
	Avatar(ctx context.Context, kind repository.ProfileKind, userID int64) (string, error)
	SetAvatar(ctx context.Context, kind repository.ProfileKind, userID int64, filename string) error
	InstitutionBanner(ctx context.Context, userID int64) (string, error)
	SetInstitutionBanner(ctx context.Context, userID int64, filename string) error
}

// AccountService covers the profile edits shared by persons and
// institutions: name, email, password, avatar and account deletion.
type AccountService struct {
	users     repository.UserRepository
	profiles  ProfileImages
	passwords *auth.PasswordService
	images    ImageRemover
	logger    *slog.Logger
}

func NewAccountService(
	users repository.UserRepository,
	profiles ProfileImages,
	passwords *auth.PasswordService,
	images ImageRemover,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		users:     users,
		profiles:  profiles,
		passwords: passwords,
		images:    images,
		logger:    logger,
	}
}

// UpdateName replaces the display name.
func (s *AccountService) UpdateName(ctx context.Context, userID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperror.ValidationFailed([]string{"Töltsd ki a nevet!"})
	}
	if err := s.users.UpdateName(ctx, userID, name); err != nil {
		return fmt.Errorf("service: updating name: %w", err)
	}
	return nil
}

// UpdateEmail replaces the login email after a uniqueness check.
func (s *AccountService) UpdateEmail(ctx context.Context, userID int64, email string) error {
	if !emailPattern.MatchString(email) {
		return apperror.ValidationFailed([]string{"Nem valós email cím"})
	}

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return fmt.Errorf("service: checking email: %w", err)
	}
	if taken {
		return apperror.DuplicateEmail()
	}

	if err := s.users.UpdateEmail(ctx, userID, email); err != nil {
		return fmt.Errorf("service: updating email: %w", err)
	}
	return nil
}

// UpdatePassword re-verifies the current password before storing the
// new hash, so a hijacked session alone cannot lock the owner out.
func (s *AccountService) UpdatePassword(ctx context.Context, userID int64, current, next string) error {
	if len(next) < MinPasswordLength {
		return apperror.ValidationFailed([]string{"A jelszónak legalább 6 karakternek kell lennie!"})
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.passwords.Verify(user.PasswordHash, current); err != nil {
		return apperror.InvalidCredential("Helytelen jelszót adtál meg")
	}

	hash, err := s.passwords.Hash(next)
	if err != nil {
		return fmt.Errorf("service: hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("service: updating password: %w", err)
	}

	s.logger.Info("password changed", slog.Int64("userID", userID))
	return nil
}

// ReplaceAvatar stores the new filename and removes the previous file.
// The shared default avatar is never deleted.
func (s *AccountService) ReplaceAvatar(ctx context.Context, kind repository.ProfileKind, userID int64, filename string) error {
	old, err := s.profiles.Avatar(ctx, kind, userID)
	if err != nil {
		return err
	}
	if err := s.profiles.SetAvatar(ctx, kind, userID, filename); err != nil {
		return fmt.Errorf("service: updating avatar: %w", err)
	}
	s.images.Remove(old)
	return nil
}

// ReplaceBanner is the institution-only banner variant of ReplaceAvatar.
func (s *AccountService) ReplaceBanner(ctx context.Context, userID int64, filename string) error {
	old, err := s.profiles.InstitutionBanner(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.profiles.SetInstitutionBanner(ctx, userID, filename); err != nil {
		return fmt.Errorf("service: updating banner: %w", err)
	}
	s.images.Remove(old)
	return nil
}

// Delete removes the account. Tokens, the profile row and all owned
// content cascade in the database; the profile images are cleaned up
// afterwards, best-effort.
func (s *AccountService) Delete(ctx context.Context, kind repository.ProfileKind, userID int64) error {
	avatar, err := s.profiles.Avatar(ctx, kind, userID)
	if err != nil {
		return err
	}
	var banner string
	if kind == repository.ProfileInstitution {
		if banner, err = s.profiles.InstitutionBanner(ctx, userID); err != nil {
			return err
		}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("service: deleting account: %w", err)
	}

	s.images.Remove(avatar)
	if banner != "" {
		s.images.Remove(banner)
	}

	s.logger.Info("account deleted", slog.Int64("userID", userID))
	return nil
}
