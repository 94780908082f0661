package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vellt/eduinfo-api/internal/model"
)

// ModerationStore is the slice of the profile store the admin surface
// needs.
type ModerationStore interface {
	ListInstitutionAccounts(ctx context.Context) ([]model.Account, error)
	ListPersonAccounts(ctx context.Context) ([]model.Account, error)
	SetInstitutionEnabled(ctx context.Context, institutionID int64, enabled bool) error
	SetInstitutionAccepted(ctx context.Context, institutionID int64) error
	SetPersonEnabled(ctx context.Context, personID int64, enabled bool) error
}

// AdminService backs the moderation surface: account overview and the
// enabled/accepted flag switches.
type AdminService struct {
	profiles ModerationStore
	logger   *slog.Logger
}

func NewAdminService(profiles ModerationStore, logger *slog.Logger) *AdminService {
	return &AdminService{profiles: profiles, logger: logger}
}

// Users lists every institution and person account with its flags.
func (s *AdminService) Users(ctx context.Context) (*AccountsView, error) {
	institutions, err := s.profiles.ListInstitutionAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing institutions: %w", err)
	}
	persons, err := s.profiles.ListPersonAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing persons: %w", err)
	}

	view := &AccountsView{
		Institutions: make([]InstitutionAccountView, 0, len(institutions)),
		Persons:      make([]PersonAccountView, 0, len(persons)),
	}
	for _, a := range institutions {
		view.Institutions = append(view.Institutions, InstitutionAccountView{
			InstitutionID: a.ProfileID,
			Enabled:       a.Enabled,
			Accepted:      a.Accepted,
			AvatarImage:   a.AvatarImage,
			Name:          a.Name,
			Email:         a.Email,
		})
	}
	for _, a := range persons {
		view.Persons = append(view.Persons, PersonAccountView{
			PersonID:    a.ProfileID,
			Enabled:     a.Enabled,
			Accepted:    a.Accepted,
			AvatarImage: a.AvatarImage,
			Name:        a.Name,
			Email:       a.Email,
		})
	}
	return view, nil
}

// SetInstitutionEnabled toggles administrative suspension. A disabled
// institution fails the enabled gate on every protected route.
func (s *AdminService) SetInstitutionEnabled(ctx context.Context, institutionID int64, enabled bool) error {
	if err := s.profiles.SetInstitutionEnabled(ctx, institutionID, enabled); err != nil {
		return fmt.Errorf("service: toggling institution: %w", err)
	}
	s.logger.Info("institution flag changed",
		slog.Int64("institutionID", institutionID),
		slog.Bool("enabled", enabled),
	)
	return nil
}

// AcceptInstitution approves a pending registration. Acceptance is
// one-way; there is no un-accept.
func (s *AdminService) AcceptInstitution(ctx context.Context, institutionID int64) error {
	if err := s.profiles.SetInstitutionAccepted(ctx, institutionID); err != nil {
		return fmt.Errorf("service: accepting institution: %w", err)
	}
	s.logger.Info("institution accepted", slog.Int64("institutionID", institutionID))
	return nil
}

// SetPersonEnabled toggles administrative suspension of a person.
func (s *AdminService) SetPersonEnabled(ctx context.Context, personID int64, enabled bool) error {
	if err := s.profiles.SetPersonEnabled(ctx, personID, enabled); err != nil {
		return fmt.Errorf("service: toggling person: %w", err)
	}
	s.logger.Info("person flag changed",
		slog.Int64("personID", personID),
		slog.Bool("enabled", enabled),
	)
	return nil
}
