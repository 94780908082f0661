package service

import (
	"context"
	"testing"

	"github.com/vellt/eduinfo-api/internal/model"
)

type fakeModeration struct {
	institutions []model.Account
	persons      []model.Account

	institutionEnabled map[int64]bool
	personEnabled      map[int64]bool
	accepted           []int64
}

func newFakeModeration() *fakeModeration {
	return &fakeModeration{
		institutionEnabled: map[int64]bool{},
		personEnabled:      map[int64]bool{},
	}
}

func (f *fakeModeration) ListInstitutionAccounts(_ context.Context) ([]model.Account, error) {
	return f.institutions, nil
}

func (f *fakeModeration) ListPersonAccounts(_ context.Context) ([]model.Account, error) {
	return f.persons, nil
}

func (f *fakeModeration) SetInstitutionEnabled(_ context.Context, institutionID int64, enabled bool) error {
	f.institutionEnabled[institutionID] = enabled
	return nil
}

func (f *fakeModeration) SetInstitutionAccepted(_ context.Context, institutionID int64) error {
	f.accepted = append(f.accepted, institutionID)
	return nil
}

func (f *fakeModeration) SetPersonEnabled(_ context.Context, personID int64, enabled bool) error {
	f.personEnabled[personID] = enabled
	return nil
}

func TestUsers(t *testing.T) {
	store := newFakeModeration()
	store.institutions = []model.Account{
		{ProfileID: 2, Enabled: true, Accepted: false, Name: "Óvoda", Email: "o@example.com"},
	}
	store.persons = []model.Account{
		{ProfileID: 5, Enabled: true, Accepted: true, Name: "Kiss Béla", Email: "b@example.com"},
	}
	svc := NewAdminService(store, testLogger())

	view, err := svc.Users(context.Background())
	if err != nil {
		t.Fatalf("Users() error = %v", err)
	}
	if len(view.Institutions) != 1 || view.Institutions[0].InstitutionID != 2 {
		t.Errorf("institutions = %+v", view.Institutions)
	}
	if len(view.Persons) != 1 || view.Persons[0].PersonID != 5 {
		t.Errorf("persons = %+v", view.Persons)
	}
}

func TestModerationSwitches(t *testing.T) {
	store := newFakeModeration()
	svc := NewAdminService(store, testLogger())
	ctx := context.Background()

	if err := svc.SetInstitutionEnabled(ctx, 2, false); err != nil {
		t.Fatalf("SetInstitutionEnabled() error = %v", err)
	}
	if enabled, ok := store.institutionEnabled[2]; !ok || enabled {
		t.Errorf("institution 2 enabled = %v, want disabled", store.institutionEnabled)
	}

	if err := svc.AcceptInstitution(ctx, 2); err != nil {
		t.Fatalf("AcceptInstitution() error = %v", err)
	}
	if len(store.accepted) != 1 || store.accepted[0] != 2 {
		t.Errorf("accepted = %v, want [2]", store.accepted)
	}

	if err := svc.SetPersonEnabled(ctx, 5, true); err != nil {
		t.Fatalf("SetPersonEnabled() error = %v", err)
	}
	if enabled := store.personEnabled[5]; !enabled {
		t.Error("person 5 not enabled")
	}
}
