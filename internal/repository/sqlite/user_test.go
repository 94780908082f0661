package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
)

// =========================================================================
// REGISTRATION TESTS
// =========================================================================

func TestCreateWithProfile_Person(t *testing.T) {
	db := newTestDB(t)

	user := registerTestUser(t, db, "anna@example.com", "Kiss Anna", model.RoleIDPerson)
	if user.ID == 0 {
		t.Fatal("CreateWithProfile() did not set user.ID")
	}

	// Persons are born enabled and accepted.
	flags, err := db.Flags(context.Background(), repository.ProfilePerson, user.ID)
	if err != nil {
		t.Fatalf("Flags() error = %v", err)
	}
	if !flags.Enabled || !flags.Accepted {
		t.Errorf("person flags = %+v, want enabled and accepted", flags)
	}

	profile, err := db.PersonProfile(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("PersonProfile() error = %v", err)
	}
	if profile.AvatarImage != "default_avatar.jpg" {
		t.Errorf("AvatarImage = %q, want default_avatar.jpg", profile.AvatarImage)
	}
}

func TestCreateWithProfile_InstitutionStartsUnaccepted(t *testing.T) {
	db := newTestDB(t)

	user := registerTestUser(t, db, "school@example.com", "Teszt Iskola", model.RoleIDInstitution)

	flags, err := db.Flags(context.Background(), repository.ProfileInstitution, user.ID)
	if err != nil {
		t.Fatalf("Flags() error = %v", err)
	}
	if !flags.Enabled {
		t.Error("institution should start enabled")
	}
	if flags.Accepted {
		t.Error("institution should start unaccepted, waiting for admin approval")
	}

	banner, err := db.InstitutionBanner(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("InstitutionBanner() error = %v", err)
	}
	if banner != "default_banner.jpg" {
		t.Errorf("banner = %q, want default_banner.jpg", banner)
	}
}

func TestCreateWithProfile_AdminHasNoProfileRow(t *testing.T) {
	db := newTestDB(t)

	user := registerTestUser(t, db, "admin@example.com", "Admin", model.RoleIDAdmin)

	_, err := db.Flags(context.Background(), repository.ProfilePerson, user.ID)
	if !errors.Is(err, apperror.ErrAccountNotFound) {
		t.Errorf("Flags() error = %v, want ErrAccountNotFound", err)
	}
}

func TestCreateWithProfile_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)

	registerTestUser(t, db, "dup@example.com", "First", model.RoleIDPerson)

	dup := &model.User{Email: "dup@example.com", PasswordHash: "x", Name: "Second", RoleID: model.RoleIDPerson}
	if err := db.CreateWithProfile(context.Background(), dup); err == nil {
		t.Fatal("CreateWithProfile() should fail on duplicate email (UNIQUE constraint)")
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := registerTestUser(t, db, "find@example.com", "Findable", model.RoleIDPerson)

	found, err := db.GetByEmail(context.Background(), "find@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %d, want %d", found.ID, created.ID)
	}
	if found.RoleID != model.RoleIDPerson {
		t.Errorf("RoleID = %d, want %d", found.RoleID, model.RoleIDPerson)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestEmailTaken(t *testing.T) {
	db := newTestDB(t)
	registerTestUser(t, db, "taken@example.com", "Taken", model.RoleIDPerson)

	taken, err := db.EmailTaken(context.Background(), "taken@example.com")
	if err != nil {
		t.Fatalf("EmailTaken() error = %v", err)
	}
	if !taken {
		t.Error("EmailTaken() = false for a registered email")
	}

	free, err := db.EmailTaken(context.Background(), "free@example.com")
	if err != nil {
		t.Fatalf("EmailTaken() error = %v", err)
	}
	if free {
		t.Error("EmailTaken() = true for an unused email")
	}
}

// =========================================================================
// UPDATE AND DELETE TESTS
// =========================================================================

func TestUpdateUserColumns(t *testing.T) {
	db := newTestDB(t)
	user := registerTestUser(t, db, "edit@example.com", "Before", model.RoleIDPerson)

	ctx := context.Background()
	if err := db.UpdateName(ctx, user.ID, "After"); err != nil {
		t.Fatalf("UpdateName() error = %v", err)
	}
	if err := db.UpdateEmail(ctx, user.ID, "after@example.com"); err != nil {
		t.Fatalf("UpdateEmail() error = %v", err)
	}
	if err := db.UpdatePassword(ctx, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}

	found, err := db.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "After" || found.Email != "after@example.com" || found.PasswordHash != "newhash" {
		t.Errorf("updated user = %+v", found)
	}
}

func TestDeleteUser_CascadesProfileAndTokens(t *testing.T) {
	db := newTestDB(t)
	user := registerTestUser(t, db, "gone@example.com", "Gone", model.RoleIDPerson)

	ctx := context.Background()
	if err := db.Insert(ctx, user.ID, "token-of-gone"); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := db.Delete(ctx, user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := db.GetByID(ctx, user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := db.Flags(ctx, repository.ProfilePerson, user.ID); !errors.Is(err, apperror.ErrAccountNotFound) {
		t.Errorf("Flags() after delete error = %v, want ErrAccountNotFound", err)
	}
	exists, err := db.Exists(ctx, "token-of-gone")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("token survived user deletion, cascade missing")
	}
}
