package sqlite

import (
	"context"
	"testing"

	"github.com/vellt/eduinfo-api/internal/model"
)

// newTestDB opens a fresh in-memory database with the full schema and
// seeds. t.Helper makes failures point at the calling test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// registerTestUser creates a user with its role-profile row and fails
// the test on error.
func registerTestUser(t *testing.T, db *DB, email, name string, roleID int64) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "$2a$10$notarealhashnotarealhashnotarealhashnotarealha",
		Name:         name,
		RoleID:       roleID,
	}
	if err := db.CreateWithProfile(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %q: %v", email, err)
	}
	return user
}

// newTestPerson registers a person and returns the user plus their
// person profile id.
func newTestPerson(t *testing.T, db *DB, email, name string) (*model.User, int64) {
	t.Helper()
	user := registerTestUser(t, db, email, name, model.RoleIDPerson)
	id, err := db.PersonIDByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to resolve person id: %v", err)
	}
	return user, id
}

// newTestInstitution registers an institution and returns the user plus
// their institution profile id.
func newTestInstitution(t *testing.T, db *DB, email, name string) (*model.User, int64) {
	t.Helper()
	user := registerTestUser(t, db, email, name, model.RoleIDInstitution)
	id, err := db.InstitutionIDByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("failed to resolve institution id: %v", err)
	}
	return user, id
}
