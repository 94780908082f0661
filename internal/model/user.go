// Package model defines the data structures used throughout the application.
package model

// Role identifiers. Fixed reference data seeded by the migrations;
// role_id 1..3 matches the values baked into registration.
const (
	RoleIDAdmin       int64 = 1
	RoleIDPerson      int64 = 2
	RoleIDInstitution int64 = 3
)

// Role names as they appear in the roles table and in route gating.
const (
	RoleAdmin       = "admin"
	RolePerson      = "person"
	RoleInstitution = "institution"
)

// Role is a row of the immutable roles reference table.
type Role struct {
	ID   int64  `json:"role_id"`
	Name string `json:"role"`
}

// User is the identity record shared by all three roles.
//
// PasswordHash is a bcrypt hash; the plaintext never leaves the auth
// service. Admin accounts have no role-profile row; person and
// institution accounts have exactly one.
type User struct {
	ID           int64  `json:"user_id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	RoleID       int64  `json:"role_id"`
}

// Token is one opaque session credential. Tokens are never deleted,
// only invalidated: Valid is the sole signal of session liveness, there
// is no time-based expiry. A user may hold several valid tokens at once.
type Token struct {
	Value  string
	UserID int64
	Valid  bool
}

// Person is the role-profile extension of a person account.
// Persons are accepted at creation; only Enabled is ever toggled.
type Person struct {
	PersonID    int64  `json:"person_id"`
	UserID      int64  `json:"-"`
	AvatarImage string `json:"avatar_image"`
	Enabled     bool   `json:"is_enabled"`
	Accepted    bool   `json:"is_accepted"`
}

// Institution is the role-profile extension of an institution account.
// A freshly registered institution has Accepted = false until an admin
// approves it.
type Institution struct {
	InstitutionID int64  `json:"institution_id"`
	UserID        int64  `json:"-"`
	AvatarImage   string `json:"avatar_image"`
	BannerImage   string `json:"banner_image"`
	Description   string `json:"description"`
	Enabled       bool   `json:"is_enabled"`
	Accepted      bool   `json:"is_accepted"`
}

// Account is the admin-facing summary row of a person or institution
// (profile flags joined with the user's name and email).
type Account struct {
	ProfileID   int64  `json:"-"` // person_id or institution_id
	Enabled     bool   `json:"is_enabled"`
	Accepted    bool   `json:"is_accepted"`
	AvatarImage string `json:"avatar_image"`
	Name        string `json:"name"`
	Email       string `json:"email"`
}

// InstitutionRef is the compact institution identity embedded in feed
// items, follow lists and messaging rooms.
type InstitutionRef struct {
	InstitutionID int64  `json:"institution_id"`
	AvatarImage   string `json:"avatar_image"`
	Name          string `json:"name"`
}

// PersonRef is the compact person identity embedded in messaging rooms.
type PersonRef struct {
	PersonID    int64  `json:"person_id"`
	AvatarImage string `json:"avatar_image"`
	Name        string `json:"name"`
}

// InstitutionProfile joins an institution row with its user record's
// name and registration email.
type InstitutionProfile struct {
	Institution
	Name  string
	Email string
}

// PersonProfile joins a person row with its user record.
type PersonProfile struct {
	Person
	Name  string
	Email string
}
