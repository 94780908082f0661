// Package repository declares the storage interfaces consumed by the
// service and auth layers. The sqlite subpackage provides the concrete
// implementation; tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/vellt/eduinfo-api/internal/model"
)

// ProfileKind is the tagged variant selecting a role-profile table
// (person or institutions). Queries are chosen through a static lookup
// keyed by this type; table names are never formatted into SQL text.
type ProfileKind int

const (
	ProfilePerson ProfileKind = iota
	ProfileInstitution
)

// KindForRole maps a role name onto its profile table. Admin accounts
// have no profile row and never reach the profile gates.
func KindForRole(role string) ProfileKind {
	if role == model.RoleInstitution {
		return ProfileInstitution
	}
	return ProfilePerson
}

// ContactKind selects one of the three public-contact tables of an
// institution. Same pattern as ProfileKind.
type ContactKind int

const (
	ContactEmail ContactKind = iota
	ContactPhone
	ContactWebsite
)

// ProfileFlags are the two independent administrative gates of a
// role-profile row.
type ProfileFlags struct {
	Enabled  bool
	Accepted bool
}

// UserRepository persists identity records.
type UserRepository interface {
	// CreateWithProfile inserts the user row and its role-profile row in
	// one transaction. Rolls back entirely on any failure so no orphan
	// user row survives. Admin users (RoleIDAdmin) get no profile row.
	CreateWithProfile(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UpdateName(ctx context.Context, userID int64, name string) error
	UpdateEmail(ctx context.Context, userID int64, email string) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	// Delete removes the user; tokens and the role-profile row go with
	// it through ON DELETE CASCADE.
	Delete(ctx context.Context, userID int64) error
}

// TokenRepository is the persistent token store. Tokens are only ever
// inserted and invalidated, never removed.
type TokenRepository interface {
	// Exists reports whether the value is present at all, valid or not.
	// The issuer checks this before inserting.
	Exists(ctx context.Context, token string) (bool, error)
	Insert(ctx context.Context, userID int64, token string) error
	// LookupValid resolves a token filtered to is_valid = 1 and returns
	// the owning user id. Returns apperror.ErrInvalidCredential when no
	// such token exists.
	LookupValid(ctx context.Context, token string) (int64, error)
	Invalidate(ctx context.Context, token string) error
	// ResolveRole joins tokens→users→roles for an already-validated token.
	ResolveRole(ctx context.Context, token string) (*model.Role, error)
}

// ProfileRepository reads and mutates role-profile rows.
type ProfileRepository interface {
	// Flags loads the enabled/accepted pair for the gates. Returns
	// apperror.ErrAccountNotFound when the profile row is missing.
	Flags(ctx context.Context, kind ProfileKind, userID int64) (ProfileFlags, error)
	PersonIDByUser(ctx context.Context, userID int64) (int64, error)
	InstitutionIDByUser(ctx context.Context, userID int64) (int64, error)

	InstitutionProfile(ctx context.Context, institutionID int64) (*model.InstitutionProfile, error)
	PersonProfile(ctx context.Context, userID int64) (*model.PersonProfile, error)
	InstitutionRef(ctx context.Context, institutionID int64) (*model.InstitutionRef, error)
	PersonRef(ctx context.Context, personID int64) (*model.PersonRef, error)

	Avatar(ctx context.Context, kind ProfileKind, userID int64) (string, error)
	SetAvatar(ctx context.Context, kind ProfileKind, userID int64, filename string) error
	InstitutionBanner(ctx context.Context, userID int64) (string, error)
	SetInstitutionBanner(ctx context.Context, userID int64, filename string) error

	// Admin moderation.
	ListInstitutionAccounts(ctx context.Context) ([]model.Account, error)
	ListPersonAccounts(ctx context.Context) ([]model.Account, error)
	SetInstitutionEnabled(ctx context.Context, institutionID int64, enabled bool) error
	SetInstitutionAccepted(ctx context.Context, institutionID int64) error
	SetPersonEnabled(ctx context.Context, personID int64, enabled bool) error
}

// NewsRepository persists feed posts.
type NewsRepository interface {
	CreateNews(ctx context.Context, institutionID int64, description string, bannerImage *string) error
	UpdateNews(ctx context.Context, newsID, institutionID int64, description string, bannerImage *string) error
	// DeleteNews returns apperror.ErrNotFound when the id does not belong
	// to the institution (0 rows affected).
	DeleteNews(ctx context.Context, newsID, institutionID int64) error
	// NewsBannerImage returns the stored attachment name for replacement
	// cleanup; apperror.ErrNotFound when the post is missing.
	NewsBannerImage(ctx context.Context, newsID, institutionID int64) (*string, error)
	// ListNewsByInstitution orders newest-first and fills like counts.
	// When viewerPersonID is non-nil the LikedByViewer flag is populated
	// too.
	ListNewsByInstitution(ctx context.Context, institutionID int64, viewerPersonID *int64) ([]model.News, error)
	// ListNewsForFeed returns the posts of the given institutions,
	// newest-first, with the publisher identity attached.
	ListNewsForFeed(ctx context.Context, personID int64, institutionIDs []int64) ([]model.FeedNews, error)
}

// EventRepository persists events together with their links.
type EventRepository interface {
	CreateEvent(ctx context.Context, event *model.Event) error
	// UpdateEvent replaces the event row and its entire link set in one
	// transaction.
	UpdateEvent(ctx context.Context, event *model.Event) error
	DeleteEvent(ctx context.Context, eventID, institutionID int64) error
	EventBannerImage(ctx context.Context, eventID, institutionID int64) (*string, error)
	// ListEventsByInstitution orders by start time ascending, links
	// included.
	ListEventsByInstitution(ctx context.Context, institutionID int64) ([]model.Event, error)
	// ListEventsForInstitutions returns upcoming-ordered events of the
	// given institutions with publisher identity; limit <= 0 means all.
	ListEventsForInstitutions(ctx context.Context, institutionIDs []int64, limit int) ([]model.FeedEvent, error)
}

// ContactRepository persists the three public-contact lists.
type ContactRepository interface {
	AddContact(ctx context.Context, kind ContactKind, institutionID int64, title, value string) error
	UpdateContact(ctx context.Context, kind ContactKind, id, institutionID int64, title, value string) error
	DeleteContact(ctx context.Context, kind ContactKind, id, institutionID int64) error
	ListContacts(ctx context.Context, kind ContactKind, institutionID int64) ([]model.ContactEntry, error)
}

// CategoryRepository reads the seeded category list and maintains the
// institution-category links.
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	InstitutionCategories(ctx context.Context, institutionID int64) ([]model.Category, error)
	// ReplaceInstitutionCategories deletes the previous links and inserts
	// the new set in one transaction.
	ReplaceInstitutionCategories(ctx context.Context, institutionID int64, categoryIDs []int64) error
	InstitutionsByCategory(ctx context.Context, categoryID int64) ([]model.InstitutionRef, error)
}

// SocialRepository maintains the follow and like edges.
type SocialRepository interface {
	IsFollowing(ctx context.Context, personID, institutionID int64) (bool, error)
	Follow(ctx context.Context, personID, institutionID int64) error
	// Unfollow returns apperror.ErrNotFound when no edge existed.
	Unfollow(ctx context.Context, personID, institutionID int64) error
	FollowerCount(ctx context.Context, institutionID int64) (int64, error)
	FollowedInstitutionIDs(ctx context.Context, personID int64) ([]int64, error)
	FollowedInstitutions(ctx context.Context, personID int64) ([]model.InstitutionRef, error)

	HasLiked(ctx context.Context, personID, newsID int64) (bool, error)
	Like(ctx context.Context, personID, newsID int64) error
	// Unlike returns apperror.ErrNotFound when no like existed.
	Unlike(ctx context.Context, personID, newsID int64) error
	LikeCount(ctx context.Context, newsID int64) (int64, error)
}

// MessageRepository persists two-party conversations.
type MessageRepository interface {
	// MessageCount is the cheap change-poll version: the total number of
	// messages across the profile's rooms.
	MessageCount(ctx context.Context, kind ProfileKind, profileID int64) (int64, error)
	// Rooms lists the profile's rooms with their latest message,
	// most-recent first.
	Rooms(ctx context.Context, kind ProfileKind, profileID int64) ([]model.RoomSummary, error)
	// RoomMessages returns the transcript newest-first plus the partner
	// profile id, enforcing that the caller is a member of the room.
	// apperror.ErrNotFound when the room does not exist for the caller.
	RoomMessages(ctx context.Context, roomID int64, kind ProfileKind, profileID int64) ([]model.Message, int64, error)
	// SendFromPerson appends to the pair's room, creating the room first
	// when missing; lookup-or-create-then-append runs in one transaction.
	SendFromPerson(ctx context.Context, personID, institutionID int64, text string) (int64, *model.Message, error)
	// SendFromInstitution appends to an existing room. Institutions
	// cannot open conversations: apperror.ErrNotFound when no room.
	SendFromInstitution(ctx context.Context, institutionID, personID int64, text string) (int64, *model.Message, error)
	// EnsureRoom returns the pair's room id, creating the room if needed.
	EnsureRoom(ctx context.Context, personID, institutionID int64) (int64, error)
	// MessagesForPair returns the transcript of the pair's room,
	// newest-first; empty when the room has no messages yet.
	MessagesForPair(ctx context.Context, personID, institutionID int64) ([]model.Message, error)
}
