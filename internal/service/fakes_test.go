package service

// Hand-written fakes shared by the service tests. Each fake stores
// canned results and records the mutating calls; no behavior beyond
// what the tests assert on.

import (
	"context"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
)

type fakeUsers struct {
	byEmail map[string]*model.User
	byID    map[int64]*model.User
	nextID  int64

	created          []*model.User
	deleted          []int64
	updatedPasswords map[int64]string
	updatedNames     map[int64]string
	updatedEmails    map[int64]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byEmail:          map[string]*model.User{},
		byID:             map[int64]*model.User{},
		nextID:           1,
		updatedPasswords: map[int64]string{},
		updatedNames:     map[int64]string{},
		updatedEmails:    map[int64]string{},
	}
}

func (f *fakeUsers) add(user *model.User) *model.User {
	if user.ID == 0 {
		user.ID = f.nextID
		f.nextID++
	}
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return user
}

func (f *fakeUsers) CreateWithProfile(_ context.Context, user *model.User) error {
	f.add(user)
	f.created = append(f.created, user)
	return nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("A felhasználó nem található")
	}
	return user, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, apperror.NotFound("A felhasználó nem található")
	}
	return user, nil
}

func (f *fakeUsers) EmailTaken(_ context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUsers) UpdateName(_ context.Context, userID int64, name string) error {
	f.updatedNames[userID] = name
	return nil
}

func (f *fakeUsers) UpdateEmail(_ context.Context, userID int64, email string) error {
	f.updatedEmails[userID] = email
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID int64, hash string) error {
	f.updatedPasswords[userID] = hash
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, userID int64) error {
	f.deleted = append(f.deleted, userID)
	return nil
}

// fakeTokens backs both the issuer and the invalidation path.
type fakeTokens struct {
	existing    map[string]bool
	inserted    map[string]int64
	invalidated []string
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{existing: map[string]bool{}, inserted: map[string]int64{}}
}

func (f *fakeTokens) Exists(_ context.Context, token string) (bool, error) {
	return f.existing[token], nil
}

func (f *fakeTokens) Insert(_ context.Context, userID int64, token string) error {
	f.existing[token] = true
	f.inserted[token] = userID
	return nil
}

func (f *fakeTokens) Invalidate(_ context.Context, token string) error {
	f.invalidated = append(f.invalidated, token)
	return nil
}

// fakeImages records removals; the tests assert cleanup happened.
type fakeImages struct {
	removed []string
}

func (f *fakeImages) Remove(filename string) {
	f.removed = append(f.removed, filename)
}

// fakeDirectory satisfies every identity-lookup slice the services
// declare.
type fakeDirectory struct {
	personIDs      map[int64]int64 // userID → personID
	institutionIDs map[int64]int64 // userID → institutionID

	institutionProfiles map[int64]*model.InstitutionProfile
	personProfiles      map[int64]*model.PersonProfile
	institutionRefs     map[int64]*model.InstitutionRef
	personRefs          map[int64]*model.PersonRef
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		personIDs:           map[int64]int64{},
		institutionIDs:      map[int64]int64{},
		institutionProfiles: map[int64]*model.InstitutionProfile{},
		personProfiles:      map[int64]*model.PersonProfile{},
		institutionRefs:     map[int64]*model.InstitutionRef{},
		personRefs:          map[int64]*model.PersonRef{},
	}
}

func (f *fakeDirectory) PersonIDByUser(_ context.Context, userID int64) (int64, error) {
	id, ok := f.personIDs[userID]
	if !ok {
		return 0, apperror.AccountNotFound()
	}
	return id, nil
}

func (f *fakeDirectory) InstitutionIDByUser(_ context.Context, userID int64) (int64, error) {
	id, ok := f.institutionIDs[userID]
	if !ok {
		return 0, apperror.AccountNotFound()
	}
	return id, nil
}

func (f *fakeDirectory) InstitutionProfile(_ context.Context, institutionID int64) (*model.InstitutionProfile, error) {
	p, ok := f.institutionProfiles[institutionID]
	if !ok {
		return nil, apperror.NotFound("Érvénytelen intézményi azonosító")
	}
	return p, nil
}

func (f *fakeDirectory) PersonProfile(_ context.Context, userID int64) (*model.PersonProfile, error) {
	p, ok := f.personProfiles[userID]
	if !ok {
		return nil, apperror.AccountNotFound()
	}
	return p, nil
}

func (f *fakeDirectory) InstitutionRef(_ context.Context, institutionID int64) (*model.InstitutionRef, error) {
	ref, ok := f.institutionRefs[institutionID]
	if !ok {
		return nil, apperror.NotFound("Érvénytelen intézményi azonosító")
	}
	return ref, nil
}

func (f *fakeDirectory) PersonRef(_ context.Context, personID int64) (*model.PersonRef, error) {
	ref, ok := f.personRefs[personID]
	if !ok {
		return nil, apperror.AccountNotFound()
	}
	return ref, nil
}

type fakeProfileImages struct {
	avatars map[int64]string
	banners map[int64]string
}

func newFakeProfileImages() *fakeProfileImages {
	return &fakeProfileImages{avatars: map[int64]string{}, banners: map[int64]string{}}
}

func (f *fakeProfileImages) Avatar(_ context.Context, _ repository.ProfileKind, userID int64) (string, error) {
	return f.avatars[userID], nil
}

func (f *fakeProfileImages) SetAvatar(_ context.Context, _ repository.ProfileKind, userID int64, filename string) error {
	f.avatars[userID] = filename
	return nil
}

func (f *fakeProfileImages) InstitutionBanner(_ context.Context, userID int64) (string, error) {
	return f.banners[userID], nil
}

func (f *fakeProfileImages) SetInstitutionBanner(_ context.Context, userID int64, filename string) error {
	f.banners[userID] = filename
	return nil
}

type newsCall struct {
	newsID        int64
	institutionID int64
	description   string
	bannerImage   *string
}

type fakeNews struct {
	list    []model.News
	feed    []model.FeedNews
	banners map[int64]*string

	created []newsCall
	updated []newsCall
	deleted []int64

	feedIDs []int64
}

func newFakeNews() *fakeNews {
	return &fakeNews{banners: map[int64]*string{}}
}

func (f *fakeNews) CreateNews(_ context.Context, institutionID int64, description string, bannerImage *string) error {
	f.created = append(f.created, newsCall{institutionID: institutionID, description: description, bannerImage: bannerImage})
	return nil
}

func (f *fakeNews) UpdateNews(_ context.Context, newsID, institutionID int64, description string, bannerImage *string) error {
	f.updated = append(f.updated, newsCall{newsID: newsID, institutionID: institutionID, description: description, bannerImage: bannerImage})
	return nil
}

func (f *fakeNews) DeleteNews(_ context.Context, newsID, _ int64) error {
	f.deleted = append(f.deleted, newsID)
	return nil
}

func (f *fakeNews) NewsBannerImage(_ context.Context, newsID, _ int64) (*string, error) {
	banner, ok := f.banners[newsID]
	if !ok {
		return nil, apperror.NotFound("nem létező bejegyzés")
	}
	return banner, nil
}

func (f *fakeNews) ListNewsByInstitution(_ context.Context, _ int64, _ *int64) ([]model.News, error) {
	return f.list, nil
}

func (f *fakeNews) ListNewsForFeed(_ context.Context, _ int64, institutionIDs []int64) ([]model.FeedNews, error) {
	f.feedIDs = institutionIDs
	return f.feed, nil
}

type fakeEvents struct {
	list    []model.Event
	feed    []model.FeedEvent
	banners map[int64]*string

	created []*model.Event
	updated []*model.Event
	deleted []int64

	feedIDs   []int64
	feedLimit int
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{banners: map[int64]*string{}}
}

func (f *fakeEvents) CreateEvent(_ context.Context, event *model.Event) error {
	event.EventID = int64(len(f.created) + 1)
	f.created = append(f.created, event)
	return nil
}

func (f *fakeEvents) UpdateEvent(_ context.Context, event *model.Event) error {
	f.updated = append(f.updated, event)
	return nil
}

func (f *fakeEvents) DeleteEvent(_ context.Context, eventID, _ int64) error {
	f.deleted = append(f.deleted, eventID)
	return nil
}

func (f *fakeEvents) EventBannerImage(_ context.Context, eventID, _ int64) (*string, error) {
	banner, ok := f.banners[eventID]
	if !ok {
		return nil, apperror.NotFound("nem létező esemény")
	}
	return banner, nil
}

func (f *fakeEvents) ListEventsByInstitution(_ context.Context, _ int64) ([]model.Event, error) {
	return f.list, nil
}

func (f *fakeEvents) ListEventsForInstitutions(_ context.Context, institutionIDs []int64, limit int) ([]model.FeedEvent, error) {
	f.feedIDs = institutionIDs
	f.feedLimit = limit
	return f.feed, nil
}

type contactCall struct {
	kind  repository.ContactKind
	id    int64
	title string
	value string
}

type fakeContacts struct {
	entries map[repository.ContactKind][]model.ContactEntry

	added   []contactCall
	updated []contactCall
	deleted []contactCall
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{entries: map[repository.ContactKind][]model.ContactEntry{}}
}

func (f *fakeContacts) AddContact(_ context.Context, kind repository.ContactKind, _ int64, title, value string) error {
	f.added = append(f.added, contactCall{kind: kind, title: title, value: value})
	return nil
}

func (f *fakeContacts) UpdateContact(_ context.Context, kind repository.ContactKind, id, _ int64, title, value string) error {
	f.updated = append(f.updated, contactCall{kind: kind, id: id, title: title, value: value})
	return nil
}

func (f *fakeContacts) DeleteContact(_ context.Context, kind repository.ContactKind, id, _ int64) error {
	f.deleted = append(f.deleted, contactCall{kind: kind, id: id})
	return nil
}

func (f *fakeContacts) ListContacts(_ context.Context, kind repository.ContactKind, _ int64) ([]model.ContactEntry, error) {
	return f.entries[kind], nil
}

type fakeCategories struct {
	all      []model.Category
	assigned []model.Category
	refs     []model.InstitutionRef

	replaced [][]int64
}

func (f *fakeCategories) ListCategories(_ context.Context) ([]model.Category, error) {
	return f.all, nil
}

func (f *fakeCategories) InstitutionCategories(_ context.Context, _ int64) ([]model.Category, error) {
	return f.assigned, nil
}

func (f *fakeCategories) ReplaceInstitutionCategories(_ context.Context, _ int64, categoryIDs []int64) error {
	f.replaced = append(f.replaced, categoryIDs)
	return nil
}

func (f *fakeCategories) InstitutionsByCategory(_ context.Context, _ int64) ([]model.InstitutionRef, error) {
	return f.refs, nil
}

type edge struct{ a, b int64 }

type fakeSocial struct {
	follows map[edge]bool
	likes   map[edge]bool

	followerCounts map[int64]int64
	likeCounts     map[int64]int64
	followedIDs    []int64
	followedRefs   []model.InstitutionRef
}

func newFakeSocial() *fakeSocial {
	return &fakeSocial{
		follows:        map[edge]bool{},
		likes:          map[edge]bool{},
		followerCounts: map[int64]int64{},
		likeCounts:     map[int64]int64{},
	}
}

func (f *fakeSocial) IsFollowing(_ context.Context, personID, institutionID int64) (bool, error) {
	return f.follows[edge{personID, institutionID}], nil
}

func (f *fakeSocial) Follow(_ context.Context, personID, institutionID int64) error {
	f.follows[edge{personID, institutionID}] = true
	f.followerCounts[institutionID]++
	return nil
}

func (f *fakeSocial) Unfollow(_ context.Context, personID, institutionID int64) error {
	delete(f.follows, edge{personID, institutionID})
	f.followerCounts[institutionID]--
	return nil
}

func (f *fakeSocial) FollowerCount(_ context.Context, institutionID int64) (int64, error) {
	return f.followerCounts[institutionID], nil
}

func (f *fakeSocial) FollowedInstitutionIDs(_ context.Context, _ int64) ([]int64, error) {
	return f.followedIDs, nil
}

func (f *fakeSocial) FollowedInstitutions(_ context.Context, _ int64) ([]model.InstitutionRef, error) {
	return f.followedRefs, nil
}

func (f *fakeSocial) HasLiked(_ context.Context, personID, newsID int64) (bool, error) {
	return f.likes[edge{personID, newsID}], nil
}

func (f *fakeSocial) Like(_ context.Context, personID, newsID int64) error {
	f.likes[edge{personID, newsID}] = true
	f.likeCounts[newsID]++
	return nil
}

func (f *fakeSocial) Unlike(_ context.Context, personID, newsID int64) error {
	delete(f.likes, edge{personID, newsID})
	f.likeCounts[newsID]--
	return nil
}

func (f *fakeSocial) LikeCount(_ context.Context, newsID int64) (int64, error) {
	return f.likeCounts[newsID], nil
}

type sendCall struct {
	fromID int64
	toID   int64
	text   string
}

type fakeMessages struct {
	counts      map[int64]int64
	summaries   []model.RoomSummary
	transcript  []model.Message
	partnerID   int64
	roomID      int64
	sendErr     error
	ensuredRoom int64

	sent []sendCall
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{counts: map[int64]int64{}}
}

func (f *fakeMessages) MessageCount(_ context.Context, _ repository.ProfileKind, profileID int64) (int64, error) {
	return f.counts[profileID], nil
}

func (f *fakeMessages) Rooms(_ context.Context, _ repository.ProfileKind, _ int64) ([]model.RoomSummary, error) {
	return f.summaries, nil
}

func (f *fakeMessages) RoomMessages(_ context.Context, roomID int64, _ repository.ProfileKind, _ int64) ([]model.Message, int64, error) {
	if roomID != f.roomID {
		return nil, 0, apperror.NotFound("nem létező beszélgetés")
	}
	return f.transcript, f.partnerID, nil
}

func (f *fakeMessages) SendFromPerson(_ context.Context, personID, institutionID int64, text string) (int64, *model.Message, error) {
	if f.sendErr != nil {
		return 0, nil, f.sendErr
	}
	f.sent = append(f.sent, sendCall{fromID: personID, toID: institutionID, text: text})
	return f.roomID, &model.Message{MessageID: 1, RoomID: f.roomID, Text: text, FromPerson: true}, nil
}

func (f *fakeMessages) SendFromInstitution(_ context.Context, institutionID, personID int64, text string) (int64, *model.Message, error) {
	if f.sendErr != nil {
		return 0, nil, f.sendErr
	}
	f.sent = append(f.sent, sendCall{fromID: institutionID, toID: personID, text: text})
	return f.roomID, &model.Message{MessageID: 1, RoomID: f.roomID, Text: text, FromPerson: false}, nil
}

func (f *fakeMessages) EnsureRoom(_ context.Context, _, _ int64) (int64, error) {
	f.ensuredRoom++
	return f.roomID, nil
}

func (f *fakeMessages) MessagesForPair(_ context.Context, _, _ int64) ([]model.Message, error) {
	return f.transcript, nil
}
