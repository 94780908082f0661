package service

import (
	"encoding/json"
	"time"

	"github.com/vellt/eduinfo-api/internal/dateformat"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
)

// View structs are the JSON shapes of the public API. Services build
// them from model records; the handlers only serialize. All human-facing
// timestamps are pre-formatted here so the clients never parse dates.

// NewsView is one feed post. Liked is present only in person-facing
// views; the institution's own list omits it.
type NewsView struct {
	NewsID            int64   `json:"news_id"`
	Description       string  `json:"description"`
	Likes             int64   `json:"likes"`
	Liked             *bool   `json:"liked,omitempty"`
	FormattedDatetime string  `json:"formatted_datetime"`
	BannerImage       *string `json:"banner_image"`
}

// FeedNewsView adds the publisher identity for the person's home feed.
type FeedNewsView struct {
	NewsView
	Institution model.InstitutionRef `json:"institution"`
}

// EventView is one event with its pre-formatted calendar fields. The
// raw start/end timestamps appear only in person-facing views.
type EventView struct {
	EventID     int64             `json:"event_id"`
	Title       string            `json:"title"`
	Location    string            `json:"location"`
	Description string            `json:"description"`
	BannerImage *string           `json:"banner_image"`
	Month       string            `json:"month"`
	Day         int               `json:"day"`
	Time        string            `json:"time"`
	Start       *time.Time        `json:"start,omitempty"`
	End         *time.Time        `json:"end,omitempty"`
	Links       []model.EventLink `json:"links"`
}

// EventPublisherView is the institution identity attached to feed
// events; it carries the banner instead of the name.
type EventPublisherView struct {
	InstitutionID int64  `json:"institution_id"`
	AvatarImage   string `json:"avatar_image"`
	BannerImage   string `json:"banner_image"`
}

// FeedEventView is an event in a person's feed or event list.
type FeedEventView struct {
	EventView
	Institution EventPublisherView `json:"institution"`
}

// InstitutionProfileView is the full public page of an institution.
// Email appears only on the institution's own profile; Followed only in
// person-facing views.
type InstitutionProfileView struct {
	InstitutionID         int64            `json:"institution_id"`
	Name                  string           `json:"name"`
	Email                 string           `json:"email,omitempty"`
	AvatarImage           string           `json:"avatar_image"`
	BannerImage           string           `json:"banner_image"`
	Followers             int64            `json:"followers"`
	Description           string           `json:"description"`
	Followed              *bool            `json:"followed,omitempty"`
	News                  []NewsView       `json:"news"`
	Events                []EventView      `json:"events"`
	Emails                []ContactView    `json:"emails"`
	Phones                []ContactView    `json:"phones"`
	Websites              []ContactView    `json:"websites"`
	InstitutionCategories []model.Category `json:"institution_categories"`
}

// PersonProfileView is a person's own profile page.
type PersonProfileView struct {
	AvatarImage          string                 `json:"avatar_image"`
	Name                 string                 `json:"name"`
	Email                string                 `json:"email"`
	FollowedInstitutions []model.InstitutionRef `json:"followed_institutions"`
}

// HomeView is the person's feed: followed institutions' posts plus the
// nearest few events.
type HomeView struct {
	News   []FeedNewsView  `json:"news"`
	Events []FeedEventView `json:"events"`
}

// InstitutionAccountView and PersonAccountView are the admin overview
// rows. Same columns, different id key.
type InstitutionAccountView struct {
	InstitutionID int64  `json:"institution_id"`
	Enabled       bool   `json:"is_enabled"`
	Accepted      bool   `json:"is_accepted"`
	AvatarImage   string `json:"avatar_image"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

type PersonAccountView struct {
	PersonID    int64  `json:"person_id"`
	Enabled     bool   `json:"is_enabled"`
	Accepted    bool   `json:"is_accepted"`
	AvatarImage string `json:"avatar_image"`
	Name        string `json:"name"`
	Email       string `json:"email"`
}

// AccountsView groups both lists; the person key is singular in the
// public contract.
type AccountsView struct {
	Institutions []InstitutionAccountView `json:"institutions"`
	Persons      []PersonAccountView      `json:"person"`
}

// ContactView is one public contact entry. The id and value keys depend
// on the contact kind (email_id/email, phone_id/phone, website_id/
// website), so the three variants keep their own json tags and the
// generic struct marshals through kindTags.
type ContactView struct {
	ID    int64
	Title string
	Value string

	kind repository.ContactKind
}

var contactKeys = map[repository.ContactKind]struct{ id, value string }{
	repository.ContactEmail:   {"email_id", "email"},
	repository.ContactPhone:   {"phone_id", "phone"},
	repository.ContactWebsite: {"website_id", "website"},
}

func (v ContactView) MarshalJSON() ([]byte, error) {
	keys := contactKeys[v.kind]
	return json.Marshal(map[string]any{
		keys.id:    v.ID,
		"title":    v.Title,
		keys.value: v.Value,
	})
}

// RoomView is one conversation in the room overview. Exactly one of
// Person and Institution is set, the partner of the calling side.
type RoomView struct {
	RoomID        int64                 `json:"messaging_room_id"`
	LastMessage   string                `json:"last_message"`
	FormattedDate string                `json:"formatted_date"`
	FromPerson    bool                  `json:"from_person"`
	Person        *model.PersonRef      `json:"person,omitempty"`
	Institution   *model.InstitutionRef `json:"institution,omitempty"`
}

// MessageView is one transcript entry.
type MessageView struct {
	MessageID     int64  `json:"message_id"`
	Message       string `json:"message"`
	FormattedDate string `json:"formatted_date"`
	FromPerson    bool   `json:"from_person"`
}

// TranscriptView is a full conversation, newest message first.
type TranscriptView struct {
	RoomID      int64                 `json:"messaging_room_id"`
	Person      *model.PersonRef      `json:"person,omitempty"`
	Institution *model.InstitutionRef `json:"institution,omitempty"`
	Messages    []MessageView         `json:"messages"`
}

// SentMessageView confirms a send with the room and the stored message.
type SentMessageView struct {
	RoomID  int64       `json:"messaging_room_id"`
	Message MessageView `json:"message"`
}

// VersionView is the cheap change-poll counter for messaging.
type VersionView struct {
	StateVersion int64 `json:"state_version"`
}

// FollowersView and LikesView echo the fresh counter after a graph edit.
type FollowersView struct {
	FollowerCount int64 `json:"follower_count"`
}

type LikesView struct {
	LikeCount int64 `json:"like_count"`
}

// TokenView wraps an issued session token.
type TokenView struct {
	Token string `json:"token"`
}

// RoleView names the caller's resolved role.
type RoleView struct {
	Role string `json:"role"`
}

func newsView(n model.News, withLiked bool) NewsView {
	v := NewsView{
		NewsID:            n.NewsID,
		Description:       n.Description,
		Likes:             n.Likes,
		FormattedDatetime: dateformat.DynamicNow(n.Timestamp),
		BannerImage:       n.BannerImage,
	}
	if withLiked {
		liked := n.LikedByViewer
		v.Liked = &liked
	}
	return v
}

func newsViews(news []model.News, withLiked bool) []NewsView {
	views := make([]NewsView, 0, len(news))
	for _, n := range news {
		views = append(views, newsView(n, withLiked))
	}
	return views
}

func feedNewsViews(news []model.FeedNews) []FeedNewsView {
	views := make([]FeedNewsView, 0, len(news))
	for _, n := range news {
		views = append(views, FeedNewsView{
			NewsView:    newsView(n.News, true),
			Institution: n.Institution,
		})
	}
	return views
}

func eventView(e model.Event, withTimes bool) EventView {
	links := e.Links
	if links == nil {
		links = []model.EventLink{}
	}
	v := EventView{
		EventID:     e.EventID,
		Title:       e.Title,
		Location:    e.Location,
		Description: e.Description,
		BannerImage: e.BannerImage,
		Month:       dateformat.MonthShort(e.Start),
		Day:         dateformat.Day(e.Start),
		Time:        dateformat.TimeRange(e.Start, e.End),
		Links:       links,
	}
	if withTimes {
		start, end := e.Start, e.End
		v.Start, v.End = &start, &end
	}
	return v
}

func eventViews(events []model.Event, withTimes bool) []EventView {
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, eventView(e, withTimes))
	}
	return views
}

func feedEventViews(events []model.FeedEvent) []FeedEventView {
	views := make([]FeedEventView, 0, len(events))
	for _, e := range events {
		views = append(views, FeedEventView{
			EventView: eventView(e.Event, true),
			Institution: EventPublisherView{
				InstitutionID: e.Institution.InstitutionID,
				AvatarImage:   e.Institution.AvatarImage,
				BannerImage:   e.BannerRef,
			},
		})
	}
	return views
}

func contactViews(kind repository.ContactKind, entries []model.ContactEntry) []ContactView {
	views := make([]ContactView, 0, len(entries))
	for _, e := range entries {
		views = append(views, ContactView{ID: e.ID, Title: e.Title, Value: e.Value, kind: kind})
	}
	return views
}

func messageView(m model.Message) MessageView {
	return MessageView{
		MessageID:     m.MessageID,
		Message:       m.Text,
		FormattedDate: dateformat.DynamicNow(m.Timestamp),
		FromPerson:    m.FromPerson,
	}
}

func messageViews(messages []model.Message) []MessageView {
	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, messageView(m))
	}
	return views
}
