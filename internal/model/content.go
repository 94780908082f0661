package model

import "time"

// News is a feed post published by an institution. BannerImage is nil
// when the post was created without an attachment (no default image is
// substituted for posts).
type News struct {
	NewsID        int64
	InstitutionID int64
	Description   string
	BannerImage   *string
	Timestamp     time.Time
	Likes         int64
	LikedByViewer bool
}

// Event is a scheduled happening published by an institution, with an
// arbitrary number of external links.
type Event struct {
	EventID       int64
	InstitutionID int64
	Start         time.Time
	End           time.Time
	Title         string
	Location      string
	Description   string
	BannerImage   *string
	Links         []EventLink
}

// EventLink is one external link attached to an event.
type EventLink struct {
	LinkID int64  `json:"link_id"`
	Title  string `json:"title"`
	Link   string `json:"link"`
}

// ContactEntry is one public contact item (email, phone or website) of
// an institution. The Value column name depends on the contact kind;
// the JSON key is set by the handler views.
type ContactEntry struct {
	ID    int64
	Title string
	Value string
}

// Category is a row of the seeded institution-category reference table.
type Category struct {
	ID   int64  `json:"category_id"`
	Name string `json:"category"`
}

// FeedNews is a news post as it appears in a person's feed, carrying
// the publishing institution's identity.
type FeedNews struct {
	News
	Institution InstitutionRef
}

// FeedEvent is an event as it appears in a person's feed or event list.
type FeedEvent struct {
	Event
	Institution InstitutionRef
	BannerRef   string // the institution's banner, shown alongside its avatar
}
