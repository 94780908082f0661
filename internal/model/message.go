package model

import "time"

// MessagingRoom is the single conversation between one person and one
// institution. At most one room exists per (person, institution) pair.
type MessagingRoom struct {
	RoomID        int64
	PersonID      int64
	InstitutionID int64
}

// Message is one entry of a room's transcript. FromPerson records the
// sending side; there are only two parties per room.
type Message struct {
	MessageID  int64
	RoomID     int64
	Text       string
	FromPerson bool
	Timestamp  time.Time
}

// RoomSummary is a room as listed in a conversation overview: the room,
// its latest message, and nothing else. The partner profile is attached
// by the service layer.
type RoomSummary struct {
	RoomID          int64
	PartnerID       int64 // person_id or institution_id of the other side
	LastMessage     string
	LastMessageTime time.Time
	FromPerson      bool
}
