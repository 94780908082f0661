package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/dateformat"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
)

// MessagingDirectory resolves the caller and the partner identities of
// a conversation.
type MessagingDirectory interface {
	PersonIDByUser(ctx context.Context, userID int64) (int64, error)
	InstitutionIDByUser(ctx context.Context, userID int64) (int64, error)
	PersonRef(ctx context.Context, personID int64) (*model.PersonRef, error)
	InstitutionRef(ctx context.Context, institutionID int64) (*model.InstitutionRef, error)
}

// MessagingService serves both sides of the two-party conversations.
// Every method takes the caller's profile kind; the partner profile in
// the views is always the other side.
type MessagingService struct {
	messages repository.MessageRepository
	profiles MessagingDirectory
	logger   *slog.Logger
}

func NewMessagingService(
	messages repository.MessageRepository,
	profiles MessagingDirectory,
	logger *slog.Logger,
) *MessagingService {
	return &MessagingService{
		messages: messages,
		profiles: profiles,
		logger:   logger,
	}
}

// Version is the cheap change-poll counter: the total message count
// across the caller's rooms. Clients refetch when it moves.
func (s *MessagingService) Version(ctx context.Context, kind repository.ProfileKind, userID int64) (*VersionView, error) {
	profileID, err := s.profileID(ctx, kind, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.messages.MessageCount(ctx, kind, profileID)
	if err != nil {
		return nil, fmt.Errorf("service: counting messages: %w", err)
	}
	return &VersionView{StateVersion: count}, nil
}

// Rooms lists the caller's conversations with their latest message,
// most recent first.
func (s *MessagingService) Rooms(ctx context.Context, kind repository.ProfileKind, userID int64) ([]RoomView, error) {
	profileID, err := s.profileID(ctx, kind, userID)
	if err != nil {
		return nil, err
	}
	summaries, err := s.messages.Rooms(ctx, kind, profileID)
	if err != nil {
		return nil, fmt.Errorf("service: listing rooms: %w", err)
	}

	views := make([]RoomView, 0, len(summaries))
	for _, sum := range summaries {
		view := RoomView{
			RoomID:        sum.RoomID,
			LastMessage:   sum.LastMessage,
			FormattedDate: formatRoomTime(sum),
			FromPerson:    sum.FromPerson,
		}
		if err := s.attachPartner(ctx, kind, sum.PartnerID, &view.Person, &view.Institution); err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Room returns one transcript, newest message first. Only the two
// members of the room can read it.
func (s *MessagingService) Room(ctx context.Context, kind repository.ProfileKind, userID, roomID int64) (*TranscriptView, error) {
	profileID, err := s.profileID(ctx, kind, userID)
	if err != nil {
		return nil, err
	}
	messages, partnerID, err := s.messages.RoomMessages(ctx, roomID, kind, profileID)
	if err != nil {
		return nil, err
	}

	view := &TranscriptView{
		RoomID:   roomID,
		Messages: messageViews(messages),
	}
	if err := s.attachPartner(ctx, kind, partnerID, &view.Person, &view.Institution); err != nil {
		return nil, err
	}
	return view, nil
}

// SendFromPerson appends to the pair's conversation, opening the room
// first when it does not exist yet.
func (s *MessagingService) SendFromPerson(ctx context.Context, userID, institutionID int64, text string) (*SentMessageView, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.ValidationFailed([]string{"Hibás bemeneti adat"})
	}

	personID, err := s.profiles.PersonIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	roomID, message, err := s.messages.SendFromPerson(ctx, personID, institutionID, text)
	if err != nil {
		return nil, err
	}

	s.logger.Info("message sent",
		slog.Int64("roomID", roomID),
		slog.Bool("fromPerson", true),
	)
	return &SentMessageView{RoomID: roomID, Message: messageView(*message)}, nil
}

// SendFromInstitution replies into an existing conversation. An
// institution cannot open a room; only persons start conversations.
func (s *MessagingService) SendFromInstitution(ctx context.Context, userID, personID int64, text string) (*SentMessageView, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperror.ValidationFailed([]string{"Hibás bemeneti adat"})
	}

	institutionID, err := s.profiles.InstitutionIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	roomID, message, err := s.messages.SendFromInstitution(ctx, institutionID, personID, text)
	if err != nil {
		return nil, err
	}

	s.logger.Info("message sent",
		slog.Int64("roomID", roomID),
		slog.Bool("fromPerson", false),
	)
	return &SentMessageView{RoomID: roomID, Message: messageView(*message)}, nil
}

// FindRoomWithInstitution returns the person's conversation with the
// institution, creating the (possibly empty) room on first contact.
func (s *MessagingService) FindRoomWithInstitution(ctx context.Context, userID, institutionID int64) (*TranscriptView, error) {
	personID, err := s.profiles.PersonIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	roomID, err := s.messages.EnsureRoom(ctx, personID, institutionID)
	if err != nil {
		return nil, fmt.Errorf("service: ensuring room: %w", err)
	}
	messages, err := s.messages.MessagesForPair(ctx, personID, institutionID)
	if err != nil {
		return nil, fmt.Errorf("service: loading transcript: %w", err)
	}

	institution, err := s.profiles.InstitutionRef(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	return &TranscriptView{
		RoomID:      roomID,
		Institution: institution,
		Messages:    messageViews(messages),
	}, nil
}

// formatRoomTime leaves the date empty for rooms that exist but carry
// no messages yet.
func formatRoomTime(sum model.RoomSummary) string {
	if sum.LastMessageTime.IsZero() {
		return ""
	}
	return dateformat.DynamicNow(sum.LastMessageTime)
}

func (s *MessagingService) profileID(ctx context.Context, kind repository.ProfileKind, userID int64) (int64, error) {
	if kind == repository.ProfileInstitution {
		return s.profiles.InstitutionIDByUser(ctx, userID)
	}
	return s.profiles.PersonIDByUser(ctx, userID)
}

// attachPartner fills in the partner identity slot opposite to the
// caller's kind.
func (s *MessagingService) attachPartner(ctx context.Context, kind repository.ProfileKind, partnerID int64, person **model.PersonRef, institution **model.InstitutionRef) error {
	if kind == repository.ProfilePerson {
		ref, err := s.profiles.InstitutionRef(ctx, partnerID)
		if err != nil {
			return err
		}
		*institution = ref
		return nil
	}
	ref, err := s.profiles.PersonRef(ctx, partnerID)
	if err != nil {
		return err
	}
	*person = ref
	return nil
}
