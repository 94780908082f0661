package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
)

// EventInput carries the parsed fields of an event create/update.
type EventInput struct {
	Start       time.Time
	End         time.Time
	Title       string
	Location    string
	Description string
	BannerImage *string
	Links       []model.EventLink
}

// InstitutionDirectory resolves institution identities for the
// institution surface.
type InstitutionDirectory interface {
	InstitutionIDByUser(ctx context.Context, userID int64) (int64, error)
	InstitutionProfile(ctx context.Context, institutionID int64) (*model.InstitutionProfile, error)
}

// InstitutionService covers the institution's own surface (news, events,
// contacts, categories) and the public institution page that persons
// and the admin overview read too.
type InstitutionService struct {
	profiles   InstitutionDirectory
	news       repository.NewsRepository
	events     repository.EventRepository
	contacts   repository.ContactRepository
	categories repository.CategoryRepository
	social     repository.SocialRepository
	images     ImageRemover
	logger     *slog.Logger
}

func NewInstitutionService(
	profiles InstitutionDirectory,
	news repository.NewsRepository,
	events repository.EventRepository,
	contacts repository.ContactRepository,
	categories repository.CategoryRepository,
	social repository.SocialRepository,
	images ImageRemover,
	logger *slog.Logger,
) *InstitutionService {
	return &InstitutionService{
		profiles:   profiles,
		news:       news,
		events:     events,
		contacts:   contacts,
		categories: categories,
		social:     social,
		images:     images,
		logger:     logger,
	}
}

// Profile is the institution's own page, registration email included.
func (s *InstitutionService) Profile(ctx context.Context, userID int64) (*InstitutionProfileView, error) {
	institutionID, err := s.profiles.InstitutionIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.profileView(ctx, institutionID, true, nil)
}

// PublicProfile is the institution page as anyone else sees it. With a
// non-nil viewer the news carry the viewer's liked flags and the
// Followed field is filled in.
func (s *InstitutionService) PublicProfile(ctx context.Context, institutionID int64, viewerPersonID *int64) (*InstitutionProfileView, error) {
	return s.profileView(ctx, institutionID, false, viewerPersonID)
}

func (s *InstitutionService) profileView(ctx context.Context, institutionID int64, ownEmail bool, viewerPersonID *int64) (*InstitutionProfileView, error) {
	profile, err := s.profiles.InstitutionProfile(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	followers, err := s.social.FollowerCount(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("service: counting followers: %w", err)
	}

	news, err := s.news.ListNewsByInstitution(ctx, institutionID, viewerPersonID)
	if err != nil {
		return nil, fmt.Errorf("service: listing news: %w", err)
	}
	events, err := s.events.ListEventsByInstitution(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("service: listing events: %w", err)
	}

	emails, err := s.contacts.ListContacts(ctx, repository.ContactEmail, institutionID)
	if err != nil {
		return nil, fmt.Errorf("service: listing emails: %w", err)
	}
	phones, err := s.contacts.ListContacts(ctx, repository.ContactPhone, institutionID)
	if err != nil {
		return nil, fmt.Errorf("service: listing phones: %w", err)
	}
	websites, err := s.contacts.ListContacts(ctx, repository.ContactWebsite, institutionID)
	if err != nil {
		return nil, fmt.Errorf("service: listing websites: %w", err)
	}

	cats, err := s.categories.InstitutionCategories(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("service: listing categories: %w", err)
	}

	view := &InstitutionProfileView{
		InstitutionID:         profile.InstitutionID,
		Name:                  profile.Name,
		AvatarImage:           profile.AvatarImage,
		BannerImage:           profile.BannerImage,
		Followers:             followers,
		Description:           profile.Description,
		News:                  newsViews(news, viewerPersonID != nil),
		Events:                eventViews(events, viewerPersonID != nil),
		Emails:                contactViews(repository.ContactEmail, emails),
		Phones:                contactViews(repository.ContactPhone, phones),
		Websites:              contactViews(repository.ContactWebsite, websites),
		InstitutionCategories: cats,
	}
	if ownEmail {
		view.Email = profile.Email
	}
	if viewerPersonID != nil {
		followed, err := s.social.IsFollowing(ctx, *viewerPersonID, institutionID)
		if err != nil {
			return nil, fmt.Errorf("service: checking follow state: %w", err)
		}
		view.Followed = &followed
	}
	return view, nil
}

// CreateNews publishes a post and returns the refreshed list. A post
// without an image stays imageless, no default is substituted.
func (s *InstitutionService) CreateNews(ctx context.Context, userID int64, description string, bannerImage *string) ([]NewsView, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apperror.BadInput()
	}

	institutionID, err := s.profiles.InstitutionIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.news.CreateNews(ctx, institutionID, description, bannerImage); err != nil {
		return nil, fmt.Errorf("service: creating news: %w", err)
	}

	s.logger.Info("news created", slog.Int64("institutionID", institutionID))
	return s.ownNews(ctx, institutionID)
}

// UpdateNews rewrites the post with the submitted fields. The stored
// image is replaced by the incoming one, absent means removed; the old
// file is deleted afterwards.
func (s *InstitutionService) UpdateNews(ctx context.Context, userID, newsID int64, description string, bannerImage *string) ([]NewsView, error) {
	if strings.TrimSpace(description) == "" {
		return nil, apperror.BadInput()
	}

	institutionID, err := s.profiles.InstitutionIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	old, err := s.news.NewsBannerImage(ctx, newsID, institutionID)
	if err != nil {
		return nil, err
	}
	if err := s.news.UpdateNews(ctx, newsID, institutionID, description, bannerImage); err != nil {
		return nil, err
	}
	if old != nil {
		s.images.Remove(*old)
	}

	return s.ownNews(ctx, institutionID)
}

// DeleteNews removes the post and its stored image.
func (s *InstitutionService) DeleteNews(ctx context.Context, userID, newsID int64) ([]NewsView, error) {
	institutionID, err := s.profiles.InstitutionIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	banner, err := s.news.NewsBannerImage(ctx, newsID, institutionID)
	if err != nil {
		return nil, err
	}
	if err := s.news.DeleteNews(ctx, newsID, institutionID); err != nil {
		return nil, err
	}
	if banner != nil {
		s.images.Remove(*banner)
	}

	return s.ownNews(ctx, institutionID)
}

func (s *InstitutionService) ownNews(ctx context.Context, institutionID int64) ([]NewsView, error) {
	news, err := s.news.ListNewsByInstitution(ctx, institutionID, nil)
	if err != nil {
		return nil, fmt.Errorf("service: listing news: %w", err)
	}
	return newsViews(news, false), nil
}

// CreateEvent publishes an event with its links and returns the
// refreshed event list.
func (s *InstitutionService) CreateEvent(ctx context.Context, userID int64, input EventInput) ([]EventView, error) {
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	institutionID, err := s.profiles.InstitutionIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	event := eventFromInput(institutionID, 0, input)
	if err := s.events.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("service: creating event: %w", err)
	}

	s.logger.Info("event created",
		slog.Int64("institutionID", institutionID),
		slog.Int64("eventID", event.EventID),
	)
	return s.ownEvents(ctx, institutionID)
}

// UpdateEvent rewrites the event and replaces its whole link set in one
// transaction. A new image is mandatory; the replaced file is removed.
func (s *InstitutionService) UpdateEvent(ctx context.Context, userID, eventID int64, input EventInput) ([]EventView, error) {
	if input.BannerImage == nil {
		return nil, apperror.Conflict("Kötelező képet megadni")
	}
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	institutionID, err := s.profiles.InstitutionIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	old, err := s.events.EventBannerImage(ctx, eventID, institutionID)
	if err != nil {
		return nil, err
	}
	if err := s.events.UpdateEvent(ctx, eventFromInput(institutionID, eventID, input)); err != nil {
		return nil, err
	}
	if old != nil {
		s.images.Remove(*old)
	}

	return s.ownEvents(ctx, institutionID)
}

// DeleteEvent removes the event, its links (cascade) and its image.
func (s *InstitutionService) DeleteEvent(ctx context.Context, userID, eventID int64) ([]EventView, error) {
	institutionID, err := s.profiles.InstitutionIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	banner, err := s.events.EventBannerImage(ctx, eventID, institutionID)
	if err != nil {
		return nil, err
	}
	if err := s.events.DeleteEvent(ctx, eventID, institutionID); err != nil {
		return nil, err
	}
	if banner != nil {
		s.images.Remove(*banner)
	}

	return s.ownEvents(ctx, institutionID)
}

func (s *InstitutionService) ownEvents(ctx context.Context, institutionID int64) ([]EventView, error) {
	events, err := s.events.ListEventsByInstitution(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("service: listing events: %w", err)
	}
	return eventViews(events, false), nil
}

// Categories returns the seeded reference list.
func (s *InstitutionService) Categories(ctx context.Context) ([]model.Category, error) {
	cats, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing categories: %w", err)
	}
	return cats, nil
}

// ReplaceCategories swaps the institution's category links for the
// submitted set and returns the fresh assignment.
func (s *InstitutionService) ReplaceCategories(ctx context.Context, userID int64, categoryIDs []int64) ([]model.Category, error) {
	institutionID, err := s.profiles.InstitutionIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.categories.ReplaceInstitutionCategories(ctx, institutionID, categoryIDs); err != nil {
		return nil, fmt.Errorf("service: replacing categories: %w", err)
	}

	cats, err := s.categories.InstitutionCategories(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("service: listing categories: %w", err)
	}
	return cats, nil
}

// AddContact appends one public contact entry and returns the kind's
// full list.
func (s *InstitutionService) AddContact(ctx context.Context, userID int64, kind repository.ContactKind, title, value string) ([]ContactView, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(value) == "" {
		return nil, apperror.BadInput()
	}

	institutionID, err := s.profiles.InstitutionIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.contacts.AddContact(ctx, kind, institutionID, title, value); err != nil {
		return nil, fmt.Errorf("service: adding contact: %w", err)
	}
	return s.listContacts(ctx, kind, institutionID)
}

// UpdateContact rewrites one entry; unknown ids are rejected.
func (s *InstitutionService) UpdateContact(ctx context.Context, userID int64, kind repository.ContactKind, id int64, title, value string) ([]ContactView, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(value) == "" {
		return nil, apperror.BadInput()
	}

	institutionID, err := s.profiles.InstitutionIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.contacts.UpdateContact(ctx, kind, id, institutionID, title, value); err != nil {
		return nil, err
	}
	return s.listContacts(ctx, kind, institutionID)
}

// DeleteContact removes one entry; unknown ids are rejected.
func (s *InstitutionService) DeleteContact(ctx context.Context, userID int64, kind repository.ContactKind, id int64) ([]ContactView, error) {
	institutionID, err := s.profiles.InstitutionIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.contacts.DeleteContact(ctx, kind, id, institutionID); err != nil {
		return nil, err
	}
	return s.listContacts(ctx, kind, institutionID)
}

func (s *InstitutionService) listContacts(ctx context.Context, kind repository.ContactKind, institutionID int64) ([]ContactView, error) {
	entries, err := s.contacts.ListContacts(ctx, kind, institutionID)
	if err != nil {
		return nil, fmt.Errorf("service: listing contacts: %w", err)
	}
	return contactViews(kind, entries), nil
}

func validateEventInput(input EventInput) error {
	var details []string
	if strings.TrimSpace(input.Title) == "" {
		details = append(details, "Töltsd ki a címet!")
	}
	if strings.TrimSpace(input.Location) == "" {
		details = append(details, "Töltsd ki a helyszínt!")
	}
	if input.Start.IsZero() || input.End.IsZero() {
		details = append(details, "érvénytelen bemeneti adat")
	} else if input.End.Before(input.Start) {
		details = append(details, "az esemény vége nem előzheti meg a kezdetét")
	}
	if len(details) > 0 {
		return apperror.ValidationFailed(details)
	}
	return nil
}

func eventFromInput(institutionID, eventID int64, input EventInput) *model.Event {
	links := input.Links
	if links == nil {
		links = []model.EventLink{}
	}
	return &model.Event{
		EventID:       eventID,
		InstitutionID: institutionID,
		Start:         input.Start,
		End:           input.End,
		Title:         input.Title,
		Location:      input.Location,
		Description:   input.Description,
		BannerImage:   input.BannerImage,
		Links:         links,
	}
}
