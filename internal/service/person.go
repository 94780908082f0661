package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vellt/eduinfo-api/internal/apperror"
	"github.com/vellt/eduinfo-api/internal/model"
	"github.com/vellt/eduinfo-api/internal/repository"
)

// homeEventLimit caps the home feed at the nearest few events; the full
// list lives on its own route.
const homeEventLimit = 3

// PersonDirectory resolves person identities for the person surface.
type PersonDirectory interface {
	PersonIDByUser(ctx context.Context, userID int64) (int64, error)
	PersonProfile(ctx context.Context, userID int64) (*model.PersonProfile, error)
}

// PersonService covers the person's surface: the feed, the follow and
// like graph, and the person's own profile page.
type PersonService struct {
	profiles   PersonDirectory
	news       repository.NewsRepository
	events     repository.EventRepository
	categories repository.CategoryRepository
	social     repository.SocialRepository
	logger     *slog.Logger
}

func NewPersonService(
	profiles PersonDirectory,
	news repository.NewsRepository,
	events repository.EventRepository,
	categories repository.CategoryRepository,
	social repository.SocialRepository,
	logger *slog.Logger,
) *PersonService {
	return &PersonService{
		profiles:   profiles,
		news:       news,
		events:     events,
		categories: categories,
		social:     social,
		logger:     logger,
	}
}

// PersonID resolves the caller's profile id; the handlers use it to
// personalize institution pages.
func (s *PersonService) PersonID(ctx context.Context, userID int64) (int64, error) {
	return s.profiles.PersonIDByUser(ctx, userID)
}

// Home builds the feed: every post of the followed institutions,
// newest first, plus the nearest few upcoming events.
func (s *PersonService) Home(ctx context.Context, userID int64) (*HomeView, error) {
	personID, err := s.profiles.PersonIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	followed, err := s.social.FollowedInstitutionIDs(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("service: loading followed ids: %w", err)
	}

	news, err := s.news.ListNewsForFeed(ctx, personID, followed)
	if err != nil {
		return nil, fmt.Errorf("service: loading feed news: %w", err)
	}
	events, err := s.events.ListEventsForInstitutions(ctx, followed, homeEventLimit)
	if err != nil {
		return nil, fmt.Errorf("service: loading feed events: %w", err)
	}

	return &HomeView{
		News:   feedNewsViews(news),
		Events: feedEventViews(events),
	}, nil
}

// Events lists every event of the followed institutions, soonest first.
func (s *PersonService) Events(ctx context.Context, userID int64) ([]FeedEventView, error) {
	personID, err := s.profiles.PersonIDByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	followed, err := s.social.FollowedInstitutionIDs(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("service: loading followed ids: %w", err)
	}

	events, err := s.events.ListEventsForInstitutions(ctx, followed, 0)
	if err != nil {
		return nil, fmt.Errorf("service: loading events: %w", err)
	}
	return feedEventViews(events), nil
}

// Categories returns the seeded reference list.
func (s *PersonService) Categories(ctx context.Context) ([]model.Category, error) {
	cats, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: listing categories: %w", err)
	}
	return cats, nil
}

// InstitutionsByCategory lists the browsable institutions of one
// category. Pending and disabled institutions are filtered out.
func (s *PersonService) InstitutionsByCategory(ctx context.Context, categoryID int64) ([]model.InstitutionRef, error) {
	refs, err := s.categories.InstitutionsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("service: listing institutions: %w", err)
	}
	return refs, nil
}

// Follow adds the edge and returns the fresh follower count. Following
// twice is rejected.
func (s *PersonService) Follow(ctx context.Context, userID, institutionID int64) (int64, error) {
	personID, err := s.profiles.PersonIDByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	following, err := s.social.IsFollowing(ctx, personID, institutionID)
	if err != nil {
		return 0, fmt.Errorf("service: checking follow state: %w", err)
	}
	if following {
		return 0, apperror.Conflict("Már követed az inézményt")
	}

	if err := s.social.Follow(ctx, personID, institutionID); err != nil {
		return 0, fmt.Errorf("service: following: %w", err)
	}

	s.logger.Info("institution followed",
		slog.Int64("personID", personID),
		slog.Int64("institutionID", institutionID),
	)
	return s.social.FollowerCount(ctx, institutionID)
}

// Unfollow removes the edge; removing a missing edge is rejected.
func (s *PersonService) Unfollow(ctx context.Context, userID, institutionID int64) (int64, error) {
	personID, err := s.profiles.PersonIDByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	following, err := s.social.IsFollowing(ctx, personID, institutionID)
	if err != nil {
		return 0, fmt.Errorf("service: checking follow state: %w", err)
	}
	if !following {
		return 0, apperror.Conflict("már kikövetted")
	}

	if err := s.social.Unfollow(ctx, personID, institutionID); err != nil {
		return 0, err
	}
	return s.social.FollowerCount(ctx, institutionID)
}

// Like records one like and returns the post's fresh like count. A
// second like on the same post is rejected.
func (s *PersonService) Like(ctx context.Context, userID, newsID int64) (int64, error) {
	personID, err := s.profiles.PersonIDByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	liked, err := s.social.HasLiked(ctx, personID, newsID)
	if err != nil {
		return 0, fmt.Errorf("service: checking like state: %w", err)
	}
	if liked {
		return 0, apperror.Conflict("Két lájkot nem adhatsz le egy bejegyzésre")
	}

	if err := s.social.Like(ctx, personID, newsID); err != nil {
		return 0, fmt.Errorf("service: liking: %w", err)
	}
	return s.social.LikeCount(ctx, newsID)
}

// Unlike withdraws a like; withdrawing a missing like is rejected.
func (s *PersonService) Unlike(ctx context.Context, userID, newsID int64) (int64, error) {
	personID, err := s.profiles.PersonIDByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	liked, err := s.social.HasLiked(ctx, personID, newsID)
	if err != nil {
		return 0, fmt.Errorf("service: checking like state: %w", err)
	}
	if !liked {
		return 0, apperror.Conflict("már vissza van vonva a lájk")
	}

	if err := s.social.Unlike(ctx, personID, newsID); err != nil {
		return 0, err
	}
	return s.social.LikeCount(ctx, newsID)
}

// Profile is the person's own page with the followed institutions.
func (s *PersonService) Profile(ctx context.Context, userID int64) (*PersonProfileView, error) {
	profile, err := s.profiles.PersonProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	followed, err := s.social.FollowedInstitutions(ctx, profile.PersonID)
	if err != nil {
		return nil, fmt.Errorf("service: listing followed institutions: %w", err)
	}

	return &PersonProfileView{
		AvatarImage:          profile.AvatarImage,
		Name:                 profile.Name,
		Email:                profile.Email,
		FollowedInstitutions: followed,
	}, nil
}
