package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// RecommendationLimit caps GetRecommendations.
const RecommendationLimit = 15

// FeedService assembles reads from the membership and follow graphs. It owns no state.
type FeedService struct {
	postRepo       repository.PostRepository
	membershipRepo repository.MembershipRepository
	followRepo     repository.FollowRepository
	userRepo       repository.UserRepository
}

// FeedOptions pages the feed. A zero Limit returns every post.
type FeedOptions struct {
	Limit  int
	Offset int
}

func NewFeedService(
	postRepo repository.PostRepository,
	membershipRepo repository.MembershipRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
) *FeedService {
	return &FeedService{
		postRepo:       postRepo,
		membershipRepo: membershipRepo,
		followRepo:     followRepo,
		userRepo:       userRepo,
	}
}

// GetFeed returns posts from the user's communities together with posts by the
// users they follow, newest first, each post once.
func (s *FeedService) GetFeed(ctx context.Context, userID uint, opts FeedOptions) ([]models.Post, error) {
	span, ctx := observability.NewSpan(ctx, "FeedService.GetFeed", attribute.Int("user.id", int(userID)))
	defer span.End()

	communityIDs, err := s.membershipRepo.CommunityIDsForUser(ctx, userID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	followedIDs, err := s.followRepo.FollowedIDs(ctx, userID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(
		attribute.Int("feed.communities", len(communityIDs)),
		attribute.Int("feed.followed", len(followedIDs)),
	)

	posts, err := s.postRepo.ListForFeed(ctx, communityIDs, followedIDs, opts.Limit, opts.Offset)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	observability.FeedSize.Observe(float64(len(posts)))
	return posts, nil
}

// GetRecommendations suggests up to RecommendationLimit users followed by people
// the caller follows. The caller and users already followed are never included.
// Users reached through more of the caller's follows rank first.
func (s *FeedService) GetRecommendations(ctx context.Context, userID uint) ([]models.UserSummary, error) {
	span, ctx := observability.NewSpan(ctx, "FeedService.GetRecommendations", attribute.Int("user.id", int(userID)))
	defer span.End()

	followed, err := s.followRepo.FollowedIDs(ctx, userID)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	ids, err := s.followRepo.SecondDegreeIDs(ctx, userID, followed, RecommendationLimit)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if len(ids) == 0 {
		return []models.UserSummary{}, nil
	}

	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return summaries(users), nil
}
