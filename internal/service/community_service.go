package service

import (
	"context"
	"strings"
	"time"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type CommunityService struct {
	communityRepo repository.CommunityRepository
	cache         *cache.Store
	ttl           time.Duration
}

type CreateCommunityInput struct {
	UserID      uint
	Name        string
	Description string
}

type ListCommunitiesInput struct {
	Query  string
	Limit  int
	Offset int
}

// NewCommunityService returns a service that caches community detail for ttl.
// A zero ttl uses cache.CommunityTTL.
func NewCommunityService(communityRepo repository.CommunityRepository, store *cache.Store, ttl time.Duration) *CommunityService {
	if ttl <= 0 {
		ttl = cache.CommunityTTL
	}
	return &CommunityService{communityRepo: communityRepo, cache: store, ttl: ttl}
}

// CreateCommunity creates the community with in.UserID as its FOUNDER.
func (s *CommunityService) CreateCommunity(ctx context.Context, in CreateCommunityInput) (*models.Community, error) {
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateCommunityName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	community := &models.Community{Name: name, Description: strings.TrimSpace(in.Description)}
	if err := s.communityRepo.CreateWithFounder(ctx, community, in.UserID); err != nil {
		return nil, err
	}
	// A miss for this name may have been cached before the community existed.
	if err := invalidateCommunity(ctx, s.cache, community.Name); err != nil {
		return nil, err
	}
	return community, nil
}

// GetCommunity returns the community detail through the read-through cache.
func (s *CommunityService) GetCommunity(ctx context.Context, name string) (*models.CommunityDetail, error) {
	span, ctx := observability.NewSpan(ctx, "CommunityService.GetCommunity",
		attribute.String("community.key", models.CommunityKey(name)))
	defer span.End()

	var detail models.CommunityDetail
	err := s.cache.Aside(ctx, cache.CommunityKey(name), &detail, s.ttl, func(ctx context.Context) error {
		community, err := s.communityRepo.GetDetail(ctx, name)
		if err != nil {
			return err
		}
		detail = *models.NewCommunityDetail(community)
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	return &detail, nil
}

func (s *CommunityService) ListCommunities(ctx context.Context, in ListCommunitiesInput) ([]models.Community, error) {
	return s.communityRepo.Search(ctx, in.Query, in.Limit, in.Offset)
}
