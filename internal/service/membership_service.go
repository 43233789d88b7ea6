package service

import (
	"context"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/repository"
)

// MembershipService is the only writer of membership records and roles.
type MembershipService struct {
	userRepo       repository.UserRepository
	communityRepo  repository.CommunityRepository
	membershipRepo repository.MembershipRepository
	cache          *cache.Store
}

func NewMembershipService(
	userRepo repository.UserRepository,
	communityRepo repository.CommunityRepository,
	membershipRepo repository.MembershipRepository,
	store *cache.Store,
) *MembershipService {
	return &MembershipService{
		userRepo:       userRepo,
		communityRepo:  communityRepo,
		membershipRepo: membershipRepo,
		cache:          store,
	}
}

// Join adds userID to the named community as a MEMBER.
func (s *MembershipService) Join(ctx context.Context, communityName string, userID uint) (*models.Membership, error) {
	community, err := s.communityRepo.GetByName(ctx, communityName)
	if err != nil {
		return nil, err
	}

	membership := &models.Membership{
		CommunityID: community.ID,
		UserID:      userID,
		Role:        models.RoleMember,
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		return nil, err
	}
	if err := invalidateCommunity(ctx, s.cache, community.Name); err != nil {
		return nil, err
	}

	membership.Community = community
	return membership, nil
}

// UpdateRole overwrites the role of targetUsername in the community. Only actors
// ranked above MEMBER may change roles, including their own and the founder's.
func (s *MembershipService) UpdateRole(
	ctx context.Context,
	communityName, targetUsername string,
	role models.MembershipRole,
	actorID uint,
) (*models.Membership, error) {
	if !role.Valid() {
		return nil, models.NewValidationError("role must be one of MEMBER, MODERATOR, FOUNDER")
	}

	target, err := s.userRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, err
	}
	community, err := s.communityRepo.GetByName(ctx, communityName)
	if err != nil {
		return nil, err
	}

	membership, err := s.membershipRepo.ChangeRole(ctx, community.ID, actorID, target.ID, role,
		func(actor *models.Membership) error {
			if !actor.Role.CanManageRoles() {
				return models.ErrInsufficientRole
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	if err := invalidateCommunity(ctx, s.cache, community.Name); err != nil {
		return nil, err
	}

	membership.User = target
	membership.Community = community
	return membership, nil
}

// Leave removes the user's membership. A sole founder may leave; the community
// then has no elevated member until someone is promoted.
func (s *MembershipService) Leave(ctx context.Context, communityName string, userID uint) error {
	community, err := s.communityRepo.GetByName(ctx, communityName)
	if err != nil {
		return err
	}
	if err := s.membershipRepo.Delete(ctx, community.ID, userID); err != nil {
		return err
	}
	return invalidateCommunity(ctx, s.cache, community.Name)
}

func (s *MembershipService) ListMemberships(ctx context.Context, userID uint) ([]models.Membership, error) {
	return s.membershipRepo.ListByUser(ctx, userID)
}
