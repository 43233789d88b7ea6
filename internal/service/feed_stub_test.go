package service

import (
	"context"
	"errors"
	"testing"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The stubs embed the interface so unexpected calls panic.

type membershipRepoStub struct {
	repository.MembershipRepository
	communityIDsFn func(context.Context, uint) ([]uint, error)
}

func (s *membershipRepoStub) CommunityIDsForUser(ctx context.Context, userID uint) ([]uint, error) {
	return s.communityIDsFn(ctx, userID)
}

type followRepoStub struct {
	repository.FollowRepository
	followedIDsFn  func(context.Context, uint) ([]uint, error)
	secondDegreeFn func(context.Context, uint, []uint, int) ([]uint, error)
}

func (s *followRepoStub) FollowedIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followedIDsFn(ctx, userID)
}

func (s *followRepoStub) SecondDegreeIDs(ctx context.Context, userID uint, followed []uint, limit int) ([]uint, error) {
	return s.secondDegreeFn(ctx, userID, followed, limit)
}

type postRepoStub struct {
	repository.PostRepository
	listForFeedFn func(context.Context, []uint, []uint, int, int) ([]models.Post, error)
}

func (s *postRepoStub) ListForFeed(ctx context.Context, communityIDs, authorIDs []uint, limit, offset int) ([]models.Post, error) {
	return s.listForFeedFn(ctx, communityIDs, authorIDs, limit, offset)
}

type userRepoStub struct {
	repository.UserRepository
	listByIDsFn func(context.Context, []uint) ([]models.User, error)
}

func (s *userRepoStub) ListByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	return s.listByIDsFn(ctx, ids)
}

func TestFeedService_GetFeedPassesBothGraphs(t *testing.T) {
	t.Parallel()

	memberships := &membershipRepoStub{communityIDsFn: func(_ context.Context, userID uint) ([]uint, error) {
		assert.Equal(t, uint(7), userID)
		return []uint{1, 2}, nil
	}}
	follows := &followRepoStub{followedIDsFn: func(_ context.Context, _ uint) ([]uint, error) {
		return []uint{30}, nil
	}}
	posts := &postRepoStub{listForFeedFn: func(_ context.Context, communityIDs, authorIDs []uint, limit, offset int) ([]models.Post, error) {
		assert.Equal(t, []uint{1, 2}, communityIDs)
		assert.Equal(t, []uint{30}, authorIDs)
		assert.Equal(t, 20, limit)
		assert.Equal(t, 40, offset)
		return []models.Post{{ID: 5}}, nil
	}}

	svc := NewFeedService(posts, memberships, follows, nil)
	feed, err := svc.GetFeed(context.Background(), 7, FeedOptions{Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Len(t, feed, 1)
}

func TestFeedService_GetFeedPropagatesErrors(t *testing.T) {
	t.Parallel()

	boom := models.NewInternalError(errors.New("boom"))
	memberships := &membershipRepoStub{communityIDsFn: func(context.Context, uint) ([]uint, error) {
		return nil, boom
	}}

	svc := NewFeedService(nil, memberships, nil, nil)
	_, err := svc.GetFeed(context.Background(), 1, FeedOptions{})
	assert.ErrorIs(t, err, boom)
}

func TestFeedService_RecommendationsSkipLookupWhenEmpty(t *testing.T) {
	t.Parallel()

	follows := &followRepoStub{
		followedIDsFn: func(context.Context, uint) ([]uint, error) { return nil, nil },
		secondDegreeFn: func(_ context.Context, _ uint, followed []uint, limit int) ([]uint, error) {
			assert.Empty(t, followed)
			assert.Equal(t, RecommendationLimit, limit)
			return []uint{}, nil
		},
	}
	users := &userRepoStub{listByIDsFn: func(context.Context, []uint) ([]models.User, error) {
		t.Fatal("ListByIDs must not be called without candidates")
		return nil, nil
	}}

	svc := NewFeedService(nil, nil, follows, users)
	recs, err := svc.GetRecommendations(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}
