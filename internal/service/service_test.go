package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-with-enough-length-0123456789"

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ActivityEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event models.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Events() []models.ActivityEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.ActivityEvent(nil), p.events...)
}

type testEnv struct {
	db        *gorm.DB
	mr        *miniredis.Miniredis
	store     *cache.Store
	publisher *recordingPublisher

	users       *UserService
	communities *CommunityService
	memberships *MembershipService
	posts       *PostService
	engagement  *EngagementService
	feed        *FeedService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	mr, rdb := testutil.NewRedis(t)
	store := cache.NewStore(rdb, "community")
	pub := &recordingPublisher{}

	userRepo := repository.NewUserRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	followRepo := repository.NewFollowRepository(db)
	userRepos := UserRepositories{
		Users:       userRepo,
		Follows:     followRepo,
		Posts:       postRepo,
		Memberships: membershipRepo,
		Activities:  activityRepo,
	}

	return &testEnv{
		db:          db,
		mr:          mr,
		store:       store,
		publisher:   pub,
		users:       NewUserService(userRepos, testSecret, time.Hour),
		communities: NewCommunityService(communityRepo, store, time.Minute),
		memberships: NewMembershipService(userRepo, communityRepo, membershipRepo, store),
		posts:       NewPostService(postRepo, communityRepo, membershipRepo, userRepo, store),
		engagement:  NewEngagementService(postRepo, activityRepo, commentRepo, store, pub),
		feed:        NewFeedService(postRepo, membershipRepo, followRepo, userRepo),
	}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	res, err := e.users.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) community(t *testing.T, name string, founder *models.User) *models.Community {
	t.Helper()
	c, err := e.communities.CreateCommunity(context.Background(), CreateCommunityInput{
		UserID:      founder.ID,
		Name:        name,
		Description: "all about " + name,
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) post(t *testing.T, author *models.User, community, title string) *models.Post {
	t.Helper()
	p, err := e.posts.CreatePost(context.Background(), CreatePostInput{
		UserID:        author.ID,
		CommunityName: community,
		Title:         title,
		Content:       "content for " + title,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) join(t *testing.T, community string, user *models.User) {
	t.Helper()
	_, err := e.memberships.Join(context.Background(), community, user.ID)
	require.NoError(t, err)
}

var errPublish = errors.New("broker unavailable")
