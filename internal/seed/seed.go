// Package seed populates the database with demo data for development and
// testing. Every row is written through the services, so seeded data obeys the
// same membership and ledger rules as live traffic.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// DefaultPassword is given to every generated account.
const DefaultPassword = "password123"

// Options sizes a random seeding run. Seed 0 picks a random seed.
type Options struct {
	Users       int
	Communities int
	Posts       int
	Follows     int
	Seed        int64
}

// Summary counts what a run created.
type Summary struct {
	Users       int
	Communities int
	Memberships int
	Posts       int
	Votes       int
	Comments    int
	Follows     int
}

// Seeder drives the services with generated or preset data.
type Seeder struct {
	db          *gorm.DB
	users       *service.UserService
	communities *service.CommunityService
	memberships *service.MembershipService
	posts       *service.PostService
	engagement  *service.EngagementService
}

// NewSeeder wires the services over db. rdb may be nil; when set, every write
// keeps the community cache coherent exactly as the API does.
func NewSeeder(db *gorm.DB, rdb *redis.Client, jwtSecret string) *Seeder {
	userRepo := repository.NewUserRepository(db)
	communityRepo := repository.NewCommunityRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	postRepo := repository.NewPostRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	store := cache.NewStore(rdb, "community")

	return &Seeder{
		db: db,
		users: service.NewUserService(service.UserRepositories{
			Users:       userRepo,
			Follows:     repository.NewFollowRepository(db),
			Posts:       postRepo,
			Memberships: membershipRepo,
			Activities:  activityRepo,
		}, jwtSecret, time.Hour),
		communities: service.NewCommunityService(communityRepo, store, 0),
		memberships: service.NewMembershipService(userRepo, communityRepo, membershipRepo, store),
		posts:       service.NewPostService(postRepo, communityRepo, membershipRepo, userRepo, store),
		engagement: service.NewEngagementService(postRepo, activityRepo,
			repository.NewCommentRepository(db), store, nil),
	}
}

// ClearAll deletes every row, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("Clearing existing data...")
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{
		&models.Activity{},
		&models.Comment{},
		&models.Post{},
		&models.Membership{},
		&models.Follow{},
		&models.Community{},
		&models.User{},
	} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// SeedRandom generates users, communities, memberships, posts, engagement and follows.
func (s *Seeder) SeedRandom(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Users <= 0 && (opts.Communities > 0 || opts.Follows > 0) {
		return nil, errors.New("seed: communities and follows need at least one user")
	}
	if opts.Communities <= 0 && opts.Posts > 0 {
		return nil, errors.New("seed: posts need at least one community")
	}

	f := newFactory(opts.Seed)
	sum := &Summary{}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		username := f.username(i)
		res, err := s.users.Register(ctx, service.RegisterInput{
			Username: username,
			Email:    username + "@example.com",
			Password: DefaultPassword,
		})
		if err != nil {
			return sum, fmt.Errorf("register %s: %w", username, err)
		}
		users = append(users, res.User)
		sum.Users++
	}

	members := make(map[string][]*models.User, opts.Communities)
	names := make([]string, 0, opts.Communities)
	for i := 0; i < opts.Communities; i++ {
		founder := users[f.intn(len(users))]
		community, err := s.communities.CreateCommunity(ctx, service.CreateCommunityInput{
			UserID:      founder.ID,
			Name:        f.communityName(i),
			Description: f.description(),
		})
		if err != nil {
			return sum, fmt.Errorf("create community: %w", err)
		}
		sum.Communities++
		sum.Memberships++
		names = append(names, community.Name)
		members[community.Name] = []*models.User{founder}

		for _, u := range users {
			if u.ID == founder.ID || !f.chance(50) {
				continue
			}
			if _, err := s.memberships.Join(ctx, community.Name, u.ID); err != nil {
				return sum, fmt.Errorf("join %s: %w", community.Name, err)
			}
			members[community.Name] = append(members[community.Name], u)
			sum.Memberships++
		}
	}

	for i := 0; i < opts.Posts; i++ {
		name := names[f.intn(len(names))]
		pool := members[name]
		author := pool[f.intn(len(pool))]
		post, err := s.posts.CreatePost(ctx, service.CreatePostInput{
			UserID:        author.ID,
			CommunityName: name,
			Title:         f.title(),
			Content:       f.content(),
		})
		if err != nil {
			return sum, fmt.Errorf("create post: %w", err)
		}
		sum.Posts++

		if err := s.engage(ctx, f, post, users, sum); err != nil {
			return sum, err
		}
	}

	for i := 0; i < opts.Follows && len(users) > 1; i++ {
		a, b := users[f.intn(len(users))], users[f.intn(len(users))]
		if a.ID == b.ID {
			continue
		}
		err := s.users.Follow(ctx, a.ID, b.Username)
		if errors.Is(err, models.ErrAlreadyFollowing) {
			continue
		}
		if err != nil {
			return sum, fmt.Errorf("follow: %w", err)
		}
		sum.Follows++
	}

	log.Printf("Seeded %d users, %d communities, %d posts, %d votes, %d comments, %d follows",
		sum.Users, sum.Communities, sum.Posts, sum.Votes, sum.Comments, sum.Follows)
	return sum, nil
}

// engage has a random subset of users vote on and comment on post.
func (s *Seeder) engage(ctx context.Context, f *factory, post *models.Post, users []*models.User, sum *Summary) error {
	for _, u := range users {
		if f.chance(40) {
			if _, err := s.engagement.Upvote(ctx, post.Slug, u.ID); err != nil {
				return fmt.Errorf("upvote: %w", err)
			}
			sum.Votes++
		}
		if f.chance(10) {
			if _, err := s.engagement.Downvote(ctx, post.Slug, u.ID); err != nil {
				return fmt.Errorf("downvote: %w", err)
			}
			sum.Votes++
		}
		if f.chance(20) {
			if _, err := s.engagement.Comment(ctx, post.Slug, u.ID, f.comment()); err != nil {
				return fmt.Errorf("comment: %w", err)
			}
			sum.Comments++
		}
	}
	return nil
}
