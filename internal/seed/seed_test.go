package seed

import (
	"context"
	"testing"

	"agora/internal/models"
	"agora/internal/service"
	"agora/internal/testutil"
	"agora/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "seed-test-secret-that-is-long-enough"

func newTestSeeder(t *testing.T) (*Seeder, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	_, rdb := testutil.NewRedis(t)
	return NewSeeder(db, rdb, testSecret), db
}

func count(t *testing.T, db *gorm.DB, model any, query ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(model)
	if len(query) > 0 {
		q = q.Where(query[0], query[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestFactoryValuesPassValidation(t *testing.T) {
	f := newFactory(7)
	for i := 0; i < 50; i++ {
		assert.NoError(t, validation.ValidateUsername(f.username(i)))
		assert.NoError(t, validation.ValidateCommunityName(f.communityName(i)))
		assert.NoError(t, validation.ValidateDescription(f.description()))
		assert.NoError(t, validation.ValidatePostInput(f.title(), f.content()))
		assert.NoError(t, validation.ValidateComment(f.comment()))
	}
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "JohnDoe42", identifier("John.Doe 42", 20))
	assert.Equal(t, "abc", identifier("abcdef", 3))
	assert.Equal(t, "caf", identifier("café", 10))
	assert.Equal(t, "", identifier("...", 10))
}

func TestParsePresetRejectsUnknownFields(t *testing.T) {
	_, err := ParsePreset([]byte("users:\n  - username: alice\n    karma: 12\n"))
	assert.Error(t, err)
}

func TestApplyPreset(t *testing.T) {
	s, db := newTestSeeder(t)
	ctx := context.Background()

	p, err := LoadPreset("testdata/basic.yaml")
	require.NoError(t, err)

	sum, err := s.ApplyPreset(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, &Summary{
		Users:       3,
		Communities: 1,
		Memberships: 3,
		Posts:       1,
		Votes:       3,
		Comments:    2,
		Follows:     2,
	}, sum)

	detail, err := s.communities.GetCommunity(ctx, "GOLANG")
	require.NoError(t, err)
	require.Len(t, detail.Posts, 1)
	assert.EqualValues(t, 2, detail.Posts[0].Upvotes)
	assert.EqualValues(t, 1, detail.Posts[0].Downvotes)

	roles := map[string]models.MembershipRole{}
	for _, m := range detail.Members {
		roles[m.Username] = m.Role
	}
	assert.Equal(t, map[string]models.MembershipRole{
		"alice": models.RoleFounder,
		"bob":   models.RoleModerator,
		"carol": models.RoleMember,
	}, roles)

	assert.EqualValues(t, 2, count(t, db, &models.Comment{}))
	assert.EqualValues(t, 2, count(t, db, &models.Activity{}, "kind = ?", models.ActivityComment))

	_, err = s.users.Login(ctx, service.LoginInput{Username: "carol", Password: "carolpass99"})
	assert.NoError(t, err)
}

func TestApplyPresetUnknownUser(t *testing.T) {
	s, _ := newTestSeeder(t)

	p, err := ParsePreset([]byte(`
users:
  - username: alice
communities:
  - name: rust
    founder: mallory
`))
	require.NoError(t, err)

	_, err = s.ApplyPreset(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown user "mallory"`)
}

func TestSeedRandomKeepsCountersInStepWithLedger(t *testing.T) {
	s, db := newTestSeeder(t)

	sum, err := s.SeedRandom(context.Background(), Options{
		Users:       6,
		Communities: 2,
		Posts:       5,
		Follows:     8,
		Seed:        42,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Users)
	assert.Equal(t, 2, sum.Communities)
	assert.Equal(t, 5, sum.Posts)

	assert.EqualValues(t, sum.Users, count(t, db, &models.User{}))
	assert.EqualValues(t, sum.Memberships, count(t, db, &models.Membership{}))
	assert.EqualValues(t, sum.Follows, count(t, db, &models.Follow{}))
	assert.EqualValues(t, sum.Votes, count(t, db, &models.Activity{}, "kind <> ?", models.ActivityComment))
	assert.EqualValues(t, sum.Comments, count(t, db, &models.Comment{}))

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		assert.EqualValues(t, p.Upvotes,
			count(t, db, &models.Activity{}, "post_id = ? AND kind = ?", p.ID, models.ActivityUpvote), p.Slug)
		assert.EqualValues(t, p.Downvotes,
			count(t, db, &models.Activity{}, "post_id = ? AND kind = ?", p.ID, models.ActivityDownvote), p.Slug)
	}

	// Every author belongs to the community they posted in.
	var orphans int64
	require.NoError(t, db.Model(&models.Post{}).
		Where("NOT EXISTS (SELECT 1 FROM memberships m WHERE m.community_id = posts.community_id AND m.user_id = posts.user_id)").
		Count(&orphans).Error)
	assert.Zero(t, orphans)
}

func TestSeedRandomValidatesOptions(t *testing.T) {
	s, _ := newTestSeeder(t)

	_, err := s.SeedRandom(context.Background(), Options{Communities: 1})
	assert.Error(t, err)
	_, err = s.SeedRandom(context.Background(), Options{Users: 1, Posts: 1})
	assert.Error(t, err)
}

func TestClearAll(t *testing.T) {
	s, db := newTestSeeder(t)
	ctx := context.Background()

	_, err := s.SeedRandom(ctx, Options{Users: 3, Communities: 1, Posts: 2, Follows: 2, Seed: 1})
	require.NoError(t, err)

	require.NoError(t, s.ClearAll(ctx))
	for _, model := range []any{&models.User{}, &models.Community{}, &models.Membership{}, &models.Post{}, &models.Activity{}} {
		assert.Zero(t, count(t, db, model), "%T", model)
	}
}
