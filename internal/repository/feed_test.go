package repository

import (
	"context"
	"testing"

	"agora/internal/models"
	"agora/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postIDs(posts []models.Post) []uint {
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func TestPostRepository_ListForFeed(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	carol := createUser(t, db, "carol")
	golang := createCommunity(t, db, "golang", alice)
	rust := createCommunity(t, db, "rust", carol)

	inGolang := createPost(t, db, alice, golang, "in-golang")
	bobInRust := createPost(t, db, bob, rust, "bob-in-rust")
	bobInGolang := createPost(t, db, bob, golang, "bob-in-golang")
	createPost(t, db, carol, rust, "carol-in-rust")

	posts, err := repo.ListForFeed(ctx, []uint{golang.ID}, []uint{bob.ID}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{bobInGolang.ID, bobInRust.ID, inGolang.ID}, postIDs(posts), "union without duplicates, newest first")
	require.NotNil(t, posts[0].User)
	require.NotNil(t, posts[0].Community)
	assert.Equal(t, "golang", posts[0].Community.Name)

	page, err := repo.ListForFeed(ctx, []uint{golang.ID}, []uint{bob.ID}, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{bobInRust.ID, inGolang.ID}, postIDs(page))

	onlyAuthors, err := repo.ListForFeed(ctx, nil, []uint{bob.ID}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{bobInGolang.ID, bobInRust.ID}, postIDs(onlyAuthors))

	empty, err := repo.ListForFeed(ctx, nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPostRepository_GetBySlugLoadsComments(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	ctx := context.Background()

	author := createUser(t, db, "author")
	reader := createUser(t, db, "reader")
	c := createCommunity(t, db, "golang", author)
	post := createPost(t, db, author, c, "hello")

	activities := NewActivityRepository(db)
	for _, body := range []string{"one", "two"} {
		_, err := activities.RecordComment(ctx, &models.Comment{Content: body, UserID: reader.ID, PostID: post.ID})
		require.NoError(t, err)
	}

	loaded, err := NewPostRepository(db).GetBySlug(ctx, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, "author", loaded.User.Username)
	assert.Equal(t, "golang", loaded.Community.Name)
	require.Len(t, loaded.Comments, 2)
	assert.Equal(t, "one", loaded.Comments[0].Content)
	assert.Equal(t, "reader", loaded.Comments[0].User.Username)

	_, err = NewPostRepository(db).GetBySlug(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrPostNotFound)
}

func TestPostRepository_SlugCollision(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author")
	c := createCommunity(t, db, "golang", author)
	post := createPost(t, db, author, c, "hello")

	err := repo.Create(ctx, &models.Post{Slug: post.Slug, Title: "again", Content: "x", UserID: author.ID, CommunityID: c.ID})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestFollowRepository_Graph(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	me := createUser(t, db, "me")
	a := createUser(t, db, "alpha")
	b := createUser(t, db, "bravo")
	x := createUser(t, db, "xray")
	y := createUser(t, db, "yankee")
	z := createUser(t, db, "zulu")

	require.NoError(t, repo.Create(ctx, me.ID, a.ID))
	require.NoError(t, repo.Create(ctx, me.ID, b.ID))
	assert.ErrorIs(t, repo.Create(ctx, me.ID, a.ID), models.ErrAlreadyFollowing)

	// y is reachable through both a and b; x and z through one each.
	require.NoError(t, repo.Create(ctx, a.ID, x.ID))
	require.NoError(t, repo.Create(ctx, a.ID, y.ID))
	require.NoError(t, repo.Create(ctx, b.ID, y.ID))
	require.NoError(t, repo.Create(ctx, b.ID, z.ID))
	// Edges back to me or to people I already follow never surface.
	require.NoError(t, repo.Create(ctx, a.ID, me.ID))
	require.NoError(t, repo.Create(ctx, a.ID, b.ID))

	followed, err := repo.FollowedIDs(ctx, me.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, followed)

	ids, err := repo.SecondDegreeIDs(ctx, me.ID, followed, 15)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, y.ID, ids[0])
	assert.ElementsMatch(t, []uint{x.ID, z.ID}, ids[1:])

	limited, err := repo.SecondDegreeIDs(ctx, me.ID, followed, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{y.ID}, limited)

	none, err := repo.SecondDegreeIDs(ctx, me.ID, nil, 15)
	require.NoError(t, err)
	assert.Empty(t, none)

	followers, err := repo.CountFollowers(ctx, y.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), followers)

	following, err := repo.CountFollowed(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), following)

	list, err := repo.ListFollowers(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alpha", list[0].Username)

	require.NoError(t, repo.Delete(ctx, me.ID, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, me.ID, a.ID), models.ErrNotFollowing)
}
