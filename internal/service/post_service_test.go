package service

import (
	"context"
	"strings"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello", "hello"},
		{"Hello, World!", "hello-world"},
		{"  spaced   out  ", "spaced-out"},
		{"Go 1.26 released", "go-1-26-released"},
		{"!!!", "post"},
		{"café au lait", "caf-au-lait"},
		{strings.Repeat("a", 100), strings.Repeat("a", maxSlugBase)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestNewSlugIsUnique(t *testing.T) {
	a, b := newSlug("Same Title"), newSlug("Same Title")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "same-title-"))
}

func TestPostService_CreatePostRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	founder := env.register(t, "founder")
	outsider := env.register(t, "outsider")
	env.community(t, "golang", founder)

	_, err := env.posts.CreatePost(ctx, CreatePostInput{UserID: outsider.ID, CommunityName: "golang", Title: "hi", Content: "x"})
	assert.ErrorIs(t, err, models.ErrMembershipRequired)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = env.posts.CreatePost(ctx, CreatePostInput{UserID: founder.ID, CommunityName: "rust", Title: "hi", Content: "x"})
	assert.ErrorIs(t, err, models.ErrCommunityNotFound)

	_, err = env.posts.CreatePost(ctx, CreatePostInput{UserID: founder.ID, CommunityName: "golang", Title: "", Content: "x"})
	assert.ErrorIs(t, err, models.ErrValidation)

	p, err := env.posts.CreatePost(ctx, CreatePostInput{UserID: founder.ID, CommunityName: "GoLang", Title: "Hi there", Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, "founder", p.User.Username)
	assert.Equal(t, "golang", p.Community.Name)
	assert.Zero(t, p.Upvotes)
	assert.Zero(t, p.Downvotes)
}

func TestPostService_DeletePost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	founder := env.register(t, "founder")
	other := env.register(t, "other")
	env.community(t, "golang", founder)
	p := env.post(t, founder, "golang", "mine")

	err := env.posts.DeletePost(ctx, DeletePostInput{UserID: other.ID, Slug: p.Slug})
	assert.ErrorIs(t, err, models.ErrNotAuthor)

	require.NoError(t, env.posts.DeletePost(ctx, DeletePostInput{UserID: founder.ID, Slug: p.Slug}))

	_, err = env.posts.GetPost(ctx, p.Slug)
	assert.ErrorIs(t, err, models.ErrPostNotFound)
	assert.ErrorIs(t, env.posts.DeletePost(ctx, DeletePostInput{UserID: founder.ID, Slug: p.Slug}), models.ErrPostNotFound)
}
