package service

import (
	"context"
	"errors"
	"strings"

	"agora/internal/cache"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"
)

const slugAttempts = 3

type PostService struct {
	postRepo       repository.PostRepository
	communityRepo  repository.CommunityRepository
	membershipRepo repository.MembershipRepository
	userRepo       repository.UserRepository
	cache          *cache.Store
}

type CreatePostInput struct {
	UserID        uint
	CommunityName string
	Title         string
	Content       string
}

type DeletePostInput struct {
	UserID uint
	Slug   string
}

func NewPostService(
	postRepo repository.PostRepository,
	communityRepo repository.CommunityRepository,
	membershipRepo repository.MembershipRepository,
	userRepo repository.UserRepository,
	store *cache.Store,
) *PostService {
	return &PostService{
		postRepo:       postRepo,
		communityRepo:  communityRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		cache:          store,
	}
}

// CreatePost publishes a post into a community the author belongs to.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if err := validation.ValidatePostInput(title, in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	community, err := s.communityRepo.GetByName(ctx, in.CommunityName)
	if err != nil {
		return nil, err
	}
	if _, err := s.membershipRepo.Get(ctx, community.ID, in.UserID); err != nil {
		if errors.Is(err, models.ErrNotMember) {
			return nil, models.ErrMembershipRequired
		}
		return nil, err
	}
	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       title,
		Content:     in.Content,
		UserID:      in.UserID,
		CommunityID: community.ID,
	}
	for attempt := 1; ; attempt++ {
		post.Slug = newSlug(title)
		err = s.postRepo.Create(ctx, post)
		if !errors.Is(err, repository.ErrSlugTaken) {
			break
		}
		if attempt == slugAttempts {
			return nil, models.NewInternalError(err)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := invalidateCommunity(ctx, s.cache, community.Name); err != nil {
		return nil, err
	}

	post.User = author
	post.Community = community
	return post, nil
}

// GetPost loads a post with its author, community and comments.
func (s *PostService) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	return s.postRepo.GetBySlug(ctx, slug)
}

// DeletePost removes the post if in.UserID wrote it.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetBySlug(ctx, in.Slug)
	if err != nil {
		return err
	}
	if post.UserID != in.UserID {
		return models.ErrNotAuthor
	}
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		return err
	}
	if post.Community == nil {
		return nil
	}
	return invalidateCommunity(ctx, s.cache, post.Community.Name)
}
