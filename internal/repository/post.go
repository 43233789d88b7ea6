package repository

import (
	"context"
	"errors"

	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
)

// ErrSlugTaken reports a slug collision on insert. Callers retry with a new suffix.
var ErrSlugTaken = errors.New("post slug already exists")

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Post, error)
	ListForFeed(ctx context.Context, communityIDs, authorIDs []uint, limit, offset int) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrSlugTaken
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, notFoundOr(err, models.ErrPostNotFound)
	}
	return &post, nil
}

// GetBySlug loads the post with its author, community and comments (oldest first).
func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Community").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Preload("Comments.User").
		Where("slug = ?", slug).
		First(&post).Error
	if err != nil {
		return nil, notFoundOr(err, models.ErrPostNotFound)
	}
	return &post, nil
}

// Delete removes the post together with its comments and ledger events.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Activity{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrPostNotFound
		}
		return nil
	})
	return internal(err)
}

func (r *postRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Post, error) {
	q := r.db.WithContext(ctx).
		Preload("Community").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListForFeed returns posts in any of communityIDs or written by any of authorIDs.
// A post matching both sets is returned once. Newest first, equal timestamps in
// insertion order. A limit of zero returns every match.
func (r *postRepository) ListForFeed(ctx context.Context, communityIDs, authorIDs []uint, limit, offset int) ([]models.Post, error) {
	defer observability.TrackQuery("select", "posts")()

	q := r.db.WithContext(ctx).Model(&models.Post{}).
		Preload("User").
		Preload("Community")

	switch {
	case len(communityIDs) > 0 && len(authorIDs) > 0:
		q = q.Where("community_id IN ? OR user_id IN ?", communityIDs, authorIDs)
	case len(communityIDs) > 0:
		q = q.Where("community_id IN ?", communityIDs)
	case len(authorIDs) > 0:
		q = q.Where("user_id IN ?", authorIDs)
	default:
		return []models.Post{}, nil
	}

	q = q.Order("created_at DESC").Order("id ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}

	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
