package repository

import (
	"context"

	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations for the follow graph.
type FollowRepository interface {
	Create(ctx context.Context, followerID, followedID uint) error
	Delete(ctx context.Context, followerID, followedID uint) error
	FollowedIDs(ctx context.Context, userID uint) ([]uint, error)
	ListFollowed(ctx context.Context, userID uint) ([]models.User, error)
	ListFollowers(ctx context.Context, userID uint) ([]models.User, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowed(ctx context.Context, userID uint) (int64, error)
	SecondDegreeIDs(ctx context.Context, userID uint, followed []uint, limit int) ([]uint, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, followerID, followedID uint) error {
	follow := models.Follow{FollowerID: followerID, FollowedID: followedID}
	if err := r.db.WithContext(ctx).Create(&follow).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return models.ErrAlreadyFollowing
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followedID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFollowing
	}
	return nil
}

func (r *followRepository) FollowedIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Order("created_at ASC").
		Pluck("followed_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) ListFollowed(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ?", userID).
		Order("follows.created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *followRepository) CountFollowed(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// SecondDegreeIDs returns users followed by anyone in followed, excluding userID and
// followed itself. Users reached through more of the caller's follows come first,
// then by when the earliest such edge was created.
func (r *followRepository) SecondDegreeIDs(ctx context.Context, userID uint, followed []uint, limit int) ([]uint, error) {
	if len(followed) == 0 {
		return []uint{}, nil
	}
	defer observability.TrackQuery("select", "follows")()

	q := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id IN ?", followed).
		Where("followed_id <> ?", userID).
		Where("followed_id NOT IN ?", followed).
		Group("followed_id").
		Order("COUNT(*) DESC").
		Order("MIN(created_at) ASC").
		Order("followed_id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var ids []uint
	if err := q.Pluck("followed_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
