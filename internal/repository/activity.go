package repository

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/database"
	"agora/internal/models"

	"gorm.io/gorm"
)

// ActivityRepository is the store behind the engagement ledger. Every method that
// appends an event also applies its side effect in the same transaction.
type ActivityRepository interface {
	RecordVote(ctx context.Context, userID, postID uint, kind models.ActivityKind) (*models.Post, *models.Activity, error)
	RecordComment(ctx context.Context, comment *models.Comment) (*models.Activity, error)
	DeleteComment(ctx context.Context, commentID uint) error
	Exists(ctx context.Context, userID, postID uint, kind models.ActivityKind) (bool, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Activity, error)
	ListByPost(ctx context.Context, postID uint) ([]models.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository returns a new ActivityRepository implementation.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func counterColumn(kind models.ActivityKind) (string, error) {
	switch kind {
	case models.ActivityUpvote:
		return "upvotes", nil
	case models.ActivityDownvote:
		return "downvotes", nil
	default:
		return "", fmt.Errorf("%s is not a vote kind", kind)
	}
}

// RecordVote appends a vote event and increments the matching counter. A second
// vote of the same kind by the same user fails with ErrDuplicateEngagement and
// changes nothing. The existence check short-circuits the common case; the
// partial unique index settles races between concurrent transactions.
func (r *activityRepository) RecordVote(ctx context.Context, userID, postID uint, kind models.ActivityKind) (*models.Post, *models.Activity, error) {
	column, err := counterColumn(kind)
	if err != nil {
		return nil, nil, models.NewValidationError(err.Error())
	}

	var post models.Post
	activity := models.Activity{UserID: userID, PostID: postID, Kind: kind}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrPostNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Activity{}).
			Where("user_id = ? AND post_id = ? AND kind = ?", userID, postID, kind).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return models.ErrDuplicateEngagement
		}

		if err := tx.Create(&activity).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return models.ErrDuplicateEngagement
			}
			return err
		}

		if err := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error; err != nil {
			return err
		}
		return tx.First(&post, postID).Error
	})
	if err != nil {
		return nil, nil, internal(err)
	}
	return &post, &activity, nil
}

// RecordComment inserts the comment and its COMMENT event. Comments are unbounded per user and post.
func (r *activityRepository) RecordComment(ctx context.Context, comment *models.Comment) (*models.Activity, error) {
	var activity models.Activity

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Post{}).Where("id = ?", comment.PostID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return models.ErrPostNotFound
		}

		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		activity = models.Activity{
			UserID:    comment.UserID,
			PostID:    comment.PostID,
			Kind:      models.ActivityComment,
			CommentID: &comment.ID,
		}
		return tx.Create(&activity).Error
	})
	if err != nil {
		return nil, internal(err)
	}
	return &activity, nil
}

// DeleteComment removes the comment and prunes the event that recorded it.
func (r *activityRepository) DeleteComment(ctx context.Context, commentID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", commentID).Delete(&models.Activity{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, commentID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrCommentNotFound
		}
		return nil
	})
	return internal(err)
}

func (r *activityRepository) Exists(ctx context.Context, userID, postID uint, kind models.ActivityKind) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Activity{}).
		Where("user_id = ? AND post_id = ? AND kind = ?", userID, postID, kind).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// ListByUser returns the user's ledger, newest first, with each event's post.
func (r *activityRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Activity, error) {
	q := r.db.WithContext(ctx).
		Preload("Post").
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var activities []models.Activity
	if err := q.Find(&activities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return activities, nil
}

func (r *activityRepository) ListByPost(ctx context.Context, postID uint) ([]models.Activity, error) {
	var activities []models.Activity
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("id ASC").
		Find(&activities).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return activities, nil
}
