package repository

import (
	"context"
	"errors"

	"agora/internal/database"
	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipRepository defines persistence operations for community memberships.
type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	Get(ctx context.Context, communityID, userID uint) (*models.Membership, error)
	ChangeRole(ctx context.Context, communityID, actorID, targetID uint, role models.MembershipRole, authorize func(actor *models.Membership) error) (*models.Membership, error)
	Delete(ctx context.Context, communityID, userID uint) error
	ListByUser(ctx context.Context, userID uint) ([]models.Membership, error)
	CommunityIDsForUser(ctx context.Context, userID uint) ([]uint, error)
}

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository returns a new MembershipRepository implementation.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

// Create inserts a membership. The composite primary key rejects a second row for the pair.
func (r *membershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return models.ErrAlreadyMember
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *membershipRepository) Get(ctx context.Context, communityID, userID uint) (*models.Membership, error) {
	var m models.Membership
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&m).Error
	if err != nil {
		return nil, notFoundOr(err, models.ErrNotMember)
	}
	return &m, nil
}

// ChangeRole reads the actor's membership, lets authorize decide, then overwrites the
// target's role, all in one transaction. On Postgres both rows are locked.
func (r *membershipRepository) ChangeRole(
	ctx context.Context,
	communityID, actorID, targetID uint,
	role models.MembershipRole,
	authorize func(actor *models.Membership) error,
) (*models.Membership, error) {
	var target models.Membership

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var actor models.Membership
		if err := forUpdate(tx).
			Where("community_id = ? AND user_id = ?", communityID, actorID).
			First(&actor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrActorNotMember
			}
			return err
		}
		if err := authorize(&actor); err != nil {
			return err
		}

		if err := forUpdate(tx).
			Where("community_id = ? AND user_id = ?", communityID, targetID).
			First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.ErrNotMember
			}
			return err
		}

		target.Role = role
		return tx.Model(&target).Update("role", role).Error
	})
	if err != nil {
		return nil, internal(err)
	}
	return &target, nil
}

func (r *membershipRepository) Delete(ctx context.Context, communityID, userID uint) error {
	res := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.Membership{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotMember
	}
	return nil
}

func (r *membershipRepository) ListByUser(ctx context.Context, userID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.WithContext(ctx).
		Preload("Community").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return memberships, nil
}

func (r *membershipRepository) CommunityIDsForUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("user_id = ?", userID).
		Pluck("community_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// forUpdate adds a row lock where the dialect supports one.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
