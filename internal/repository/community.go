package repository

import (
	"context"
	"strings"

	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
)

// CommunityRepository defines persistence operations for communities.
type CommunityRepository interface {
	CreateWithFounder(ctx context.Context, community *models.Community, founderID uint) error
	GetByName(ctx context.Context, name string) (*models.Community, error)
	GetDetail(ctx context.Context, name string) (*models.Community, error)
	Search(ctx context.Context, query string, limit, offset int) ([]models.Community, error)
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository returns a new CommunityRepository implementation.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

// CreateWithFounder inserts the community and its founding membership in one transaction.
func (r *communityRepository) CreateWithFounder(ctx context.Context, community *models.Community, founderID uint) error {
	community.NameKey = models.CommunityKey(community.Name)
	community.CreatedByUserID = founderID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return models.ErrCommunityNameTaken
			}
			return err
		}
		founding := models.Membership{
			CommunityID: community.ID,
			UserID:      founderID,
			Role:        models.RoleFounder,
		}
		return tx.Create(&founding).Error
	})
	return internal(err)
}

func (r *communityRepository) GetByName(ctx context.Context, name string) (*models.Community, error) {
	var community models.Community
	err := r.db.WithContext(ctx).
		Where("name_key = ?", models.CommunityKey(name)).
		First(&community).Error
	if err != nil {
		return nil, notFoundOr(err, models.ErrCommunityNotFound)
	}
	return &community, nil
}

// GetDetail loads the community with its posts (newest first, each with author) and members.
func (r *communityRepository) GetDetail(ctx context.Context, name string) (*models.Community, error) {
	defer observability.TrackQuery("select", "communities")()

	var community models.Community
	err := r.db.WithContext(ctx).
		Preload("Posts", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC").Order("id ASC")
		}).
		Preload("Posts.User").
		Preload("Memberships", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("user_id ASC")
		}).
		Preload("Memberships.User").
		Where("name_key = ?", models.CommunityKey(name)).
		First(&community).Error
	if err != nil {
		return nil, notFoundOr(err, models.ErrCommunityNotFound)
	}
	return &community, nil
}

// Search matches query as a case-insensitive substring of the name.
func (r *communityRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.Community, error) {
	q := r.db.WithContext(ctx).Model(&models.Community{})
	if key := models.CommunityKey(query); key != "" {
		q = q.Where(`name_key LIKE ? ESCAPE '\'`, "%"+escapeLike(key)+"%")
	}

	var communities []models.Community
	q = q.Order("name_key ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&communities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return communities, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
