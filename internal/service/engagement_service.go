package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"agora/internal/cache"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// EngagementService is the write path into the engagement ledger. Vote counters
// change only through it, and only when the ledger accepts the event.
type EngagementService struct {
	postRepo     repository.PostRepository
	activityRepo repository.ActivityRepository
	commentRepo  repository.CommentRepository
	cache        *cache.Store
	publisher    ActivityPublisher
}

// EngagementInput identifies one engagement. Content is used by COMMENT only.
type EngagementInput struct {
	UserID  uint
	PostID  uint
	Kind    models.ActivityKind
	Content string
}

// EngagementResult carries the post after the counter change, the appended event,
// and for COMMENT the stored comment.
type EngagementResult struct {
	Post     *models.Post
	Activity *models.Activity
	Comment  *models.Comment
}

// NewEngagementService wires the ledger. A nil publisher drops events.
func NewEngagementService(
	postRepo repository.PostRepository,
	activityRepo repository.ActivityRepository,
	commentRepo repository.CommentRepository,
	store *cache.Store,
	publisher ActivityPublisher,
) *EngagementService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &EngagementService{
		postRepo:     postRepo,
		activityRepo: activityRepo,
		commentRepo:  commentRepo,
		cache:        store,
		publisher:    publisher,
	}
}

// Upvote records the caller's upvote on the post with slug.
func (s *EngagementService) Upvote(ctx context.Context, slug string, userID uint) (*models.Post, error) {
	return s.vote(ctx, slug, userID, models.ActivityUpvote)
}

// Downvote records the caller's downvote on the post with slug.
func (s *EngagementService) Downvote(ctx context.Context, slug string, userID uint) (*models.Post, error) {
	return s.vote(ctx, slug, userID, models.ActivityDownvote)
}

// Comment adds a comment to the post with slug.
func (s *EngagementService) Comment(ctx context.Context, slug string, userID uint, content string) (*models.Comment, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	res, err := s.RecordAndApply(ctx, post, EngagementInput{
		UserID:  userID,
		PostID:  post.ID,
		Kind:    models.ActivityComment,
		Content: content,
	})
	if err != nil {
		return nil, err
	}
	return res.Comment, nil
}

func (s *EngagementService) vote(ctx context.Context, slug string, userID uint, kind models.ActivityKind) (*models.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	res, err := s.RecordAndApply(ctx, post, EngagementInput{UserID: userID, PostID: post.ID, Kind: kind})
	if err != nil {
		return nil, err
	}
	return res.Post, nil
}

// RecordAndApply appends one event to the ledger and applies its effect. A vote
// the ledger already holds fails with ErrDuplicateEngagement and changes nothing.
// target, when non-nil, is the already loaded post and supplies the author and
// community for the response, cache invalidation and the published event.
func (s *EngagementService) RecordAndApply(ctx context.Context, target *models.Post, in EngagementInput) (*EngagementResult, error) {
	span, ctx := observability.NewSpan(ctx, "EngagementService.RecordAndApply",
		attribute.String("engagement.kind", string(in.Kind)),
		attribute.Int("post.id", int(in.PostID)),
	)
	defer span.End()

	if !in.Kind.Valid() {
		return nil, models.NewValidationError("unknown engagement kind")
	}
	if target == nil {
		loaded, err := s.postRepo.GetByID(ctx, in.PostID)
		if err != nil {
			return nil, err
		}
		target = loaded
	}

	var (
		res *EngagementResult
		err error
	)
	if in.Kind.IsVote() {
		res, err = s.applyVote(ctx, target, in)
	} else {
		res, err = s.applyComment(ctx, in)
	}

	observability.EngagementEvents.WithLabelValues(string(in.Kind), engagementOutcome(err)).Inc()
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	s.publish(ctx, target, res.Activity)
	return res, nil
}

func (s *EngagementService) applyVote(ctx context.Context, target *models.Post, in EngagementInput) (*EngagementResult, error) {
	updated, activity, err := s.activityRepo.RecordVote(ctx, in.UserID, in.PostID, in.Kind)
	if err != nil {
		return nil, err
	}
	updated.User = target.User
	updated.Community = target.Community

	// Vote counters are part of the cached community detail.
	if err := s.invalidatePostCommunity(ctx, target); err != nil {
		return nil, err
	}
	return &EngagementResult{Post: updated, Activity: activity}, nil
}

func (s *EngagementService) applyComment(ctx context.Context, in EngagementInput) (*EngagementResult, error) {
	content := strings.TrimSpace(in.Content)
	if err := validation.ValidateComment(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment := &models.Comment{Content: content, UserID: in.UserID, PostID: in.PostID}
	activity, err := s.activityRepo.RecordComment(ctx, comment)
	if err != nil {
		return nil, err
	}

	stored, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	return &EngagementResult{Activity: activity, Comment: stored}, nil
}

// DeleteComment removes a comment written by userID and prunes its ledger event.
func (s *EngagementService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return models.ErrNotAuthor
	}
	return s.activityRepo.DeleteComment(ctx, commentID)
}

// ListActivities returns the user's ledger, newest first.
func (s *EngagementService) ListActivities(ctx context.Context, userID uint, limit int) ([]models.Activity, error) {
	return s.activityRepo.ListByUser(ctx, userID, limit)
}

func (s *EngagementService) invalidatePostCommunity(ctx context.Context, post *models.Post) error {
	if post.Community != nil {
		return invalidateCommunity(ctx, s.cache, post.Community.Name)
	}
	return nil
}

func (s *EngagementService) publish(ctx context.Context, post *models.Post, activity *models.Activity) {
	event := models.ActivityEvent{
		ActivityID:  activity.ID,
		Kind:        activity.Kind,
		UserID:      activity.UserID,
		PostID:      post.ID,
		PostSlug:    post.Slug,
		AuthorID:    post.UserID,
		CommunityID: post.CommunityID,
		CommentID:   activity.CommentID,
		CreatedAt:   activity.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		middleware.Logger.WarnContext(ctx, "activity publish failed",
			slog.Uint64("activity_id", uint64(activity.ID)),
			slog.String("error", err.Error()),
		)
	}
}

func engagementOutcome(err error) string {
	switch {
	case err == nil:
		return "recorded"
	case errors.Is(err, models.ErrDuplicateEngagement):
		return "duplicate"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
