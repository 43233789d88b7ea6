package repository

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"agora/internal/models"
	"agora/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestActivityRepository_RecordVote(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author")
	voter := createUser(t, db, "voter")
	c := createCommunity(t, db, "golang", author)
	post := createPost(t, db, author, c, "hello")

	updated, activity, err := repo.RecordVote(ctx, voter.ID, post.ID, models.ActivityUpvote)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Upvotes)
	assert.Equal(t, int64(0), updated.Downvotes)
	assert.NotZero(t, activity.ID)
	assert.Equal(t, models.ActivityUpvote, activity.Kind)

	_, _, err = repo.RecordVote(ctx, voter.ID, post.ID, models.ActivityUpvote)
	assert.ErrorIs(t, err, models.ErrDuplicateEngagement)

	// Up and down are independent events.
	updated, _, err = repo.RecordVote(ctx, voter.ID, post.ID, models.ActivityDownvote)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Upvotes)
	assert.Equal(t, int64(1), updated.Downvotes)

	stored, err := NewPostRepository(db).GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Upvotes)
	assert.Equal(t, int64(1), stored.Downvotes)

	events, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	_, _, err = repo.RecordVote(ctx, voter.ID, 9999, models.ActivityUpvote)
	assert.ErrorIs(t, err, models.ErrPostNotFound)

	_, _, err = repo.RecordVote(ctx, voter.ID, post.ID, models.ActivityComment)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestActivityRepository_ConcurrentUpvotes(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	repo := NewActivityRepository(db)

	author := createUser(t, db, "author")
	voter := createUser(t, db, "voter")
	c := createCommunity(t, db, "golang", author)
	post := createPost(t, db, author, c, "hello")

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := repo.RecordVote(context.Background(), voter.ID, post.ID, models.ActivityUpvote)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.ErrorIs(t, err, models.ErrDuplicateEngagement)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	stored, err := NewPostRepository(db).GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Upvotes)
}

func TestActivityRepository_Comments(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author")
	reader := createUser(t, db, "reader")
	c := createCommunity(t, db, "golang", author)
	post := createPost(t, db, author, c, "hello")

	first := &models.Comment{Content: "first", UserID: reader.ID, PostID: post.ID}
	_, err := repo.RecordComment(ctx, first)
	require.NoError(t, err)
	second := &models.Comment{Content: "second", UserID: reader.ID, PostID: post.ID}
	activity, err := repo.RecordComment(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, activity.CommentID)
	assert.Equal(t, second.ID, *activity.CommentID)
	assert.Equal(t, models.ActivityComment, activity.Kind)

	_, err = repo.RecordComment(ctx, &models.Comment{Content: "orphan", UserID: reader.ID, PostID: 9999})
	assert.ErrorIs(t, err, models.ErrPostNotFound)

	ledger, err := repo.ListByUser(ctx, reader.ID, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, second.ID, *ledger[0].CommentID, "newest first")
	require.NotNil(t, ledger[0].Post)
	assert.Equal(t, post.ID, ledger[0].Post.ID)

	require.NoError(t, repo.DeleteComment(ctx, first.ID))
	assert.ErrorIs(t, repo.DeleteComment(ctx, first.ID), models.ErrCommentNotFound)

	ledger, err = repo.ListByUser(ctx, reader.ID, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, second.ID, *ledger[0].CommentID)

	comments, err := NewCommentRepository(db).ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "second", comments[0].Content)
}

func TestActivityRepository_DeletePostRemovesLedger(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	repo := NewActivityRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author")
	c := createCommunity(t, db, "golang", author)
	post := createPost(t, db, author, c, "hello")

	_, _, err := repo.RecordVote(ctx, author.ID, post.ID, models.ActivityUpvote)
	require.NoError(t, err)
	_, err = repo.RecordComment(ctx, &models.Comment{Content: "self", UserID: author.ID, PostID: post.ID})
	require.NoError(t, err)

	require.NoError(t, posts.Delete(ctx, post.ID))
	assert.ErrorIs(t, posts.Delete(ctx, post.ID), models.ErrPostNotFound)

	ledger, err := repo.ListByUser(ctx, author.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestActivityRepository_RecordVote_PostgresUniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewActivityRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "upvotes", "downvotes"}).AddRow(1, 0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "activities"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "activities"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	_, _, err := repo.RecordVote(context.Background(), 2, 1, models.ActivityUpvote)
	assert.ErrorIs(t, err, models.ErrDuplicateEngagement)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepository_RecordVote_DatabaseFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewActivityRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, _, err := repo.RecordVote(context.Background(), 2, 1, models.ActivityDownvote)
	require.Error(t, err)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
