package repository

import (
	"context"
	"regexp"
	"testing"

	"warbler/internal/models"
	"warbler/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	ctx := context.Background()
	seedUsers(t, db)

	msg := &models.Message{Text: "Hello world", UserID: 1111}
	require.NoError(t, repo.Create(ctx, msg))
	assert.NotZero(t, msg.ID)
	assert.False(t, msg.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got.Text)
	require.NotNil(t, got.User)
	assert.Equal(t, "test1", got.User.Username)

	n, err := repo.CountByUser(ctx, 1111)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	err = repo.Create(ctx, &models.Message{Text: "orphan", UserID: 9999})
	assert.True(t, models.IsIntegrityError(err))

	require.NoError(t, repo.Delete(ctx, msg.ID))
	_, err = repo.GetByID(ctx, msg.ID)
	assert.True(t, models.IsNotFoundError(err))
	assert.True(t, models.IsNotFoundError(repo.Delete(ctx, msg.ID)))
}

func TestMessageRepository_ListByUserNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	seedUsers(t, db)

	first := seedMessage(t, db, 1111, "first", 0)
	second := seedMessage(t, db, 1111, "second", 10)
	seedMessage(t, db, 2222, "other", 5)

	msgs, err := repo.ListByUser(context.Background(), 1111, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, second.ID, msgs[0].ID)
	assert.Equal(t, first.ID, msgs[1].ID)
}

func TestMessageRepository_Timeline(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewMessageRepository(db)
	follows := NewFollowRepository(db)
	ctx := context.Background()
	seedUsers(t, db)
	require.NoError(t, db.Create(&models.User{ID: 3333, Username: "test3", Email: "email3@email.com", Password: "x"}).Error)

	own := seedMessage(t, db, 1111, "own", 1)
	followed := seedMessage(t, db, 2222, "followed", 2)
	seedMessage(t, db, 3333, "stranger", 3)

	msgs, err := repo.Timeline(ctx, 1111, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, own.ID, msgs[0].ID)

	require.NoError(t, follows.Create(ctx, 1111, 2222))

	msgs, err = repo.Timeline(ctx, 1111, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, followed.ID, msgs[0].ID)
	assert.Equal(t, own.ID, msgs[1].ID)
	require.NotNil(t, msgs[0].User)
	assert.Equal(t, "test2", msgs[0].User.Username)

	msgs, err = repo.Timeline(ctx, 1111, 1)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestFollowRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	seedUsers(t, db)

	require.NoError(t, repo.Create(ctx, 1111, 2222))
	assert.True(t, models.IsIntegrityError(repo.Create(ctx, 1111, 2222)))
	assert.True(t, models.IsIntegrityError(repo.Create(ctx, 1111, 9999)))

	yes, err := repo.IsFollowing(ctx, 1111, 2222)
	require.NoError(t, err)
	assert.True(t, yes)
	yes, err = repo.IsFollowing(ctx, 2222, 1111)
	require.NoError(t, err)
	assert.False(t, yes)
	yes, err = repo.IsFollowedBy(ctx, 2222, 1111)
	require.NoError(t, err)
	assert.True(t, yes)
	yes, err = repo.IsFollowedBy(ctx, 1111, 2222)
	require.NoError(t, err)
	assert.False(t, yes)

	following, err := repo.Following(ctx, 1111)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, "test2", following[0].Username)

	followers, err := repo.Followers(ctx, 2222)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "test1", followers[0].Username)

	counts := []struct {
		fn   func(context.Context, uint) (int64, error)
		id   uint
		want int64
	}{
		{repo.CountFollowing, 1111, 1},
		{repo.CountFollowers, 1111, 0},
		{repo.CountFollowing, 2222, 0},
		{repo.CountFollowers, 2222, 1},
	}
	for _, c := range counts {
		n, err := c.fn(ctx, c.id)
		require.NoError(t, err)
		assert.Equal(t, c.want, n)
	}

	removed, err := repo.Delete(ctx, 1111, 2222)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.Delete(ctx, 1111, 2222)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFollowRepository_Delete_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewFollowRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "follows" WHERE user_following_id = $1 AND user_being_followed_id = $2`)).
		WithArgs(1, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	removed, err := repo.Delete(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLikeRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	seedUsers(t, db)

	msg := seedMessage(t, db, 2222, "likeable", 0)

	like, err := repo.Create(ctx, 1111, msg.ID)
	require.NoError(t, err)
	assert.NotZero(t, like.ID)

	likes, err := repo.ListByUser(ctx, 1111)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, msg.ID, likes[0].MessageID)

	exists, err := repo.Exists(ctx, 1111, msg.ID)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.Exists(ctx, 2222, msg.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Create(ctx, 1111, 9999)
	assert.True(t, models.IsIntegrityError(err))
}

func TestLikeRepository_DuplicatesAreNotPrevented(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewLikeRepository(db)
	ctx := context.Background()
	seedUsers(t, db)
	msg := seedMessage(t, db, 2222, "twice", 0)

	_, err := repo.Create(ctx, 1111, msg.ID)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 1111, msg.ID)
	require.NoError(t, err)

	n, err := repo.CountByMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	liked, err := repo.LikedMessages(ctx, 1111)
	require.NoError(t, err)
	assert.Len(t, liked, 1)

	removed, err := repo.Delete(ctx, 1111, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}
