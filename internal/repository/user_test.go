package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"warbler/internal/cache"
	"warbler/internal/models"
	"warbler/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()

	query := regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		expectedUser *models.User
		notFound     bool
		internal     bool
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email"}).
					AddRow(1, "testuser", "test@example.com")
				mock.ExpectQuery(query).WithArgs(1, 1).WillReturnRows(rows)
			},
			expectedUser: &models.User{ID: 1, Username: "testuser", Email: "test@example.com"},
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(query).WithArgs(99, 1).WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			notFound: true,
		},
		{
			name:   "Driver Error",
			userID: 5,
			mockBehavior: func() {
				mock.ExpectQuery(query).WithArgs(5, 1).WillReturnError(errors.New("connection reset"))
			},
			internal: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			switch {
			case tt.notFound:
				assert.True(t, models.IsNotFoundError(err))
				assert.Nil(t, user)
			case tt.internal:
				assert.Error(t, err)
				assert.False(t, models.IsNotFoundError(err))
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expectedUser.Username, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByUsername_Missing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1 ORDER BY "users"."id" LIMIT $2`)).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	user, err := repo.GetByUsername(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_UniqueViolation(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{Username: "test1", Email: "e@e.com", Password: "x"})
	assert.True(t, models.IsIntegrityError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Integration(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()
	u1, _ := seedUsers(t, db)

	t.Run("lookups", func(t *testing.T) {
		got, err := repo.GetByUsername(ctx, "test1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, u1.ID, got.ID)
		assert.Equal(t, "HASHED_PASSWORD_1", got.Password)

		got, err = repo.GetByEmail(ctx, "email2@email.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, uint(2222), got.ID)

		got, err = repo.GetByEmail(ctx, "nobody@email.com")
		assert.NoError(t, err)
		assert.Nil(t, got)

		_, err = repo.GetByID(ctx, 9999)
		assert.True(t, models.IsNotFoundError(err))
	})

	t.Run("duplicate create", func(t *testing.T) {
		err := repo.Create(ctx, &models.User{Username: "test1", Email: "new@email.com", Password: "x"})
		assert.True(t, models.IsIntegrityError(err))
	})

	t.Run("update keeps password", func(t *testing.T) {
		edit := &models.User{ID: 1111, Username: "test1", Email: "email1@email.com", Bio: "hello", Location: "Berlin"}
		require.NoError(t, repo.Update(ctx, edit))

		got, err := repo.GetByID(ctx, 1111)
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Bio)
		assert.Equal(t, "Berlin", got.Location)
		assert.Equal(t, "HASHED_PASSWORD_1", got.Password)

		err = repo.Update(ctx, &models.User{ID: 1111, Username: "test2", Email: "email1@email.com"})
		assert.True(t, models.IsIntegrityError(err))

		err = repo.Update(ctx, &models.User{ID: 4242, Username: "nobody", Email: "nobody@email.com"})
		assert.True(t, models.IsNotFoundError(err))
	})

	t.Run("update password", func(t *testing.T) {
		require.NoError(t, repo.UpdatePassword(ctx, 2222, "NEW_HASH"))
		got, err := repo.GetByID(ctx, 2222)
		require.NoError(t, err)
		assert.Equal(t, "NEW_HASH", got.Password)

		assert.True(t, models.IsNotFoundError(repo.UpdatePassword(ctx, 4242, "x")))
	})

	t.Run("list and search", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &models.User{Username: "under_score", Email: "u@email.com", Password: "x"}))

		users, err := repo.List(ctx, 0, 0)
		require.NoError(t, err)
		assert.Len(t, users, 3)

		users, err = repo.List(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, uint(2222), users[0].ID)

		users, err = repo.Search(ctx, "test", 10)
		require.NoError(t, err)
		assert.Len(t, users, 2)

		users, err = repo.Search(ctx, "_", 10)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "under_score", users[0].Username)
	})
}

func TestUserRepository_GetWithRelations(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db, nil)
	follows := NewFollowRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()
	seedUsers(t, db)

	m1 := seedMessage(t, db, 1111, "older", 0)
	m2 := seedMessage(t, db, 1111, "newer", 5)
	theirs := seedMessage(t, db, 2222, "from test2", 1)

	require.NoError(t, follows.Create(ctx, 1111, 2222))
	_, err := likes.Create(ctx, 1111, theirs.ID)
	require.NoError(t, err)

	u1, err := repo.GetWithRelations(ctx, 1111)
	require.NoError(t, err)
	require.Len(t, u1.Messages, 2)
	assert.Equal(t, m2.ID, u1.Messages[0].ID)
	assert.Equal(t, m1.ID, u1.Messages[1].ID)
	require.Len(t, u1.Following, 1)
	assert.Equal(t, uint(2222), u1.Following[0].ID)
	assert.Empty(t, u1.Followers)
	assert.True(t, u1.HasLiked(theirs))
	assert.False(t, u1.HasLiked(m1))

	u2, err := repo.GetWithRelations(ctx, 2222)
	require.NoError(t, err)
	assert.True(t, u2.IsFollowedBy(u1))
	assert.False(t, u2.IsFollowing(u1))
	assert.True(t, u1.IsFollowing(u2))

	_, err = repo.GetWithRelations(ctx, 9999)
	assert.True(t, models.IsNotFoundError(err))
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db, nil)
	ctx := context.Background()
	seedUsers(t, db)

	msg := seedMessage(t, db, 2222, "bye", 0)
	require.NoError(t, NewFollowRepository(db).Create(ctx, 1111, 2222))
	_, err := NewLikeRepository(db).Create(ctx, 1111, msg.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, 2222))
	assert.Equal(t, int64(0), testutil.CountRows(t, db, &models.Message{}))
	assert.Equal(t, int64(0), testutil.CountRows(t, db, &models.Follow{}))
	assert.Equal(t, int64(0), testutil.CountRows(t, db, &models.Like{}))

	assert.True(t, models.IsNotFoundError(repo.Delete(ctx, 2222)))
}

func TestUserRepository_GetProfileCaching(t *testing.T) {
	db := testutil.NewTestDB(t)
	c, mr := testutil.NewTestCache(t)
	repo := NewUserRepository(db, c)
	ctx := context.Background()
	seedUsers(t, db)

	p, err := repo.GetProfile(ctx, 1111)
	require.NoError(t, err)
	assert.Equal(t, "test1", p.Username)
	assert.Empty(t, p.Password)
	assert.True(t, mr.Exists(cache.ProfileKey(1111)))

	// A write that bypasses the repository is not seen until invalidation.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", 1111).Update("bio", "raw").Error)
	p, err = repo.GetProfile(ctx, 1111)
	require.NoError(t, err)
	assert.Empty(t, p.Bio)

	require.NoError(t, repo.Update(ctx, &models.User{ID: 1111, Username: "test1", Email: "email1@email.com", Bio: "fresh"}))
	assert.False(t, mr.Exists(cache.ProfileKey(1111)))

	p, err = repo.GetProfile(ctx, 1111)
	require.NoError(t, err)
	assert.Equal(t, "fresh", p.Bio)

	_, err = repo.GetProfile(ctx, 9999)
	assert.True(t, models.IsNotFoundError(err))
	assert.False(t, mr.Exists(cache.ProfileKey(9999)))
}
