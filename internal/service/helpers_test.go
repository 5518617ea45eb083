package service

import (
	"context"
	"testing"

	"warbler/internal/auth"
	"warbler/internal/database"
	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	users   *UserService
	social  *SocialService
	follows repository.FollowRepository
	u1      *models.User
	u2      *models.User
}

// newFixture signs up test1 (1111) and test2 (2222) against a fresh database.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	f := &fixture{
		db:      db,
		users:   NewUserService(repository.NewUserRepository(db, nil), auth.NewBcryptHasher(bcrypt.MinCost, 1)),
		follows: repository.NewFollowRepository(db),
	}
	f.social = NewSocialService(repository.NewMessageRepository(db), f.follows, repository.NewLikeRepository(db))

	ctx := context.Background()
	session := database.NewSession(db)

	u1, err := f.users.Signup(ctx, session, SignupInput{Username: "test1", Email: "email1@email.com", Password: "password"})
	require.NoError(t, err)
	u1.ID = 1111

	u2, err := f.users.Signup(ctx, session, SignupInput{Username: "test2", Email: "email2@email.com", Password: "password"})
	require.NoError(t, err)
	u2.ID = 2222

	require.NoError(t, session.Commit(ctx))
	f.u1, f.u2 = u1, u2
	return f
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err), "expected validation error, got %v", err)
}

// userRepoStub lets unit tests replace single repository calls.
type userRepoStub struct {
	getByIDFn       func(ctx context.Context, id uint) (*models.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*models.User, error)
	updateFn        func(ctx context.Context, user *models.User) error
	updatePassFn    func(ctx context.Context, id uint, hash string) error
}

var _ repository.UserRepository = (*userRepoStub)(nil)

func noopUserRepo() *userRepoStub {
	return &userRepoStub{}
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	if s.getByIDFn != nil {
		return s.getByIDFn(ctx, id)
	}
	return nil, models.NewNotFoundError("User", id)
}

func (s *userRepoStub) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.GetByID(ctx, id)
}

func (s *userRepoStub) GetWithRelations(ctx context.Context, id uint) (*models.User, error) {
	return s.GetByID(ctx, id)
}

func (s *userRepoStub) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, nil
}

func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if s.getByUsernameFn != nil {
		return s.getByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (s *userRepoStub) Create(context.Context, *models.User) error {
	return nil
}

func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, user)
	}
	return nil
}

func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	if s.updatePassFn != nil {
		return s.updatePassFn(ctx, id, hash)
	}
	return nil
}

func (s *userRepoStub) Delete(context.Context, uint) error {
	return nil
}

func (s *userRepoStub) List(context.Context, int, int) ([]models.User, error) {
	return nil, nil
}

func (s *userRepoStub) Search(context.Context, string, int) ([]models.User, error) {
	return nil, nil
}
