package repository

import (
	"context"

	"warbler/internal/database"
	"warbler/internal/models"
	"warbler/internal/observability"

	"gorm.io/gorm"
)

// FollowRepository manages the directed follow graph. followerID is the user
// doing the following, followedID the user being followed.
type FollowRepository interface {
	Create(ctx context.Context, followerID, followedID uint) error
	Delete(ctx context.Context, followerID, followedID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	IsFollowedBy(ctx context.Context, userID, followerID uint) (bool, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
}

type followRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db, logger: observability.NewRepoLogger("follows")}
}

// Create inserts the edge. An existing edge is an integrity error.
func (r *followRepository) Create(ctx context.Context, followerID, followedID uint) error {
	defer observability.TrackQuery("insert", "follows")()

	edge := &models.Follow{UserBeingFollowedID: followedID, UserFollowingID: followerID}
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return database.TranslateError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"follower_id": followerID, "followed_id": followedID})
	return nil
}

// Delete removes the edge and reports whether it existed.
func (r *followRepository) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	defer observability.TrackQuery("delete", "follows")()

	res := r.db.WithContext(ctx).
		Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, database.TranslateError(res.Error)
	}
	r.logger.LogDelete(ctx, map[string]any{"follower_id": followerID, "followed_id": followedID})
	return res.RowsAffected > 0, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_following_id = ? AND user_being_followed_id = ?", followerID, followedID).
		Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// IsFollowedBy reports whether followerID follows userID.
func (r *followRepository) IsFollowedBy(ctx context.Context, userID, followerID uint) (bool, error) {
	return r.IsFollowing(ctx, followerID, userID)
}

// Following lists the users userID follows.
func (r *followRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	db := r.db.WithContext(ctx)
	ids := db.Model(&models.Follow{}).Select("user_being_followed_id").Where("user_following_id = ?", userID)
	return r.users(db, ids)
}

// Followers lists the users following userID.
func (r *followRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	db := r.db.WithContext(ctx)
	ids := db.Model(&models.Follow{}).Select("user_following_id").Where("user_being_followed_id = ?", userID)
	return r.users(db, ids)
}

func (r *followRepository) users(db *gorm.DB, ids *gorm.DB) ([]models.User, error) {
	defer observability.TrackQuery("select", "follows")()

	var users []models.User
	if err := db.Where("id IN (?)", ids).Order("id").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "user_following_id", userID)
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "user_being_followed_id", userID)
}

func (r *followRepository) count(ctx context.Context, column string, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where(column+" = ?", userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
