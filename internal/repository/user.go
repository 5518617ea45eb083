// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"warbler/internal/cache"
	"warbler/internal/database"
	"warbler/internal/models"
	"warbler/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetProfile(ctx context.Context, id uint) (*models.User, error)
	GetWithRelations(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
}

// profileColumns are the columns Update writes. The password hash is only
// changed through UpdatePassword.
var profileColumns = []string{"username", "email", "image_url", "header_image_url", "bio", "location"}

type userRepository struct {
	db     *gorm.DB
	cache  *cache.Cache
	logger *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation. c may be nil.
func NewUserRepository(db *gorm.DB, c *cache.Cache) UserRepository {
	return &userRepository{
		db:     db,
		cache:  c,
		logger: observability.NewRepoLogger("users"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		r.logger.LogError(ctx, err, "get_by_id")
		return nil, models.NewInternalError(err)
	}
	r.logger.LogRead(ctx, map[string]any{"id": id})
	return &user, nil
}

// GetProfile is a cached read of a user without the password hash.
// The result must not be written back.
func (r *userRepository) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.cache.Aside(ctx, cache.ProfileKey(id), &user, cache.ProfileTTL, func() error {
		found, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		user = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

func (r *userRepository) GetWithRelations(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("select_relations", "users")()

	db := r.db.WithContext(ctx)
	var user models.User
	err := db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC").Order("id DESC")
	}).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}

	following := db.Model(&models.Follow{}).Select("user_being_followed_id").Where("user_following_id = ?", id)
	if err := db.Where("id IN (?)", following).Order("id").Find(&user.Following).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	followers := db.Model(&models.Follow{}).Select("user_following_id").Where("user_being_followed_id = ?", id)
	if err := db.Where("id IN (?)", followers).Order("id").Find(&user.Followers).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	liked := db.Model(&models.Like{}).Select("message_id").Where("user_id = ?", id)
	if err := db.Where("id IN (?)", liked).Order("id").Find(&user.Likes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	r.logger.LogRead(ctx, map[string]any{"id": id, "relations": true})
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getBy(ctx, "username", username)
}

// getBy returns (nil, nil) when no row matches.
func (r *userRepository) getBy(ctx context.Context, column, value string) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()

	var user models.User
	if err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.LogError(ctx, err, "get_by_"+column)
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("insert", "users")()

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return database.TranslateError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"id": user.ID, "username": user.Username})
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("update", "users")()

	res := r.db.WithContext(ctx).Model(user).Select(profileColumns).Updates(user)
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "update")
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	r.cache.InvalidateUser(ctx, user.ID)
	r.logger.LogUpdate(ctx, map[string]any{"id": user.ID})
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	defer observability.TrackQuery("update", "users")()

	res := r.db.WithContext(ctx).Model(&models.User{ID: id}).Update("password", hash)
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.logger.LogUpdate(ctx, map[string]any{"id": id, "field": "password"})
	return nil
}

// Delete removes the user. Messages, follow edges and likes go with it.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "users")()

	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		r.logger.LogError(ctx, res.Error, "delete")
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.cache.InvalidateUser(ctx, id)
	r.logger.LogDelete(ctx, map[string]any{"id": id})
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	defer observability.TrackQuery("list", "users")()

	var users []models.User
	if err := r.db.WithContext(ctx).
		Order("id").
		Limit(clampLimit(limit, 50, 500)).
		Offset(max(offset, 0)).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Search matches usernames containing query.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	defer observability.TrackQuery("search", "users")()

	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("username LIKE ? ESCAPE '\\'", pattern).
		Order("username").
		Limit(clampLimit(limit, 50, 500)).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// clampLimit returns def for non-positive limits and caps at maxLimit.
func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
