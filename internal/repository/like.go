package repository

import (
	"context"

	"warbler/internal/database"
	"warbler/internal/models"
	"warbler/internal/observability"

	"gorm.io/gorm"
)

// LikeRepository defines persistence operations for likes.
// Create does not deduplicate; see the social service for toggle semantics.
type LikeRepository interface {
	Create(ctx context.Context, userID, messageID uint) (*models.Like, error)
	Delete(ctx context.Context, userID, messageID uint) (int64, error)
	Exists(ctx context.Context, userID, messageID uint) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Like, error)
	LikedMessages(ctx context.Context, userID uint) ([]models.Message, error)
	CountByMessage(ctx context.Context, messageID uint) (int64, error)
}

type likeRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db, logger: observability.NewRepoLogger("likes")}
}

func (r *likeRepository) Create(ctx context.Context, userID, messageID uint) (*models.Like, error) {
	defer observability.TrackQuery("insert", "likes")()

	like := &models.Like{UserID: userID, MessageID: messageID}
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return nil, database.TranslateError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"id": like.ID, "user_id": userID, "message_id": messageID})
	return like, nil
}

// Delete removes every like of messageID by userID and returns how many went.
func (r *likeRepository) Delete(ctx context.Context, userID, messageID uint) (int64, error) {
	defer observability.TrackQuery("delete", "likes")()

	res := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&models.Like{})
	if res.Error != nil {
		return 0, database.TranslateError(res.Error)
	}
	r.logger.LogDelete(ctx, map[string]any{"user_id": userID, "message_id": messageID, "rows": res.RowsAffected})
	return res.RowsAffected, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, messageID uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *likeRepository) ListByUser(ctx context.Context, userID uint) ([]models.Like, error) {
	defer observability.TrackQuery("list", "likes")()

	var likes []models.Like
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&likes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return likes, nil
}

// LikedMessages returns each message userID liked once, regardless of duplicate likes.
func (r *likeRepository) LikedMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	db := r.db.WithContext(ctx)
	ids := db.Model(&models.Like{}).Select("message_id").Where("user_id = ?", userID)

	var msgs []models.Message
	if err := db.Where("id IN (?)", ids).Order("id").Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

func (r *likeRepository) CountByMessage(ctx context.Context, messageID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("message_id = ?", messageID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
