package repository

import (
	"context"
	"errors"

	"warbler/internal/database"
	"warbler/internal/models"
	"warbler/internal/observability"

	"gorm.io/gorm"
)

// DefaultTimelineLimit is how many messages a timeline returns when no limit is given.
const DefaultTimelineLimit = 100

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	Delete(ctx context.Context, id uint) error
}

type messageRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewMessageRepository returns a new MessageRepository implementation.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db, logger: observability.NewRepoLogger("messages")}
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	defer observability.TrackQuery("insert", "messages")()

	if err := r.db.WithContext(ctx).Omit("User").Create(msg).Error; err != nil {
		r.logger.LogError(ctx, err, "create")
		return database.TranslateError(err)
	}
	r.logger.LogCreate(ctx, map[string]any{"id": msg.ID, "user_id": msg.UserID})
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	defer observability.TrackQuery("select", "messages")()

	var msg models.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Message", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}

// ListByUser returns the user's messages, newest first.
func (r *messageRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	defer observability.TrackQuery("list", "messages")()

	var msgs []models.Message
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(limit, DefaultTimelineLimit, 1000)).
		Find(&msgs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

func (r *messageRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// Timeline returns messages by userID and everyone userID follows, newest first.
func (r *messageRepository) Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	defer observability.TrackQuery("timeline", "messages")()

	db := r.db.WithContext(ctx)
	following := db.Model(&models.Follow{}).Select("user_being_followed_id").Where("user_following_id = ?", userID)

	var msgs []models.Message
	if err := db.Preload("User").
		Where("user_id = ? OR user_id IN (?)", userID, following).
		Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(limit, DefaultTimelineLimit, 1000)).
		Find(&msgs).Error; err != nil {
		r.logger.LogError(ctx, err, "timeline")
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

// Delete removes the message and its likes.
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "messages")()

	res := r.db.WithContext(ctx).Delete(&models.Message{}, id)
	if res.Error != nil {
		return database.TranslateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Message", id)
	}
	r.logger.LogDelete(ctx, map[string]any{"id": id})
	return nil
}
