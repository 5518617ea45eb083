package service

import (
	"context"

	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
	"warbler/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// Follow and like actions reported to metrics.
const (
	actionFollow   = "follow"
	actionUnfollow = "unfollow"
	actionLike     = "like"
	actionUnlike   = "unlike"
)

type SocialService struct {
	messageRepo repository.MessageRepository
	followRepo  repository.FollowRepository
	likeRepo    repository.LikeRepository
}

func NewSocialService(
	messageRepo repository.MessageRepository,
	followRepo repository.FollowRepository,
	likeRepo repository.LikeRepository,
) *SocialService {
	return &SocialService{
		messageRepo: messageRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
	}
}

// Follow makes followerID follow followedID. Following twice is a no-op.
func (s *SocialService) Follow(ctx context.Context, followerID, followedID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "SocialService.Follow",
		attribute.Int64("follower.id", int64(followerID)),
		attribute.Int64("followed.id", int64(followedID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if followerID == followedID {
		return models.NewValidationError("You cannot follow yourself")
	}

	already, err := s.followRepo.IsFollowing(ctx, followerID, followedID)
	if err != nil {
		return err
	}
	if already {
		return nil
	}

	if err := s.followRepo.Create(ctx, followerID, followedID); err != nil {
		return err
	}
	observability.FollowsTotal.WithLabelValues(actionFollow).Inc()
	return nil
}

// Unfollow removes the edge if present.
func (s *SocialService) Unfollow(ctx context.Context, followerID, followedID uint) error {
	removed, err := s.followRepo.Delete(ctx, followerID, followedID)
	if err != nil {
		return err
	}
	if removed {
		observability.FollowsTotal.WithLabelValues(actionUnfollow).Inc()
	}
	return nil
}

func (s *SocialService) Following(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followRepo.Following(ctx, userID)
}

func (s *SocialService) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	return s.followRepo.Followers(ctx, userID)
}

// ToggleLike likes messageID for userID, or removes the like if one exists.
// It returns whether the message is liked afterwards.
func (s *SocialService) ToggleLike(ctx context.Context, userID, messageID uint) (liked bool, err error) {
	ctx, span := observability.StartSpan(ctx, "SocialService.ToggleLike",
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("message.id", int64(messageID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return false, err
	}
	if msg.UserID == userID {
		return false, models.NewValidationError("You cannot like your own message")
	}

	exists, err := s.likeRepo.Exists(ctx, userID, messageID)
	if err != nil {
		return false, err
	}
	if exists {
		if _, err := s.likeRepo.Delete(ctx, userID, messageID); err != nil {
			return false, err
		}
		observability.LikesTotal.WithLabelValues(actionUnlike).Inc()
		return false, nil
	}

	if _, err := s.likeRepo.Create(ctx, userID, messageID); err != nil {
		return false, err
	}
	observability.LikesTotal.WithLabelValues(actionLike).Inc()
	return true, nil
}

func (s *SocialService) LikedMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	return s.likeRepo.LikedMessages(ctx, userID)
}

// PostMessage validates text and stores it as a new message by userID.
func (s *SocialService) PostMessage(ctx context.Context, userID uint, text string) (msg *models.Message, err error) {
	ctx, span := observability.StartSpan(ctx, "SocialService.PostMessage",
		attribute.Int64("user.id", int64(userID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err := validation.ValidateMessageText(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	msg = &models.Message{Text: text, UserID: userID}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	observability.MessagesPosted.Inc()
	return msg, nil
}

// DeleteMessage removes messageID if userID owns it.
func (s *SocialService) DeleteMessage(ctx context.Context, userID, messageID uint) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.UserID != userID {
		return models.NewForbiddenError("You can only delete your own messages")
	}
	return s.messageRepo.Delete(ctx, messageID)
}

// Timeline returns userID's messages and those of the users they follow,
// newest first. A non-positive limit means repository.DefaultTimelineLimit.
func (s *SocialService) Timeline(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = repository.DefaultTimelineLimit
	}
	return s.messageRepo.Timeline(ctx, userID, limit)
}
