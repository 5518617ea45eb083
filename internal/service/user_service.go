// Package service holds the user and social workflows built on the repositories.
package service

import (
	"context"
	"log/slog"

	"warbler/internal/auth"
	"warbler/internal/database"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/repository"
	"warbler/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type UserService struct {
	userRepo repository.UserRepository
	hasher   auth.Hasher
}

// SignupInput carries the fields a new account is created from.
type SignupInput struct {
	Username string
	Email    string
	Password string
	ImageURL string
}

// UpdateProfileInput is a partial update: empty fields are left unchanged.
type UpdateProfileInput struct {
	UserID         uint
	Username       string
	Email          string
	Bio            string
	Location       string
	ImageURL       string
	HeaderImageURL string
}

func NewUserService(userRepo repository.UserRepository, hasher auth.Hasher) *UserService {
	return &UserService{userRepo: userRepo, hasher: hasher}
}

// Signup hashes the password and stages a new user on session. Nothing is
// written until the caller commits the session; duplicate or missing
// usernames and emails surface then as integrity errors.
func (s *UserService) Signup(ctx context.Context, session *database.Session, in SignupInput) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "UserService.Signup",
		attribute.String("user.username", in.Username),
	)
	defer func() { observability.EndSpan(span, err) }()

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		observability.SignupsTotal.WithLabelValues(observability.ResultRejected).Inc()
		return nil, err
	}

	imageURL := in.ImageURL
	if imageURL == "" {
		imageURL = models.DefaultImageURL
	}

	user = &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hashed,
		ImageURL: imageURL,
	}
	session.Add(user)

	observability.SignupsTotal.WithLabelValues(observability.ResultStaged).Inc()
	observability.Logger.DebugContext(ctx, "signup staged", slog.String("username", in.Username))
	return user, nil
}

// Authenticate returns the user whose username and password match.
// An unknown username or a wrong password yields (nil, nil); only
// infrastructure failures are errors.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "UserService.Authenticate",
		attribute.String("user.username", username),
	)
	defer func() { observability.EndSpan(span, err) }()

	found, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		observability.AuthAttemptsTotal.WithLabelValues(observability.ResultError).Inc()
		return nil, err
	}
	if found == nil {
		observability.AuthAttemptsTotal.WithLabelValues(observability.ResultUnknownUser).Inc()
		return nil, nil
	}
	if !s.hasher.Verify(password, found.Password) {
		observability.AuthAttemptsTotal.WithLabelValues(observability.ResultBadPassword).Inc()
		return nil, nil
	}

	observability.AuthAttemptsTotal.WithLabelValues(observability.ResultSuccess).Inc()
	span.SetAttributes(attribute.Int64("user.id", int64(found.ID)))
	return found, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetProfile returns the cached public view of a user.
func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetProfile(ctx, id)
}

// GetUserWithRelations loads a user with messages, follows and likes.
func (s *UserService) GetUserWithRelations(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetWithRelations(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	return s.userRepo.Search(ctx, query, limit)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = in.Username
	}
	if in.Email != "" {
		if err := validation.ValidateEmail(in.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = in.Email
	}
	if in.Bio != "" {
		if err := validation.ValidateBio(in.Bio); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Bio = in.Bio
	}
	if in.Location != "" {
		user.Location = in.Location
	}
	if in.ImageURL != "" {
		user.ImageURL = in.ImageURL
	}
	if in.HeaderImageURL != "" {
		user.HeaderImageURL = in.HeaderImageURL
	}
	if user.ImageURL == "" {
		user.ImageURL = models.DefaultImageURL
	}
	if user.HeaderImageURL == "" {
		user.HeaderImageURL = models.DefaultHeaderImageURL
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the stored hash after checking the current password.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(current, user.Password) {
		return models.NewValidationError("current password is incorrect")
	}
	hashed, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePassword(ctx, userID, hashed)
}

// DeleteUser removes the user together with their messages, follows and likes.
func (s *UserService) DeleteUser(ctx context.Context, id uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "UserService.DeleteUser",
		attribute.Int64("user.id", int64(id)),
	)
	defer func() { observability.EndSpan(span, err) }()

	return s.userRepo.Delete(ctx, id)
}
