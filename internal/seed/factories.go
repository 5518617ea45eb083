// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"warbler/internal/auth"
	"warbler/internal/database"
	"warbler/internal/models"
	"warbler/internal/observability"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password given to generated users.
const DefaultPassword = "password"

// Options tunes generated data.
type Options struct {
	// DryRun assigns synthetic IDs instead of writing.
	DryRun bool
	// MaxDays spreads message timestamps over this many past days.
	MaxDays int
	// Password is the plaintext for every generated user.
	Password string
	// Seed makes generation reproducible when non-zero.
	Seed int64
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	opts   Options
	hasher auth.Hasher
	faker  *gofakeit.Faker
	// synthetic ID counter when running in DryRun mode
	nextID uint
	// suffix keeps generated usernames and emails unique
	seq int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, hasher auth.Hasher, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.MaxDays <= 0 {
		opts.MaxDays = 90
	}
	return &Factory{
		db:     db,
		opts:   opts,
		hasher: hasher,
		faker:  gofakeit.New(seed),
		nextID: 1000,
	}
}

// BuildUser returns an unsaved user with a hashed password.
func (f *Factory) BuildUser(overrides ...func(*models.User)) (*models.User, error) {
	f.seq++
	hashed, err := f.hasher.Hash(f.opts.Password)
	if err != nil {
		return nil, err
	}

	base := strings.ToLower(f.faker.Username())
	username := fmt.Sprintf("%s%d", base, f.seq)
	if len(username) > 30 {
		username = username[len(username)-30:]
	}

	user := &models.User{
		Username:       username,
		Email:          fmt.Sprintf("%s@%s", username, f.faker.DomainName()),
		Password:       hashed,
		ImageURL:       models.DefaultImageURL,
		HeaderImageURL: models.DefaultHeaderImageURL,
		Bio:            f.faker.Sentence(8),
		Location:       f.faker.City(),
	}
	for _, override := range overrides {
		override(user)
	}
	return user, nil
}

// BuildMessage returns an unsaved message by user with a past timestamp.
func (f *Factory) BuildMessage(user *models.User, overrides ...func(*models.Message)) *models.Message {
	back := time.Duration(f.faker.Number(0, f.opts.MaxDays*24*60)) * time.Minute
	msg := &models.Message{
		Text:      truncate(f.faker.Sentence(f.faker.Number(3, 18)), models.MaxMessageLength),
		UserID:    user.ID,
		CreatedAt: time.Now().Add(-back),
	}
	for _, override := range overrides {
		override(msg)
	}
	return msg
}

// CreateUsers builds and persists n users in one transaction.
func (f *Factory) CreateUsers(ctx context.Context, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	session := database.NewSession(f.db)
	for i := 0; i < n; i++ {
		u, err := f.BuildUser()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
		session.Add(u)
	}
	if f.opts.DryRun {
		f.assignUserIDs(users)
	}
	if err := f.commit(ctx, session, "users"); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateMessages persists perUser messages for each user.
func (f *Factory) CreateMessages(ctx context.Context, users []*models.User, perUser int) ([]*models.Message, error) {
	msgs := make([]*models.Message, 0, len(users)*perUser)
	session := database.NewSession(f.db)
	for _, u := range users {
		for i := 0; i < perUser; i++ {
			m := f.BuildMessage(u)
			msgs = append(msgs, m)
			session.Add(m)
		}
	}
	if f.opts.DryRun {
		for _, m := range msgs {
			f.nextID++
			m.ID = f.nextID
		}
	}
	if err := f.commit(ctx, session, "messages"); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Follow persists follower -> followed edges. Self-edges are skipped.
func (f *Factory) Follow(ctx context.Context, follower *models.User, followed ...*models.User) error {
	session := database.NewSession(f.db)
	for _, target := range followed {
		if target.ID == follower.ID {
			continue
		}
		session.Add(&models.Follow{UserFollowingID: follower.ID, UserBeingFollowedID: target.ID})
	}
	return f.commit(ctx, session, "follows")
}

// Like persists a like of each message by user.
func (f *Factory) Like(ctx context.Context, user *models.User, msgs ...*models.Message) error {
	session := database.NewSession(f.db)
	for _, m := range msgs {
		session.Add(&models.Like{UserID: user.ID, MessageID: m.ID})
	}
	return f.commit(ctx, session, "likes")
}

func (f *Factory) commit(ctx context.Context, session *database.Session, what string) error {
	if f.opts.DryRun {
		n := session.Pending()
		session.Rollback()
		observability.Logger.InfoContext(ctx, "[dry-run] seed skipped write",
			slog.String("entity", what),
			slog.Int("count", n),
		)
		return nil
	}
	return session.Commit(ctx)
}

// assignUserIDs gives unsaved users synthetic IDs so dry runs can still wire relations.
func (f *Factory) assignUserIDs(users []*models.User) {
	for _, u := range users {
		if u.ID == 0 {
			f.nextID++
			u.ID = f.nextID
		}
	}
}

func truncate(s string, maxRunes int) string {
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	return string([]rune(s)[:maxRunes])
}
