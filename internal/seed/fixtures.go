package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"warbler/internal/database"
	"warbler/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixtures is a hand-written data set. Users are referenced by username and
// messages by their Key.
type Fixtures struct {
	Users    []UserFixture    `yaml:"users"`
	Messages []MessageFixture `yaml:"messages"`
	Follows  []FollowFixture  `yaml:"follows"`
	Likes    []LikeFixture    `yaml:"likes"`
}

type UserFixture struct {
	ID       uint   `yaml:"id"`
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	ImageURL string `yaml:"image_url"`
	Bio      string `yaml:"bio"`
	Location string `yaml:"location"`
}

type MessageFixture struct {
	Key  string `yaml:"key"`
	User string `yaml:"user"`
	Text string `yaml:"text"`
}

type FollowFixture struct {
	Follower string `yaml:"follower"`
	Followed string `yaml:"followed"`
}

type LikeFixture struct {
	User    string `yaml:"user"`
	Message string `yaml:"message"`
}

// Loaded maps fixture names to the persisted rows.
type Loaded struct {
	Users    map[string]*models.User
	Messages map[string]*models.Message
}

// ParseFixtures decodes YAML fixtures. Unknown keys are rejected.
func ParseFixtures(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &fx, nil
}

// LoadFixturesFile parses the file at path and applies it.
func (f *Factory) LoadFixturesFile(ctx context.Context, path string) (*Loaded, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fx, err := ParseFixtures(file)
	if err != nil {
		return nil, err
	}
	return f.LoadFixtures(ctx, fx)
}

// LoadFixtures persists fx in one transaction: nothing is written if any
// reference is unknown or any row violates a constraint.
func (f *Factory) LoadFixtures(ctx context.Context, fx *Fixtures) (*Loaded, error) {
	out := &Loaded{
		Users:    make(map[string]*models.User, len(fx.Users)),
		Messages: make(map[string]*models.Message, len(fx.Messages)),
	}

	var loadErr error
	err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session := database.NewSession(tx)

		for _, uf := range fx.Users {
			password := uf.Password
			if password == "" {
				password = f.opts.Password
			}
			hashed, err := f.hasher.Hash(password)
			if err != nil {
				loadErr = fmt.Errorf("user %q: %w", uf.Username, err)
				return loadErr
			}
			u := &models.User{
				ID:       uf.ID,
				Username: uf.Username,
				Email:    uf.Email,
				Password: hashed,
				ImageURL: uf.ImageURL,
				Bio:      uf.Bio,
				Location: uf.Location,
			}
			if u.ImageURL == "" {
				u.ImageURL = models.DefaultImageURL
			}
			out.Users[uf.Username] = u
			session.Add(u)
		}
		if err := session.Commit(ctx); err != nil {
			return err
		}

		for i, mf := range fx.Messages {
			author, ok := out.Users[mf.User]
			if !ok {
				loadErr = fmt.Errorf("message %d: unknown user %q", i, mf.User)
				return loadErr
			}
			m := &models.Message{Text: mf.Text, UserID: author.ID}
			key := mf.Key
			if key == "" {
				key = fmt.Sprintf("%d", i)
			}
			out.Messages[key] = m
			session.Add(m)
		}
		if err := session.Commit(ctx); err != nil {
			return err
		}

		for _, ff := range fx.Follows {
			follower, ok1 := out.Users[ff.Follower]
			followed, ok2 := out.Users[ff.Followed]
			if !ok1 || !ok2 {
				loadErr = fmt.Errorf("follow %s -> %s: unknown user", ff.Follower, ff.Followed)
				return loadErr
			}
			session.Add(&models.Follow{UserFollowingID: follower.ID, UserBeingFollowedID: followed.ID})
		}
		for _, lf := range fx.Likes {
			user, ok1 := out.Users[lf.User]
			msg, ok2 := out.Messages[lf.Message]
			if !ok1 || !ok2 {
				loadErr = fmt.Errorf("like %s -> %s: unknown reference", lf.User, lf.Message)
				return loadErr
			}
			session.Add(&models.Like{UserID: user.ID, MessageID: msg.ID})
		}
		return session.Commit(ctx)
	})
	if err != nil {
		if loadErr != nil {
			return nil, models.WrapValidationError(loadErr)
		}
		return nil, database.TranslateError(err)
	}
	return out, nil
}
