package seed

import (
	"context"
	"log/slog"

	"warbler/internal/models"
	"warbler/internal/observability"
)

// SocialPreset sizes a generated social graph.
type SocialPreset struct {
	Users           int
	MessagesPerUser int
	// FollowsPerUser is how many other users each user follows.
	FollowsPerUser int
	// LikesPerUser is how many other users' messages each user likes.
	LikesPerUser int
}

// Result holds everything a preset created.
type Result struct {
	Users    []*models.User
	Messages []*models.Message
	Follows  int
	Likes    int
}

// Social generates users, messages, a follow mesh and likes. Each user follows
// the next FollowsPerUser users in ring order and likes messages by users
// they follow, so the graph is connected and free of self-edges.
func (f *Factory) Social(ctx context.Context, p SocialPreset) (*Result, error) {
	users, err := f.CreateUsers(ctx, p.Users)
	if err != nil {
		return nil, err
	}
	msgs, err := f.CreateMessages(ctx, users, p.MessagesPerUser)
	if err != nil {
		return nil, err
	}

	byAuthor := make(map[uint][]*models.Message, len(users))
	for _, m := range msgs {
		byAuthor[m.UserID] = append(byAuthor[m.UserID], m)
	}

	res := &Result{Users: users, Messages: msgs}
	n := len(users)
	follows := max(min(p.FollowsPerUser, n-1), 0)
	for i, u := range users {
		targets := make([]*models.User, 0, follows)
		var likeable []*models.Message
		for k := 1; k <= follows; k++ {
			target := users[(i+k)%n]
			targets = append(targets, target)
			likeable = append(likeable, byAuthor[target.ID]...)
		}
		if err := f.Follow(ctx, u, targets...); err != nil {
			return nil, err
		}
		res.Follows += len(targets)

		likeable = likeable[:max(min(p.LikesPerUser, len(likeable)), 0)]
		if err := f.Like(ctx, u, likeable...); err != nil {
			return nil, err
		}
		res.Likes += len(likeable)
	}

	observability.Logger.InfoContext(ctx, "seeded social graph",
		slog.Int("users", len(res.Users)),
		slog.Int("messages", len(res.Messages)),
		slog.Int("follows", res.Follows),
		slog.Int("likes", res.Likes),
	)
	return res, nil
}
