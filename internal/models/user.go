// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Profile image defaults applied when a user supplies none.
const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User represents a user in the Warbler application.
// Empty username or email strings are treated as absent and rejected by the schema.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"type:text;unique;not null;check:chk_users_username_present,username <> ''" json:"username"`
	Email          string    `gorm:"type:text;unique;not null;check:chk_users_email_present,email <> ''" json:"email"`
	Password       string    `gorm:"type:text;not null" json:"-"`
	ImageURL       string    `gorm:"type:text;default:'/static/images/default-pic.png'" json:"image_url"`
	HeaderImageURL string    `gorm:"type:text;default:'/static/images/warbler-hero.jpg'" json:"header_image_url"`
	Bio            string    `gorm:"type:text" json:"bio"`
	Location       string    `gorm:"type:text" json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relationships
	Messages []Message `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
	// Following and Followers are populated by the follow repository, never persisted through the user.
	Following []User `gorm:"-" json:"following,omitempty"`
	Followers []User `gorm:"-" json:"followers,omitempty"`
	// Likes holds the messages this user liked; populated on demand.
	Likes []Message `gorm:"-" json:"likes,omitempty"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// IsFollowing reports whether other appears in the loaded Following list.
func (u *User) IsFollowing(other *User) bool {
	if other == nil {
		return false
	}
	for i := range u.Following {
		if u.Following[i].ID == other.ID {
			return true
		}
	}
	return false
}

// IsFollowedBy reports whether other appears in the loaded Followers list.
func (u *User) IsFollowedBy(other *User) bool {
	if other == nil {
		return false
	}
	for i := range u.Followers {
		if u.Followers[i].ID == other.ID {
			return true
		}
	}
	return false
}

// HasLiked reports whether msg appears in the loaded Likes list.
func (u *User) HasLiked(msg *Message) bool {
	if msg == nil {
		return false
	}
	for i := range u.Likes {
		if u.Likes[i].ID == msg.ID {
			return true
		}
	}
	return false
}
