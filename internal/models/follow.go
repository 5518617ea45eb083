package models

// Follow is a directed edge: UserFollowingID follows UserBeingFollowedID.
// The composite key makes each edge unique; self-edges are not prevented here.
type Follow struct {
	UserBeingFollowedID uint `gorm:"primaryKey;autoIncrement:false" json:"user_being_followed_id"`
	UserFollowingID     uint `gorm:"primaryKey;autoIncrement:false" json:"user_following_id"`

	// Relationships
	UserBeingFollowed *User `gorm:"foreignKey:UserBeingFollowedID;constraint:OnDelete:CASCADE" json:"-"`
	UserFollowing     *User `gorm:"foreignKey:UserFollowingID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
