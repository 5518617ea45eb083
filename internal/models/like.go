package models

// Like represents a user's like on a message.
// There is no unique index on (user_id, message_id); callers that must not
// duplicate go through the like toggle.
type Like struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"not null;index" json:"user_id"`
	MessageID uint `gorm:"not null;index" json:"message_id"`

	// Relationships
	User    *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Message *Message `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Like) TableName() string {
	return "likes"
}
