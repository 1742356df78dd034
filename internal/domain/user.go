package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is created on first successful Discord login; discord_id is the
// natural key for the upsert-on-login path.
type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DiscordID     string     `gorm:"uniqueIndex;not null;column:discord_id" json:"discord_id"`
	Username      string     `gorm:"not null;column:username" json:"username"`
	Discriminator string     `gorm:"column:discriminator" json:"discriminator,omitempty"`
	Avatar        string     `gorm:"column:avatar" json:"avatar,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;default:now()" json:"created_at"`
	LastLogin     *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`
}

func (User) TableName() string { return "user" }

// DisplayName is what the search index shows as the creator field.
func (u *User) DisplayName() string {
	return u.Username
}
