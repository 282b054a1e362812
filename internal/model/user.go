package model

import (
	"time"

	"github.com/google/uuid"
)

// User owns projects and tasks. Every query below the handlers is scoped by
// the user's ID.
type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Email          string    `gorm:"uniqueIndex;not null"`
	HashedPassword string    `gorm:"not null"`
	Name           string    `gorm:"not null"`

	// Reminder chat, linked through PUT /me/telegram.
	TelegramChatID *int64

	CreatedAt time.Time `gorm:"autoCreateTime"`

	Projects []Project `gorm:"foreignKey:OwnerID"`
}

// TelegramChat returns the linked chat, if any.
func (u User) TelegramChat() (int64, bool) {
	if u.TelegramChatID == nil || *u.TelegramChatID == 0 {
		return 0, false
	}
	return *u.TelegramChatID, true
}
