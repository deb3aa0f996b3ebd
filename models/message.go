package models

import (
	"time"
)

type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	ConversationID uint      `gorm:"index" json:"conversation_id"`
	UserID         uint      `json:"user_id"`
	User           User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
