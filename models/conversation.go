package models

import (
	"time"
)

// Conversation is the chat thread opened between the two participants of an
// accepted swap. Book title is copied in so the thread keeps its label even
// if the listing goes away.
type Conversation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OfferID     string    `gorm:"size:36;uniqueIndex" json:"offer_id"`
	BookTitle   string    `gorm:"size:255" json:"book_title"`
	SenderID    uint      `gorm:"index" json:"sender_id"`
	Sender      User      `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	RecipientID uint      `gorm:"index" json:"recipient_id"`
	Recipient   User      `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Messages    []Message `json:"messages,omitempty"`
}

// HasParticipant reports whether the user belongs to this conversation.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.SenderID == userID || c.RecipientID == userID
}
