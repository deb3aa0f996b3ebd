package swap

import (
	"time"
)

// Status is the lifecycle state of a swap offer.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is legal from s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected || s == StatusCancelled
}

// CanTransitionTo reports whether s -> to is a legal edge. Only a pending
// offer may move, and only into a terminal state.
func (s Status) CanTransitionTo(to Status) bool {
	return s == StatusPending && to.Terminal()
}

// Participant identifies one side of a swap at call time. The engine trusts
// these values as given; identity verification happens upstream.
type Participant struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// BookSnapshot is the requested book as it looked when the offer was made.
type BookSnapshot struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
}

// Offer is a swap-offer record. Participant and book details are denormalized
// at creation so the record survives later edits or deletion of the book
// listing. The json field names are a wire contract for external tooling.
type Offer struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	SenderID       uint      `gorm:"index" json:"senderId"`
	SenderName     string    `gorm:"size:255" json:"senderName"`
	SenderEmail    string    `gorm:"size:255" json:"senderEmail"`
	RecipientID    uint      `gorm:"index" json:"recipientId"`
	RecipientName  string    `gorm:"size:255" json:"recipientName"`
	RecipientEmail string    `gorm:"size:255" json:"recipientEmail"`
	BookID         uint      `gorm:"index" json:"bookId"`
	BookTitle      string    `gorm:"size:255" json:"bookTitle"`
	BookImageURL   string    `gorm:"size:512" json:"bookImageUrl"`
	Status         Status    `gorm:"size:20;default:'pending'" json:"status"`
	Message        string    `gorm:"type:text" json:"message,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (Offer) TableName() string {
	return "swap_offers"
}

// Sender returns the sender side as a Participant.
func (o *Offer) Sender() Participant {
	return Participant{ID: o.SenderID, Name: o.SenderName, Email: o.SenderEmail}
}

// Recipient returns the recipient side as a Participant.
func (o *Offer) Recipient() Participant {
	return Participant{ID: o.RecipientID, Name: o.RecipientName, Email: o.RecipientEmail}
}
