package websocket

import (
	"log"

	"github.com/pageturners/bookswap_backend/database"
	"github.com/pageturners/bookswap_backend/models"
	"github.com/pageturners/bookswap_backend/swap"
)

// SwapEvents consumes transition events from the lifecycle engine. It pushes
// a swap_update to both participants and, when an offer is accepted, opens
// the chat conversation between them. Failures here are logged and dropped;
// they never affect the transition itself.
type SwapEvents struct {
	Store swap.Store
}

// NotifyTransition implements swap.Notifier
func (n *SwapEvents) NotifyTransition(ev swap.TransitionEvent) {
	SendToUser(ev.SenderID, "swap_update", ev)
	SendToUser(ev.RecipientID, "swap_update", ev)

	if ev.To != swap.StatusAccepted {
		return
	}

	offer, err := n.Store.Get(ev.OfferID)
	if err != nil {
		log.Printf("Error loading offer %s for conversation: %v", ev.OfferID, err)
		return
	}

	// Unique index on offer_id keeps this idempotent under redundant events
	conversation := models.Conversation{
		OfferID:     offer.ID,
		BookTitle:   offer.BookTitle,
		SenderID:    offer.SenderID,
		RecipientID: offer.RecipientID,
	}
	if err := database.DB.Where("offer_id = ?", offer.ID).
		FirstOrCreate(&conversation).Error; err != nil {
		log.Printf("Error creating conversation for offer %s: %v", offer.ID, err)
		return
	}

	SendToUser(offer.SenderID, "conversation_opened", conversation)
	SendToUser(offer.RecipientID, "conversation_opened", conversation)
}
