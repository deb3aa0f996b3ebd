package swap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitionTable(t *testing.T) {
	statuses := []Status{StatusPending, StatusAccepted, StatusRejected, StatusCancelled}

	legal := map[[2]Status]bool{
		{StatusPending, StatusAccepted}:  true,
		{StatusPending, StatusRejected}:  true,
		{StatusPending, StatusCancelled}: true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			got := from.CanTransitionTo(to)
			assert.Equal(t, legal[[2]Status{from, to}], got, "%s -> %s", from, to)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusAccepted.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestOfferParticipantAccessors(t *testing.T) {
	offer := Offer{
		SenderID: 1, SenderName: "Alice", SenderEmail: "alice@example.com",
		RecipientID: 2, RecipientName: "Bob", RecipientEmail: "bob@example.com",
	}

	assert.Equal(t, Participant{ID: 1, Name: "Alice", Email: "alice@example.com"}, offer.Sender())
	assert.Equal(t, Participant{ID: 2, Name: "Bob", Email: "bob@example.com"}, offer.Recipient())
}
