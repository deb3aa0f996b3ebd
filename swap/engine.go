package swap

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TransitionEvent describes a completed status change. It is handed to the
// Notifier after the write lands; consumers use it to message the counterpart.
type TransitionEvent struct {
	OfferID     string `json:"offer_id"`
	From        Status `json:"from"`
	To          Status `json:"to"`
	SenderID    uint   `json:"sender_id"`
	RecipientID uint   `json:"recipient_id"`
}

// Notifier consumes transition events. Implementations must not block for
// long; a failed delivery never rolls back the transition.
type Notifier interface {
	NotifyTransition(ev TransitionEvent)
}

// Invalidator receives staleness hints for derived views.
type Invalidator interface {
	Invalidate(topic Topic)
}

// Engine is the only writer path for swap offers. It validates transitions
// against the persisted state, writes through the Store's conditional update,
// and signals dependent views afterwards.
type Engine struct {
	store    Store
	bus      Invalidator
	notifier Notifier

	now   func() time.Time
	newID func() string
}

// NewEngine wires an engine to its store and invalidation bus. notifier may
// be nil when no collaborator cares about transitions.
func NewEngine(store Store, bus Invalidator, notifier Notifier) *Engine {
	return &Engine{
		store:    store,
		bus:      bus,
		notifier: notifier,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// CreateOffer opens a pending offer from sender to recipient for the given
// book snapshot. message is an optional note shown to the recipient.
func (e *Engine) CreateOffer(sender, recipient Participant, book BookSnapshot, message string) (*Offer, error) {
	if sender.ID == recipient.ID {
		return nil, ErrInvalidParticipants
	}

	offer := &Offer{
		ID:             e.newID(),
		SenderID:       sender.ID,
		SenderName:     sender.Name,
		SenderEmail:    sender.Email,
		RecipientID:    recipient.ID,
		RecipientName:  recipient.Name,
		RecipientEmail: recipient.Email,
		BookID:         book.ID,
		BookTitle:      book.Title,
		BookImageURL:   book.ImageURL,
		Status:         StatusPending,
		Message:        message,
		CreatedAt:      e.now(),
	}

	if err := e.store.Put(offer); err != nil {
		return nil, err
	}

	e.invalidateFor(offer)
	return offer, nil
}

// AcceptOffer moves a pending offer to accepted.
func (e *Engine) AcceptOffer(offerID string) error {
	return e.transition(offerID, StatusAccepted)
}

// RejectOffer moves a pending offer to rejected.
func (e *Engine) RejectOffer(offerID string) error {
	return e.transition(offerID, StatusRejected)
}

// CancelOffer moves a pending offer to cancelled. Only the sender should be
// allowed to cancel; enforcing that is the caller's job, the engine only
// guards the status precondition.
func (e *Engine) CancelOffer(offerID string) error {
	return e.transition(offerID, StatusCancelled)
}

// GetOffer returns the current persisted offer.
func (e *Engine) GetOffer(offerID string) (*Offer, error) {
	return e.store.Get(offerID)
}

// transition performs the read-validate-conditional-write protocol. A lost
// race is retried once against the re-read state, then surfaced as
// ErrConflict.
func (e *Engine) transition(offerID string, to Status) error {
	offer, err := e.store.Get(offerID)
	if err != nil {
		return err
	}
	if !offer.Status.CanTransitionTo(to) {
		return ErrInvalidTransition
	}

	from := offer.Status
	if err := e.store.UpdateStatus(offerID, from, to); err != nil {
		if !errors.Is(err, ErrConflict) {
			return err
		}

		// Someone moved the offer between our read and write. Re-read and
		// try once more; a second loss is reported to the caller.
		offer, err = e.store.Get(offerID)
		if err != nil {
			return err
		}
		if !offer.Status.CanTransitionTo(to) {
			return ErrInvalidTransition
		}
		from = offer.Status
		if err := e.store.UpdateStatus(offerID, from, to); err != nil {
			return err
		}
	}

	offer.Status = to
	e.invalidateFor(offer)

	if e.notifier != nil {
		e.notifier.NotifyTransition(TransitionEvent{
			OfferID:     offer.ID,
			From:        from,
			To:          to,
			SenderID:    offer.SenderID,
			RecipientID: offer.RecipientID,
		})
	}
	return nil
}

// invalidateFor hints every view that depends on the offer: the sender's
// outbox, the recipient's inbox, both users' combined lists and the book's
// pending list.
func (e *Engine) invalidateFor(offer *Offer) {
	if e.bus == nil {
		return
	}
	e.bus.Invalidate(SentOffersTopic(offer.SenderID))
	e.bus.Invalidate(ReceivedOffersTopic(offer.RecipientID))
	e.bus.Invalidate(OffersForUserTopic(offer.SenderID))
	e.bus.Invalidate(OffersForUserTopic(offer.RecipientID))
	e.bus.Invalidate(PendingForBookTopic(offer.BookID))
}
