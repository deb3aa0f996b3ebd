package swap

// Role selects which side of an offer a participant query matches.
type Role string

const (
	RoleSender    Role = "sender"
	RoleRecipient Role = "recipient"
	RoleEither    Role = "either"
)

// Store is durable persistence for swap offers. Get after Put on the same
// session observes the written value; visibility across clients is only as
// strong as the backing database provides.
type Store interface {
	// Put inserts a new offer record.
	Put(offer *Offer) error

	// Get returns the offer with the given id, or ErrNotFound.
	Get(id string) (*Offer, error)

	// UpdateStatus is a conditional write: it moves the offer from `from` to
	// `to` only if the stored status still equals `from`. Returns ErrConflict
	// when the condition fails, ErrNotFound when the id has no record.
	UpdateStatus(id string, from, to Status) error

	// QueryByParticipant returns offers where the user appears in the given
	// role, newest first.
	QueryByParticipant(userID uint, role Role) ([]Offer, error)

	// QueryPendingByBook returns pending offers for a book, newest first.
	QueryPendingByBook(bookID uint) ([]Offer, error)
}
