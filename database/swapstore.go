package database

import (
	"errors"
	"fmt"

	"github.com/pageturners/bookswap_backend/swap"
	"gorm.io/gorm"
)

// SwapStore persists swap offers in postgres. The conditional status update
// leans on the database's per-row atomicity: the UPDATE only matches while
// the stored status is unchanged, so a lost race shows up as zero affected
// rows rather than a silent overwrite.
type SwapStore struct {
	db *gorm.DB
}

// NewSwapStore wraps a gorm handle as a swap.Store.
func NewSwapStore(db *gorm.DB) *SwapStore {
	return &SwapStore{db: db}
}

func (s *SwapStore) Put(offer *swap.Offer) error {
	if err := s.db.Create(offer).Error; err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *SwapStore) Get(id string) (*swap.Offer, error) {
	var offer swap.Offer
	if err := s.db.First(&offer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, swap.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return &offer, nil
}

func (s *SwapStore) UpdateStatus(id string, from, to swap.Status) error {
	res := s.db.Model(&swap.Offer{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		// Condition failed: either the row is gone or another writer moved
		// the status first.
		var count int64
		if err := s.db.Model(&swap.Offer{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return storeErr(err)
		}
		if count == 0 {
			return swap.ErrNotFound
		}
		return swap.ErrConflict
	}
	return nil
}

func (s *SwapStore) QueryByParticipant(userID uint, role swap.Role) ([]swap.Offer, error) {
	q := s.db.Order("created_at DESC")
	switch role {
	case swap.RoleSender:
		q = q.Where("sender_id = ?", userID)
	case swap.RoleRecipient:
		q = q.Where("recipient_id = ?", userID)
	default:
		q = q.Where("sender_id = ? OR recipient_id = ?", userID, userID)
	}

	var offers []swap.Offer
	if err := q.Find(&offers).Error; err != nil {
		return nil, storeErr(err)
	}
	return offers, nil
}

func (s *SwapStore) QueryPendingByBook(bookID uint) ([]swap.Offer, error) {
	var offers []swap.Offer
	if err := s.db.Where("book_id = ? AND status = ?", bookID, swap.StatusPending).
		Order("created_at DESC").
		Find(&offers).Error; err != nil {
		return nil, storeErr(err)
	}
	return offers, nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", swap.ErrStoreUnavailable, err)
}
