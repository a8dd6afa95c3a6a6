package draw

import (
	"fmt"

	"github.com/Tinuva88/TCGFun/internal/catalog"
)

// DefaultSlotAttempts bounds the weighted picks a pool slot makes before
// giving up on rarities with no cards.
const DefaultSlotAttempts = 3

// SlotResolver turns one slot into one card.
type SlotResolver struct {
	Pool *RarityPool
	// MaxAttempts bounds pool-slot retries; values below 1 mean DefaultSlotAttempts.
	MaxAttempts int
}

// Resolve draws one card for slot.
//
// Precondition: r.Pool must be non-nil.
// Postcondition: a fixed slot only returns cards of FixedRarityID; a pool slot
// returns a card of one of its pool rarities. Errors wrap ErrNoCardsForRarity,
// ErrEmptyPool or ErrInvalidSlot.
func (r SlotResolver) Resolve(slot catalog.SlotConfig, src Source) (catalog.Card, error) {
	switch slot.Type {
	case catalog.SlotFixed:
		cards := r.Pool.Cards(slot.FixedRarityID)
		if len(cards) == 0 {
			return catalog.Card{}, fmt.Errorf("%w: slot %d: %q", ErrNoCardsForRarity, slot.SlotIndex, slot.FixedRarityID)
		}
		return pickCard(src, cards)
	case catalog.SlotPool:
		return r.resolvePool(slot, src)
	default:
		return catalog.Card{}, fmt.Errorf("%w: slot %d: unknown type %q", ErrInvalidSlot, slot.SlotIndex, slot.Type)
	}
}

func (r SlotResolver) resolvePool(slot catalog.SlotConfig, src Source) (catalog.Card, error) {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = DefaultSlotAttempts
	}

	weights := make([]float64, len(slot.Pool))
	for i, e := range slot.Pool {
		weights[i] = e.Weight
	}

	var tried []string
	for attempt := 0; attempt < attempts; attempt++ {
		i, err := Pick(src, weights)
		if err != nil {
			if attempt == 0 {
				return catalog.Card{}, fmt.Errorf("%w: slot %d", err, slot.SlotIndex)
			}
			break
		}
		rarity := slot.Pool[i].RarityID
		if cards := r.Pool.Cards(rarity); len(cards) > 0 {
			return pickCard(src, cards)
		}
		tried = append(tried, rarity)
		for j, e := range slot.Pool {
			if e.RarityID == rarity {
				weights[j] = 0
			}
		}
	}
	return catalog.Card{}, fmt.Errorf("%w: slot %d: tried %v", ErrNoCardsForRarity, slot.SlotIndex, tried)
}
