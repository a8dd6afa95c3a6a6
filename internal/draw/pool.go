package draw

import "github.com/Tinuva88/TCGFun/internal/catalog"

// RarityPool indexes the cards of a set by rarity. It is read-only after
// construction.
type RarityPool struct {
	all      []catalog.Card
	byRarity map[string][]catalog.Card
	cardIDs  map[string]bool
}

// NewRarityPool indexes cards, preserving their order within each rarity.
func NewRarityPool(cards []catalog.Card) *RarityPool {
	p := &RarityPool{
		all:      cards,
		byRarity: make(map[string][]catalog.Card),
		cardIDs:  make(map[string]bool, len(cards)),
	}
	for _, c := range cards {
		p.byRarity[c.RarityID] = append(p.byRarity[c.RarityID], c)
		p.cardIDs[c.ID] = true
	}
	return p
}

// Cards returns the cards of rarityID, or nil.
func (p *RarityPool) Cards(rarityID string) []catalog.Card { return p.byRarity[rarityID] }

// All returns every card in the pool.
func (p *RarityPool) All() []catalog.Card { return p.all }

// Len returns the number of cards in the pool.
func (p *RarityPool) Len() int { return len(p.all) }

// HasRarity reports whether at least one card has rarityID.
func (p *RarityPool) HasRarity(rarityID string) bool { return len(p.byRarity[rarityID]) > 0 }

// HasCard reports whether cardID is in the pool.
func (p *RarityPool) HasCard(cardID string) bool { return p.cardIDs[cardID] }

// Filter returns the cards for which keep returns true.
func (p *RarityPool) Filter(keep func(catalog.Card) bool) []catalog.Card {
	var out []catalog.Card
	for _, c := range p.all {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

func pickCard(src Source, cards []catalog.Card) (catalog.Card, error) {
	i, err := PickUniform(src, len(cards))
	if err != nil {
		return catalog.Card{}, err
	}
	return cards[i], nil
}
