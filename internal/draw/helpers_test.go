package draw_test

import (
	"github.com/Tinuva88/TCGFun/internal/catalog"
)

// seq replays a fixed list of values, cycling when exhausted.
type seq struct {
	vals []float64
	i    int
}

func newSeq(vals ...float64) *seq { return &seq{vals: vals} }

func (s *seq) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func card(id, rarity, set string) catalog.Card {
	return catalog.Card{ID: id, Name: id, RarityID: rarity, SetID: set}
}

// testCards returns four commons, two rares and two super rares of set S1.
func testCards() []catalog.Card {
	return []catalog.Card{
		card("c1", "C", "S1"),
		card("c2", "C", "S1"),
		card("c3", "C", "S1"),
		card("c4", "C", "S1"),
		card("r1", "R", "S1"),
		card("r2", "R", "S1"),
		card("sr1", "SR", "S1"),
		card("sr2", "SR", "S1"),
	}
}

func countRarity(cards []catalog.Card, rarity string) int {
	n := 0
	for _, c := range cards {
		if c.RarityID == rarity {
			n++
		}
	}
	return n
}

func fixedSlot(index, count int, rarity string) catalog.SlotConfig {
	return catalog.SlotConfig{SlotIndex: index, Type: catalog.SlotFixed, Count: count, FixedRarityID: rarity}
}

func packProduct(id string, cardsPerPack int, slots ...catalog.SlotConfig) catalog.Product {
	return catalog.Product{
		ID:    id,
		Name:  id,
		Type:  catalog.ProductPack,
		SetID: "S1",
		Pack:  &catalog.PackDetails{CardsPerPack: cardsPerPack, Slots: slots},
	}
}
