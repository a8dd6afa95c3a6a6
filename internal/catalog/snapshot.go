package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

// Snapshot is an immutable in-memory view of every product and card pool one
// opening may touch. Draws run against a Snapshot so they never block on I/O.
type Snapshot struct {
	products map[string]Product
	cards    map[string][]Card
}

// Product returns the product with id.
func (s *Snapshot) Product(id string) (Product, error) {
	p, ok := s.products[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %q", ErrProductNotFound, id)
	}
	return p, nil
}

// CardsForSet returns the cards of setID.
func (s *Snapshot) CardsForSet(setID string) ([]Card, error) {
	c, ok := s.cards[setID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSetNotFound, setID)
	}
	return c, nil
}

// Len returns the number of products held.
func (s *Snapshot) Len() int { return len(s.products) }

// Materialize fetches productID and everything reachable from it: the box or
// pack it contains, the card pools of their sets and the source packs of box
// toppers. Missing topper sources are tolerated; the draw reports them.
//
// Precondition: p must be non-nil.
// Postcondition: Returns a Snapshot resolving every structural reference of
// productID, or an error if any of them cannot be fetched.
func Materialize(ctx context.Context, p Provider, productID string) (*Snapshot, error) {
	snap := &Snapshot{
		products: make(map[string]Product),
		cards:    make(map[string][]Card),
	}

	queue := []productRef{{id: productID}}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, seen := snap.products[next.id]; seen {
			continue
		}

		prod, err := p.GetProduct(ctx, next.id)
		if err != nil {
			if next.optional && errors.Is(err, ErrProductNotFound) {
				continue
			}
			return nil, fmt.Errorf("catalog: Materialize: product %q: %w", next.id, err)
		}
		snap.products[prod.ID] = prod

		if _, ok := snap.cards[prod.SetID]; !ok {
			cards, err := p.GetCardsForSet(ctx, prod.SetID)
			if err != nil {
				return nil, fmt.Errorf("catalog: Materialize: cards for set %q: %w", prod.SetID, err)
			}
			snap.cards[prod.SetID] = cards
		}

		switch prod.Type {
		case ProductBox:
			if prod.Box != nil {
				queue = append(queue, productRef{id: prod.Box.PackProductID})
				queue = append(queue, topperRefs(prod.Box.Guarantees)...)
			}
		case ProductCase:
			if prod.Case != nil {
				queue = append(queue, productRef{id: prod.Case.BoxProductID})
				queue = append(queue, topperRefs(prod.Case.Guarantees)...)
			}
		}
	}
	return snap, nil
}

type productRef struct {
	id       string
	optional bool
}

func topperRefs(cfg guarantee.Config) []productRef {
	var out []productRef
	for _, r := range cfg.Rules {
		if bt, ok := r.Kind.(guarantee.BoxTopper); ok && bt.SourcePackProductID != "" {
			out = append(out, productRef{id: bt.SourcePackProductID, optional: true})
		}
	}
	return out
}
