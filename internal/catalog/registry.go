package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Provider is the data-management boundary the simulator reads from.
type Provider interface {
	GetCardsForSet(ctx context.Context, setID string) ([]Card, error)
	GetRaritiesForSet(ctx context.Context, setID string) ([]Rarity, error)
	GetProduct(ctx context.Context, productID string) (Product, error)
}

// Registry is an in-memory catalog built from loaded sets. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sets     map[string]Set
	products map[string]Product
}

// NewRegistry builds a registry from sets.
//
// Precondition: each set must have passed Validate.
// Postcondition: Returns a registry holding every set, or an error on a
// duplicate set or product id.
func NewRegistry(sets ...Set) (*Registry, error) {
	r := &Registry{
		sets:     make(map[string]Set),
		products: make(map[string]Product),
	}
	for _, s := range sets {
		if err := r.Add(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a set and its products.
//
// Postcondition: Returns an error if the set id or any product id is already registered.
func (r *Registry) Add(s Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sets[s.ID]; ok {
		return fmt.Errorf("catalog: Registry.Add: set %q already registered", s.ID)
	}
	for _, p := range s.Products {
		if _, ok := r.products[p.ID]; ok {
			return fmt.Errorf("catalog: Registry.Add: product %q already registered", p.ID)
		}
	}
	s.normalize()
	r.sets[s.ID] = s
	for _, p := range s.Products {
		r.products[p.ID] = p
	}
	return nil
}

// Sets returns all registered sets ordered by id.
func (r *Registry) Sets() []Set {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Set, 0, len(r.sets))
	for _, s := range r.sets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Product returns the product with id.
func (r *Registry) Product(id string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, fmt.Errorf("%w: %q", ErrProductNotFound, id)
	}
	return p, nil
}

// CardsForSet returns the cards of setID.
func (r *Registry) CardsForSet(setID string) ([]Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sets[setID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSetNotFound, setID)
	}
	return s.Cards, nil
}

// RaritiesForSet returns the rarities of setID.
func (r *Registry) RaritiesForSet(setID string) ([]Rarity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sets[setID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSetNotFound, setID)
	}
	return s.Rarities, nil
}

// GetCardsForSet implements Provider.
func (r *Registry) GetCardsForSet(_ context.Context, setID string) ([]Card, error) {
	return r.CardsForSet(setID)
}

// GetRaritiesForSet implements Provider.
func (r *Registry) GetRaritiesForSet(_ context.Context, setID string) ([]Rarity, error) {
	return r.RaritiesForSet(setID)
}

// GetProduct implements Provider.
func (r *Registry) GetProduct(_ context.Context, productID string) (Product, error) {
	return r.Product(productID)
}
