// Package collection tracks the cards an owner has pulled from simulated
// openings.
package collection

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Tinuva88/TCGFun/internal/catalog"
)

// ErrEmptyOwner is returned when an operation is given an empty owner.
var ErrEmptyOwner = errors.New("collection: owner must not be empty")

// Entry is one distinct card held by an owner.
type Entry struct {
	CardID   string `json:"card_id"`
	Name     string `json:"name"`
	RarityID string `json:"rarity_id"`
	SetID    string `json:"set_id"`
	Quantity int    `json:"quantity"`
}

// Store persists collections.
type Store interface {
	// Add increments the quantity of every card in cards by one per occurrence.
	Add(ctx context.Context, owner string, cards []catalog.Card) error
	// Entries returns the owner's entries ordered by set, then card id.
	Entries(ctx context.Context, owner string) ([]Entry, error)
	// Count returns the quantity held of cardID, or 0.
	Count(ctx context.Context, owner, cardID string) (int, error)
	// Clear removes every entry of owner.
	Clear(ctx context.Context, owner string) error
}

// Summary returns the number of distinct cards and the total number of cards.
func Summary(entries []Entry) (unique, total int) {
	for _, e := range entries {
		if e.Quantity > 0 {
			unique++
			total += e.Quantity
		}
	}
	return unique, total
}

// Tally folds cards into entries keyed by card id, preserving first-seen details.
func Tally(cards []catalog.Card) map[string]Entry {
	out := make(map[string]Entry, len(cards))
	for _, c := range cards {
		e, ok := out[c.ID]
		if !ok {
			e = Entry{CardID: c.ID, Name: c.Name, RarityID: c.RarityID, SetID: c.SetID}
		}
		e.Quantity++
		out[c.ID] = e
	}
	return out
}

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	owners map[string]map[string]Entry
}

// NewMemory returns an empty in-process Store.
func NewMemory() *Memory {
	return &Memory{owners: make(map[string]map[string]Entry)}
}

// Add implements Store.
func (m *Memory) Add(_ context.Context, owner string, cards []catalog.Card) error {
	if owner == "" {
		return ErrEmptyOwner
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	held, ok := m.owners[owner]
	if !ok {
		held = make(map[string]Entry)
		m.owners[owner] = held
	}
	for id, add := range Tally(cards) {
		e, ok := held[id]
		if !ok {
			e = add
			e.Quantity = 0
		}
		e.Quantity += add.Quantity
		held[id] = e
	}
	return nil
}

// Entries implements Store.
func (m *Memory) Entries(_ context.Context, owner string) ([]Entry, error) {
	if owner == "" {
		return nil, ErrEmptyOwner
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, 0, len(m.owners[owner]))
	for _, e := range m.owners[owner] {
		out = append(out, e)
	}
	SortEntries(out)
	return out, nil
}

// Count implements Store.
func (m *Memory) Count(_ context.Context, owner, cardID string) (int, error) {
	if owner == "" {
		return 0, ErrEmptyOwner
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owners[owner][cardID].Quantity, nil
}

// Clear implements Store.
func (m *Memory) Clear(_ context.Context, owner string) error {
	if owner == "" {
		return ErrEmptyOwner
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.owners, owner)
	return nil
}

// SortEntries orders entries by set id, then card id.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SetID != entries[j].SetID {
			return entries[i].SetID < entries[j].SetID
		}
		return entries[i].CardID < entries[j].CardID
	})
}
