package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tinuva88/TCGFun/internal/catalog"
	"github.com/Tinuva88/TCGFun/internal/collection"
)

// CollectionRepository is a PostgreSQL collection.Store.
type CollectionRepository struct {
	db *pgxpool.Pool
}

// NewCollectionRepository creates a CollectionRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCollectionRepository(db *pgxpool.Pool) *CollectionRepository {
	return &CollectionRepository{db: db}
}

var _ collection.Store = (*CollectionRepository)(nil)

// Add implements collection.Store. All increments land in one transaction.
func (r *CollectionRepository) Add(ctx context.Context, owner string, cards []catalog.Card) error {
	if owner == "" {
		return collection.ErrEmptyOwner
	}
	tally := collection.Tally(cards)
	if len(tally) == 0 {
		return nil
	}
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, e := range tally {
			batch.Queue(
				`INSERT INTO collection_entries (owner, card_id, set_id, rarity_id, name, quantity)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 ON CONFLICT (owner, card_id)
				 DO UPDATE SET quantity = collection_entries.quantity + EXCLUDED.quantity, updated_at = NOW()`,
				owner, e.CardID, e.SetID, e.RarityID, e.Name, e.Quantity,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("adding %d cards for %q: %w", len(cards), owner, err)
		}
		return nil
	})
}

// Entries implements collection.Store.
func (r *CollectionRepository) Entries(ctx context.Context, owner string) ([]collection.Entry, error) {
	if owner == "" {
		return nil, collection.ErrEmptyOwner
	}
	rows, err := r.db.Query(ctx,
		`SELECT card_id, name, rarity_id, set_id, quantity
		 FROM collection_entries WHERE owner = $1
		 ORDER BY set_id, card_id`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("querying collection of %q: %w", owner, err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (collection.Entry, error) {
		var e collection.Entry
		err := row.Scan(&e.CardID, &e.Name, &e.RarityID, &e.SetID, &e.Quantity)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning collection of %q: %w", owner, err)
	}
	return entries, nil
}

// Count implements collection.Store.
func (r *CollectionRepository) Count(ctx context.Context, owner, cardID string) (int, error) {
	if owner == "" {
		return 0, collection.ErrEmptyOwner
	}
	var n int
	if err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM collection_entries WHERE owner = $1 AND card_id = $2`,
		owner, cardID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %q for %q: %w", cardID, owner, err)
	}
	return n, nil
}

// Clear implements collection.Store.
func (r *CollectionRepository) Clear(ctx context.Context, owner string) error {
	if owner == "" {
		return collection.ErrEmptyOwner
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM collection_entries WHERE owner = $1`, owner); err != nil {
		return fmt.Errorf("clearing collection of %q: %w", owner, err)
	}
	return nil
}
