package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tinuva88/TCGFun/internal/catalog"
	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

// CatalogRepository stores sets with their rarities, cards and products, and
// serves them back as a catalog.Provider.
type CatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository creates a CatalogRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCatalogRepository(db *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{db: db}
}

var _ catalog.Provider = (*CatalogRepository)(nil)

// SaveSet replaces everything stored for s.ID with s in one transaction.
//
// Precondition: s must have passed Validate.
// Postcondition: The set's rarities, cards and products equal those of s, or
// the database is unchanged and an error is returned.
func (r *CatalogRepository) SaveSet(ctx context.Context, s catalog.Set) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		var tcgID *string
		if s.TCG.ID != "" {
			if _, err := tx.Exec(ctx,
				`INSERT INTO tcgs (id, name) VALUES ($1, $2)
				 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
				s.TCG.ID, s.TCG.Name,
			); err != nil {
				return fmt.Errorf("upserting tcg %q: %w", s.TCG.ID, err)
			}
			tcgID = &s.TCG.ID
		}

		if _, err := tx.Exec(ctx, `DELETE FROM card_sets WHERE id = $1`, s.ID); err != nil {
			return fmt.Errorf("clearing set %q: %w", s.ID, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO card_sets (id, tcg_id, name) VALUES ($1, $2, $3)`,
			s.ID, tcgID, s.Name,
		); err != nil {
			return fmt.Errorf("inserting set %q: %w", s.ID, err)
		}

		batch := &pgx.Batch{}
		for i, rar := range s.Rarities {
			batch.Queue(
				`INSERT INTO rarities (set_id, id, name, color_class, sort_order) VALUES ($1, $2, $3, $4, $5)`,
				s.ID, rar.ID, rar.Name, rar.ColorClass, i,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("inserting rarities of %q: %w", s.ID, err)
		}

		rows := make([][]any, 0, len(s.Cards))
		for i, c := range s.Cards {
			rows = append(rows, []any{s.ID, c.ID, c.Name, c.RarityID, c.MarketPrice, c.ImageURL, c.CardNumber, i})
		}
		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"cards"},
			[]string{"set_id", "id", "name", "rarity_id", "market_price", "image_url", "card_number", "sort_order"},
			pgx.CopyFromRows(rows),
		); err != nil {
			return fmt.Errorf("copying cards of %q: %w", s.ID, err)
		}

		for i, p := range s.Products {
			if err := insertProduct(ctx, tx, s.ID, i, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertProduct(ctx context.Context, tx pgx.Tx, setID string, order int, p catalog.Product) error {
	var (
		cardsPerPack, packsPerBox, boxesPerCase *int
		packID, boxID                           *string
		guarantees                              []byte
	)
	switch p.Type {
	case catalog.ProductPack:
		if p.Pack != nil {
			cardsPerPack = &p.Pack.CardsPerPack
		}
	case catalog.ProductBox:
		if p.Box != nil {
			packID, packsPerBox = &p.Box.PackProductID, &p.Box.PacksPerBox
		}
	case catalog.ProductCase:
		if p.Case != nil {
			boxID, boxesPerCase = &p.Case.BoxProductID, &p.Case.BoxesPerCase
		}
	}
	if cfg, ok := p.Guarantees(); ok {
		raw, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encoding guarantees of %q: %w", p.ID, err)
		}
		guarantees = raw
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO products
		   (id, set_id, name, type, cards_per_pack, pack_product_id, packs_per_box,
		    box_product_id, boxes_per_case, guarantees, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, setID, p.Name, string(p.Type), cardsPerPack, packID, packsPerBox,
		boxID, boxesPerCase, guarantees, order,
	); err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("product %q already stored under another set: %w", p.ID, err)
		}
		return fmt.Errorf("inserting product %q: %w", p.ID, err)
	}

	if p.Type != catalog.ProductPack || p.Pack == nil {
		return nil
	}
	for _, slot := range p.Pack.Slots {
		var fixed *string
		if slot.Type == catalog.SlotFixed {
			fixed = &slot.FixedRarityID
		}
		var slotID int64
		if err := tx.QueryRow(ctx,
			`INSERT INTO pack_slot_configurations (product_id, slot_index, type, count, fixed_rarity_id)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			p.ID, slot.SlotIndex, string(slot.Type), slot.Count, fixed,
		).Scan(&slotID); err != nil {
			return fmt.Errorf("inserting slot %d of %q: %w", slot.SlotIndex, p.ID, err)
		}
		for pos, e := range slot.Pool {
			if _, err := tx.Exec(ctx,
				`INSERT INTO pack_slot_pool_items (slot_id, position, rarity_id, weight) VALUES ($1, $2, $3, $4)`,
				slotID, pos, e.RarityID, e.Weight,
			); err != nil {
				return fmt.Errorf("inserting pool item %d of slot %d of %q: %w", pos, slot.SlotIndex, p.ID, err)
			}
		}
	}
	return nil
}

// GetCardsForSet implements catalog.Provider. Cards come back in content order.
//
// Postcondition: Returns catalog.ErrSetNotFound if no such set is stored.
func (r *CatalogRepository) GetCardsForSet(ctx context.Context, setID string) ([]catalog.Card, error) {
	if err := r.requireSet(ctx, setID); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, name, rarity_id, set_id, market_price, image_url, card_number
		 FROM cards WHERE set_id = $1 ORDER BY sort_order, id`,
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying cards of %q: %w", setID, err)
	}
	cards, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Card, error) {
		var c catalog.Card
		err := row.Scan(&c.ID, &c.Name, &c.RarityID, &c.SetID, &c.MarketPrice, &c.ImageURL, &c.CardNumber)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning cards of %q: %w", setID, err)
	}
	return cards, nil
}

// GetRaritiesForSet implements catalog.Provider.
func (r *CatalogRepository) GetRaritiesForSet(ctx context.Context, setID string) ([]catalog.Rarity, error) {
	if err := r.requireSet(ctx, setID); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, name, set_id, color_class FROM rarities WHERE set_id = $1 ORDER BY sort_order, id`,
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying rarities of %q: %w", setID, err)
	}
	rarities, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Rarity, error) {
		var rar catalog.Rarity
		err := row.Scan(&rar.ID, &rar.Name, &rar.SetID, &rar.ColorClass)
		return rar, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning rarities of %q: %w", setID, err)
	}
	return rarities, nil
}

// GetProduct implements catalog.Provider.
//
// Postcondition: Returns catalog.ErrProductNotFound if no such product is stored.
func (r *CatalogRepository) GetProduct(ctx context.Context, productID string) (catalog.Product, error) {
	var (
		p                                       catalog.Product
		typ                                     string
		cardsPerPack, packsPerBox, boxesPerCase *int
		packID, boxID                           *string
		guarantees                              []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, set_id, name, type, cards_per_pack, pack_product_id, packs_per_box,
		        box_product_id, boxes_per_case, guarantees
		 FROM products WHERE id = $1`,
		productID,
	).Scan(&p.ID, &p.SetID, &p.Name, &typ, &cardsPerPack, &packID, &packsPerBox, &boxID, &boxesPerCase, &guarantees)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, fmt.Errorf("%w: %q", catalog.ErrProductNotFound, productID)
		}
		return catalog.Product{}, fmt.Errorf("querying product %q: %w", productID, err)
	}
	p.Type = catalog.ProductType(typ)

	var cfg guarantee.Config
	if len(guarantees) > 0 {
		if err := json.Unmarshal(guarantees, &cfg); err != nil {
			return catalog.Product{}, fmt.Errorf("decoding guarantees of %q: %w", productID, err)
		}
	}

	switch p.Type {
	case catalog.ProductPack:
		slots, err := r.slots(ctx, productID)
		if err != nil {
			return catalog.Product{}, err
		}
		p.Pack = &catalog.PackDetails{CardsPerPack: deref(cardsPerPack), Slots: slots}
	case catalog.ProductBox:
		p.Box = &catalog.BoxDetails{PackProductID: deref(packID), PacksPerBox: deref(packsPerBox), Guarantees: cfg}
	case catalog.ProductCase:
		p.Case = &catalog.CaseDetails{BoxProductID: deref(boxID), BoxesPerCase: deref(boxesPerCase), Guarantees: cfg}
	}
	return p, nil
}

// ListProducts returns the products of setID in content order, without pack
// slot details.
func (r *CatalogRepository) ListProducts(ctx context.Context, setID string) ([]catalog.Product, error) {
	if err := r.requireSet(ctx, setID); err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, set_id, name, type FROM products WHERE set_id = $1 ORDER BY sort_order, id`,
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying products of %q: %w", setID, err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Product, error) {
		var p catalog.Product
		var typ string
		err := row.Scan(&p.ID, &p.SetID, &p.Name, &typ)
		p.Type = catalog.ProductType(typ)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning products of %q: %w", setID, err)
	}
	return products, nil
}

func (r *CatalogRepository) slots(ctx context.Context, productID string) ([]catalog.SlotConfig, error) {
	rows, err := r.db.Query(ctx,
		`SELECT s.id, s.slot_index, s.type, s.count, COALESCE(s.fixed_rarity_id, ''),
		        i.rarity_id, i.weight
		 FROM pack_slot_configurations s
		 LEFT JOIN pack_slot_pool_items i ON i.slot_id = s.id
		 WHERE s.product_id = $1
		 ORDER BY s.slot_index, s.id, i.position`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying slots of %q: %w", productID, err)
	}
	defer rows.Close()

	var (
		slots  []catalog.SlotConfig
		lastID int64 = -1
	)
	for rows.Next() {
		var (
			id       int64
			slot     catalog.SlotConfig
			typ      string
			rarityID *string
			weight   *float64
		)
		if err := rows.Scan(&id, &slot.SlotIndex, &typ, &slot.Count, &slot.FixedRarityID, &rarityID, &weight); err != nil {
			return nil, fmt.Errorf("scanning slot of %q: %w", productID, err)
		}
		if id != lastID {
			slot.Type = catalog.SlotType(typ)
			slots = append(slots, slot)
			lastID = id
		}
		if rarityID != nil && weight != nil {
			cur := &slots[len(slots)-1]
			cur.Pool = append(cur.Pool, catalog.PoolEntry{RarityID: *rarityID, Weight: *weight})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading slots of %q: %w", productID, err)
	}
	return slots, nil
}

func (r *CatalogRepository) requireSet(ctx context.Context, setID string) error {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM card_sets WHERE id = $1)`, setID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking set %q: %w", setID, err)
	}
	if !exists {
		return fmt.Errorf("%w: %q", catalog.ErrSetNotFound, setID)
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
