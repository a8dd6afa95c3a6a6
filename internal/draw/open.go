package draw

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Tinuva88/TCGFun/internal/catalog"
	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

// Resolver supplies products and card pools to box and case openings. It
// must answer from memory; see catalog.Snapshot.
type Resolver interface {
	Product(id string) (catalog.Product, error)
	CardsForSet(setID string) ([]catalog.Card, error)
}

// Open resolves productID and opens it according to its type.
//
// Precondition: r must resolve productID and everything it references.
func (e *Engine) Open(productID string, r Resolver, src Source) (Result, error) {
	p, err := r.Product(productID)
	if err != nil {
		return Result{}, fmt.Errorf("draw: Open: %w: %w", ErrUnknownProduct, err)
	}
	switch p.Type {
	case catalog.ProductPack:
		cards, err := r.CardsForSet(p.SetID)
		if err != nil {
			return Result{}, fmt.Errorf("draw: Open: cards for set %q: %w", p.SetID, err)
		}
		return e.DrawPack(p, cards, src)
	case catalog.ProductBox:
		return e.OpenBox(p, r, r, src)
	case catalog.ProductCase:
		return e.OpenCase(p, r, r, src)
	default:
		return Result{}, fmt.Errorf("draw: Open: %w: %q has type %q", ErrWrongProductType, p.ID, p.Type)
	}
}

// OpenBox draws packs_per_box packs and applies the box's rules at box scope.
//
// Precondition: box must be a box product; packs resolves its pack product;
// aux resolves box topper sources.
// Postcondition: before toppers and chase appends, the result holds
// packs_per_box × pack size cards. On error no cards are returned.
func (e *Engine) OpenBox(box catalog.Product, packs, aux Resolver, src Source) (Result, error) {
	start := time.Now()
	res, _, _, err := e.openBox(box, packs, aux, src)
	if err != nil {
		return Result{}, err
	}
	res.Diagnostics = dedupe(res.Diagnostics)
	e.logDiagnostics(res.Diagnostics)
	e.logger.Debug("box opened",
		zap.String("product", box.ID),
		zap.Int("cards", len(res.Cards)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// openBox returns the guaranteed box result, the positions its rules wrote
// and the pack set's card pool.
func (e *Engine) openBox(box catalog.Product, packs, aux Resolver, src Source) (Result, []bool, []catalog.Card, error) {
	if box.Type != catalog.ProductBox {
		return Result{}, nil, nil, fmt.Errorf("draw: OpenBox: %w: %q is %q", ErrWrongProductType, box.ID, box.Type)
	}
	if box.Box == nil || box.Box.PacksPerBox < 1 {
		return Result{}, nil, nil, fmt.Errorf("draw: OpenBox: %w: %q needs pack details and packs_per_box >= 1", ErrInvalidProduct, box.ID)
	}

	pack, cardsInSet, err := resolvePack(packs, box.Box.PackProductID)
	if err != nil {
		return Result{}, nil, nil, fmt.Errorf("draw: OpenBox: %q: %w", box.ID, err)
	}

	pool := NewRarityPool(cardsInSet)
	diags := packDiagnostics(pack)
	aggregate := make([]catalog.Card, 0, box.Box.PacksPerBox*pack.Pack.SlotCardCount())
	for i := 0; i < box.Box.PacksPerBox; i++ {
		cards, err := e.drawPackCards(pack, pool, src)
		if err != nil {
			return Result{}, nil, nil, fmt.Errorf("draw: OpenBox: %q pack %d: %w", box.ID, i+1, err)
		}
		aggregate = append(aggregate, cards...)
	}

	res, protected, err := e.applyGuarantees(aggregate, nil, box.Box.Guarantees.Rules, cardsInSet, guarantee.ScopePerBox, aux, src)
	if err != nil {
		return Result{}, nil, nil, fmt.Errorf("draw: OpenBox: %q: %w", box.ID, err)
	}
	res.Diagnostics = append(diags, tagProduct(res.Diagnostics, box.ID)...)
	return res, protected, cardsInSet, nil
}

// OpenCase opens boxes_per_case boxes, each with its own box rules, then
// applies the case's rules at case scope to the aggregate.
//
// Precondition: c must be a case product; packs resolves its box and pack
// products; aux resolves box topper sources.
// Postcondition: positions written by box rules, box toppers included, are
// never rewritten by case rules. On error no cards are returned.
func (e *Engine) OpenCase(c catalog.Product, packs, aux Resolver, src Source) (Result, error) {
	start := time.Now()
	if c.Type != catalog.ProductCase {
		return Result{}, fmt.Errorf("draw: OpenCase: %w: %q is %q", ErrWrongProductType, c.ID, c.Type)
	}
	if c.Case == nil || c.Case.BoxesPerCase < 1 {
		return Result{}, fmt.Errorf("draw: OpenCase: %w: %q needs case details and boxes_per_case >= 1", ErrInvalidProduct, c.ID)
	}
	box, err := packs.Product(c.Case.BoxProductID)
	if err != nil {
		return Result{}, fmt.Errorf("draw: OpenCase: box %q: %w: %w", c.Case.BoxProductID, ErrUnknownProduct, err)
	}

	var (
		aggregate  []catalog.Card
		protected  []bool
		diags      []Diagnostic
		cardsInSet []catalog.Card
	)
	for i := 0; i < c.Case.BoxesPerCase; i++ {
		res, written, pool, err := e.openBox(box, packs, aux, src)
		if err != nil {
			return Result{}, fmt.Errorf("draw: OpenCase: %q box %d: %w", c.ID, i+1, err)
		}
		aggregate = append(aggregate, res.Cards...)
		protected = append(protected, written...)
		diags = append(diags, res.Diagnostics...)
		cardsInSet = pool
	}

	res, _, err := e.applyGuarantees(aggregate, protected, c.Case.Guarantees.Rules, cardsInSet, guarantee.ScopePerCase, aux, src)
	if err != nil {
		return Result{}, fmt.Errorf("draw: OpenCase: %q: %w", c.ID, err)
	}
	res.Diagnostics = dedupe(append(diags, tagProduct(res.Diagnostics, c.ID)...))
	e.logDiagnostics(res.Diagnostics)
	e.logger.Debug("case opened",
		zap.String("product", c.ID),
		zap.Int("boxes", c.Case.BoxesPerCase),
		zap.Int("cards", len(res.Cards)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func resolvePack(r Resolver, id string) (catalog.Product, []catalog.Card, error) {
	pack, err := r.Product(id)
	if err != nil {
		return catalog.Product{}, nil, fmt.Errorf("pack %q: %w: %w", id, ErrUnknownProduct, err)
	}
	if pack.Type != catalog.ProductPack || pack.Pack == nil {
		return catalog.Product{}, nil, fmt.Errorf("pack %q: %w: is %q", id, ErrWrongProductType, pack.Type)
	}
	cards, err := r.CardsForSet(pack.SetID)
	if err != nil {
		return catalog.Product{}, nil, fmt.Errorf("pack %q: cards for set %q: %w", id, pack.SetID, err)
	}
	if len(cards) == 0 {
		return catalog.Product{}, nil, fmt.Errorf("pack %q: %w", id, ErrEmptyCardPool)
	}
	return pack, cards, nil
}

func tagProduct(diags []Diagnostic, productID string) []Diagnostic {
	for i := range diags {
		if diags[i].ProductID == "" {
			diags[i].ProductID = productID
		}
	}
	return diags
}
