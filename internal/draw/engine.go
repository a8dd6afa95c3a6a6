package draw

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Tinuva88/TCGFun/internal/catalog"
)

// Result is the outcome of a draw: the pulled cards in order plus any
// non-fatal diagnostics.
type Result struct {
	Cards       []catalog.Card `json:"cards"`
	Diagnostics []Diagnostic   `json:"diagnostics,omitempty"`
}

// Engine draws packs, applies guarantees and opens boxes and cases. It holds no
// mutable state and is safe for concurrent use; each call brings its own Source.
type Engine struct {
	logger       *zap.Logger
	slotAttempts int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger logs draws at debug level and diagnostics at warn level.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSlotAttempts sets the pool-slot retry bound.
func WithSlotAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.slotAttempts = n
		}
	}
}

// NewEngine creates an Engine.
//
// Postcondition: the engine logs nowhere and retries pool slots
// DefaultSlotAttempts times unless configured otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop(), slotAttempts: DefaultSlotAttempts}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DrawPack draws one pack.
//
// Precondition: pack must be a pack product; cardsInSet is the full card pool of its set.
// Postcondition: when slots exist, len(Result.Cards) equals the sum of slot
// counts; slots are drawn in slot_index order. On error no cards are returned.
func (e *Engine) DrawPack(pack catalog.Product, cardsInSet []catalog.Card, src Source) (Result, error) {
	start := time.Now()
	if pack.Type != catalog.ProductPack || pack.Pack == nil {
		return Result{}, fmt.Errorf("draw: DrawPack: %w: %q is %q", ErrWrongProductType, pack.ID, pack.Type)
	}
	if len(cardsInSet) == 0 {
		return Result{}, fmt.Errorf("draw: DrawPack: %q: %w", pack.ID, ErrEmptyCardPool)
	}

	cards, err := e.drawPackCards(pack, NewRarityPool(cardsInSet), src)
	if err != nil {
		return Result{}, err
	}
	res := Result{Cards: cards, Diagnostics: packDiagnostics(pack)}
	e.logDiagnostics(res.Diagnostics)
	e.logger.Debug("pack drawn",
		zap.String("product", pack.ID),
		zap.Int("cards", len(res.Cards)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// orderedSlots returns the slots sorted by slot index, stable for ties.
func orderedSlots(slots []catalog.SlotConfig) []catalog.SlotConfig {
	out := make([]catalog.SlotConfig, len(slots))
	copy(out, slots)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SlotIndex < out[j].SlotIndex })
	return out
}

func (e *Engine) drawPackCards(pack catalog.Product, pool *RarityPool, src Source) ([]catalog.Card, error) {
	details := pack.Pack
	if len(details.Slots) == 0 {
		cards := make([]catalog.Card, 0, max(details.CardsPerPack, 0))
		for i := 0; i < details.CardsPerPack; i++ {
			c, err := pickCard(src, pool.All())
			if err != nil {
				return nil, fmt.Errorf("draw: DrawPack: %q: %w", pack.ID, err)
			}
			cards = append(cards, c)
		}
		return cards, nil
	}

	resolver := SlotResolver{Pool: pool, MaxAttempts: e.slotAttempts}
	cards := make([]catalog.Card, 0, details.SlotCardCount())
	for _, slot := range orderedSlots(details.Slots) {
		for n := 0; n < slot.Count; n++ {
			c, err := resolver.Resolve(slot, src)
			if err != nil {
				return nil, fmt.Errorf("draw: DrawPack: %q: %w", pack.ID, err)
			}
			cards = append(cards, c)
		}
	}
	return cards, nil
}

// packDiagnostics reports configuration issues that do not stop a pack draw.
func packDiagnostics(pack catalog.Product) []Diagnostic {
	details := pack.Pack
	switch {
	case len(details.Slots) == 0 && details.CardsPerPack > 0:
		return []Diagnostic{{
			Kind:      DiagDegradedPack,
			Severity:  SeverityWarning,
			ProductID: pack.ID,
			Message:   fmt.Sprintf("no slots configured; drawing %d uniform cards", details.CardsPerPack),
		}}
	case len(details.Slots) == 0:
		return []Diagnostic{{
			Kind:      DiagEmptyPack,
			Severity:  SeverityWarning,
			ProductID: pack.ID,
			Message:   "no slots and no cards_per_pack configured",
		}}
	case details.CardsPerPack > 0 && details.SlotCardCount() != details.CardsPerPack:
		return []Diagnostic{{
			Kind:      DiagSlotCountMismatch,
			Severity:  SeverityWarning,
			ProductID: pack.ID,
			Message:   fmt.Sprintf("slots yield %d cards but cards_per_pack is %d", details.SlotCardCount(), details.CardsPerPack),
		}}
	}
	return nil
}

func (e *Engine) logDiagnostics(diags []Diagnostic) {
	for _, d := range diags {
		fields := []zap.Field{
			zap.String("kind", string(d.Kind)),
			zap.String("product", d.ProductID),
			zap.String("rule", d.RuleID),
			zap.String("message", d.Message),
		}
		if d.Severity == SeverityWarning {
			e.logger.Warn("draw diagnostic", fields...)
		} else {
			e.logger.Debug("draw diagnostic", fields...)
		}
	}
}
