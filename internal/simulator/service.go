// Package simulator serves product openings: it materializes the catalog for
// a product, draws it, records the pulls and reports metrics.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Tinuva88/TCGFun/internal/catalog"
	"github.com/Tinuva88/TCGFun/internal/collection"
	"github.com/Tinuva88/TCGFun/internal/draw"
	"github.com/Tinuva88/TCGFun/internal/guarantee"
	"github.com/Tinuva88/TCGFun/internal/observability"
)

var (
	// ErrMissingProduct is returned when a request names no product.
	ErrMissingProduct = errors.New("simulator: product id is required")
	// ErrCollectionDisabled is returned for collection reads when no store is configured.
	ErrCollectionDisabled = errors.New("simulator: collection tracking is disabled")
)

// OpenRequest asks for one product to be opened.
type OpenRequest struct {
	ProductID string `json:"product_id"`
	// Owner receives the pulls when collection tracking is on. Empty means
	// the configured default owner.
	Owner string `json:"owner,omitempty"`
	// Seed replays a draw; empty draws from crypto/rand.
	Seed string `json:"seed,omitempty"`
}

// Opening is the outcome of one opened product.
type Opening struct {
	ID          uuid.UUID         `json:"id"`
	ProductID   string            `json:"product_id"`
	ProductType string            `json:"product_type"`
	Owner       string            `json:"owner,omitempty"`
	Seed        string            `json:"seed,omitempty"`
	Cards       []catalog.Card    `json:"cards"`
	Diagnostics []draw.Diagnostic `json:"diagnostics,omitempty"`
	Recorded    bool              `json:"recorded"`
	OpenedAt    time.Time         `json:"opened_at"`
}

// RuleCheck is the outcome of validating one guarantee rule for an editor.
type RuleCheck struct {
	Valid  bool                        `json:"valid"`
	Rule   *guarantee.Rule             `json:"rule,omitempty"`
	Errors []guarantee.ValidationError `json:"errors,omitempty"`
}

// Service opens products from a catalog.Provider. It is safe for concurrent use.
type Service struct {
	provider     catalog.Provider
	engine       *draw.Engine
	store        collection.Store
	defaultOwner string
	metrics      *observability.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithEngine replaces the default draw engine.
func WithEngine(e *draw.Engine) Option {
	return func(s *Service) { s.engine = e }
}

// WithCollection records every opening in store under the request owner, or
// defaultOwner when the request names none.
func WithCollection(store collection.Store, defaultOwner string) Option {
	return func(s *Service) {
		s.store = store
		s.defaultOwner = defaultOwner
	}
}

// WithMetrics reports openings and validations to m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source for OpenedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service reading from provider.
//
// Precondition: provider must be non-nil.
func NewService(provider catalog.Provider, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		engine:   draw.NewEngine(),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open materializes req.ProductID, draws it and records the pulls.
//
// Postcondition: Returns a complete Opening with a fresh id, or an error and
// no recorded cards.
func (s *Service) Open(ctx context.Context, req OpenRequest) (Opening, error) {
	start := time.Now()
	if req.ProductID == "" {
		return Opening{}, ErrMissingProduct
	}

	snap, err := catalog.Materialize(ctx, s.provider, req.ProductID)
	if err != nil {
		s.metrics.ObserveOpening("unknown", "error", 0, time.Since(start))
		return Opening{}, err
	}
	product, err := snap.Product(req.ProductID)
	if err != nil {
		s.metrics.ObserveOpening("unknown", "error", 0, time.Since(start))
		return Opening{}, err
	}

	src := draw.NewCryptoSource()
	if req.Seed != "" {
		src = draw.NewSeededSource(draw.SeedFromString(req.Seed))
	}
	res, err := s.engine.Open(req.ProductID, snap, src)
	if err != nil {
		s.metrics.ObserveOpening(string(product.Type), "error", 0, time.Since(start))
		return Opening{}, fmt.Errorf("opening %q: %w", req.ProductID, err)
	}

	op := Opening{
		ID:          uuid.New(),
		ProductID:   product.ID,
		ProductType: string(product.Type),
		Seed:        req.Seed,
		Cards:       res.Cards,
		Diagnostics: res.Diagnostics,
		OpenedAt:    s.now().UTC(),
	}
	if s.store != nil {
		op.Owner = req.Owner
		if op.Owner == "" {
			op.Owner = s.defaultOwner
		}
		if err := s.store.Add(ctx, op.Owner, op.Cards); err != nil {
			s.metrics.ObserveOpening(op.ProductType, "error", 0, time.Since(start))
			return Opening{}, fmt.Errorf("recording opening %s: %w", op.ID, err)
		}
		op.Recorded = true
	}

	for _, d := range op.Diagnostics {
		s.metrics.ObserveDiagnostic(string(d.Kind), string(d.Severity))
	}
	s.metrics.ObserveOpening(op.ProductType, "ok", len(op.Cards), time.Since(start))
	s.logger.Info("product opened",
		zap.String("opening", op.ID.String()),
		zap.String("product", op.ProductID),
		zap.String("owner", op.Owner),
		zap.Int("cards", len(op.Cards)),
		zap.Int("diagnostics", len(op.Diagnostics)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return op, nil
}

// ValidateRule normalizes and validates rule as an editor for ctx would.
func (s *Service) ValidateRule(rule guarantee.Rule, ctx guarantee.EditContext) RuleCheck {
	norm, errs := ctx.Accept(rule)
	s.metrics.ObserveRuleValidation(len(errs) == 0)
	if len(errs) > 0 {
		return RuleCheck{Errors: errs}
	}
	return RuleCheck{Valid: true, Rule: &norm}
}

// Collection returns the entries held by owner, or by the default owner.
func (s *Service) Collection(ctx context.Context, owner string) ([]collection.Entry, error) {
	if s.store == nil {
		return nil, ErrCollectionDisabled
	}
	if owner == "" {
		owner = s.defaultOwner
	}
	return s.store.Entries(ctx, owner)
}
