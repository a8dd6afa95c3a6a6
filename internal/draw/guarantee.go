package draw

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Tinuva88/TCGFun/internal/catalog"
	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

// ApplyGuarantees overlays rules on a box or case aggregate.
//
// Rules apply in order. Count rules replace cards from the tail of the
// aggregate and never change its length; chase rules replace or append;
// box toppers append cards drawn from their source product's set. Positions
// written by one rule are not rewritten by later rules. Problems with a single
// rule are reported as diagnostics and the rule is skipped.
//
// Precondition: cardsInSet is the card pool the baseline was drawn from.
// Postcondition: baseline is not modified; with no rules the result equals baseline.
func (e *Engine) ApplyGuarantees(
	baseline []catalog.Card,
	rules []guarantee.Rule,
	cardsInSet []catalog.Card,
	scope guarantee.Scope,
	aux Resolver,
	src Source,
) (Result, error) {
	start := time.Now()
	res, _, err := e.applyGuarantees(baseline, nil, rules, cardsInSet, scope, aux, src)
	if err != nil {
		return Result{}, err
	}
	e.logDiagnostics(res.Diagnostics)
	e.logger.Debug("guarantees applied",
		zap.String("scope", string(scope)),
		zap.Int("rules", len(rules)),
		zap.Int("baseline", len(baseline)),
		zap.Int("cards", len(res.Cards)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// applyGuarantees returns the result and the positions no later scope may
// rewrite. protected, when non-nil, marks baseline positions already written
// by an inner scope and must have the baseline's length.
func (e *Engine) applyGuarantees(
	baseline []catalog.Card,
	protected []bool,
	rules []guarantee.Rule,
	cardsInSet []catalog.Card,
	scope guarantee.Scope,
	aux Resolver,
	src Source,
) (Result, []bool, error) {
	o := &overlay{
		cards:     append([]catalog.Card{}, baseline...),
		protected: make([]bool, len(baseline)),
		pool:      NewRarityPool(cardsInSet),
		src:       src,
	}
	copy(o.protected, protected)
	for _, rule := range rules {
		if err := o.apply(rule, scope, aux); err != nil {
			return Result{}, nil, err
		}
	}
	return Result{Cards: o.cards, Diagnostics: o.diags}, o.protected, nil
}

// overlay is the working state of one ApplyGuarantees call.
type overlay struct {
	cards     []catalog.Card
	protected []bool
	pool      *RarityPool
	src       Source
	diags     []Diagnostic
}

func (o *overlay) report(rule guarantee.Rule, kind DiagnosticKind, sev Severity, format string, args ...any) {
	o.diags = append(o.diags, Diagnostic{
		Kind:     kind,
		Severity: sev,
		RuleID:   rule.ID,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (o *overlay) apply(rule guarantee.Rule, scope guarantee.Scope, aux Resolver) error {
	if _, ok := rule.Kind.(guarantee.BoxTopper); ok && (scope != guarantee.ScopePerBox || rule.Scope == guarantee.ScopePerCase) {
		o.report(rule, DiagInvalidScope, SeverityWarning, "box topper with scope %q applied at %q", rule.Scope, scope)
		return nil
	}
	if errs := guarantee.Validate(rule); len(errs) > 0 {
		o.report(rule, DiagInvalidRule, SeverityWarning, "%s", guarantee.ValidationErrors(errs).Error())
		return nil
	}
	ruleScope := rule.Scope
	if ruleScope == "" {
		ruleScope = scope
	}
	if ruleScope != scope {
		o.report(rule, DiagInvalidScope, SeverityWarning, "rule scope %q applied at %q", ruleScope, scope)
		return nil
	}

	switch k := rule.Kind.(type) {
	case guarantee.AtLeast, guarantee.AtMost, guarantee.Exact, guarantee.Range:
		if !o.targetsKnown(rule) {
			return nil
		}
		lo, hi, hasMax, _ := guarantee.CountBounds(k)
		return o.enforceCount(rule, lo, hi, hasMax)
	case guarantee.Average:
		o.report(rule, DiagAverageNotEnforced, SeverityInfo, "target average %v is not enforced on a single draw", k.TargetAverage)
		return nil
	case guarantee.Chase:
		if !o.targetsKnown(rule) {
			return nil
		}
		if o.src.Float64() >= k.Chance {
			return nil
		}
		return o.inject(rule, k.GuaranteedIfHit, k.AddsToTotal)
	case guarantee.BoxTopper:
		return o.topper(rule, k, aux)
	default:
		o.report(rule, DiagInvalidRule, SeverityWarning, "unhandled rule type %q", rule.Type())
		return nil
	}
}

// targetsKnown reports unknown targets and returns false when any exist.
func (o *overlay) targetsKnown(rule guarantee.Rule) bool {
	var rarities, cards []string
	for _, id := range rule.TargetRarityIDs {
		if !o.pool.HasRarity(id) {
			rarities = append(rarities, id)
		}
	}
	for _, id := range rule.TargetCardIDs {
		if !o.pool.HasCard(id) {
			cards = append(cards, id)
		}
	}
	if len(rarities) > 0 {
		o.report(rule, DiagUnknownTargetRarity, SeverityWarning, "no cards of rarity %s in pool", strings.Join(rarities, ", "))
	}
	if len(cards) > 0 {
		o.report(rule, DiagUnknownTargetCard, SeverityWarning, "cards %s not in pool", strings.Join(cards, ", "))
	}
	return len(rarities) == 0 && len(cards) == 0
}

func matcher(rule guarantee.Rule) func(catalog.Card) bool {
	rarities := make(map[string]bool, len(rule.TargetRarityIDs))
	for _, id := range rule.TargetRarityIDs {
		rarities[id] = true
	}
	cards := make(map[string]bool, len(rule.TargetCardIDs))
	for _, id := range rule.TargetCardIDs {
		cards[id] = true
	}
	return func(c catalog.Card) bool {
		return rarities[c.RarityID] || cards[c.ID]
	}
}

// replaceFromTail overwrites up to n unprotected positions, walking from the
// end, whose card satisfies eligible. It returns how many were replaced.
func (o *overlay) replaceFromTail(n int, eligible func(catalog.Card) bool, with []catalog.Card) (int, error) {
	done := 0
	for i := len(o.cards) - 1; i >= 0 && done < n; i-- {
		if o.protected[i] || !eligible(o.cards[i]) {
			continue
		}
		c, err := pickCard(o.src, with)
		if err != nil {
			return done, err
		}
		o.cards[i] = c
		o.protected[i] = true
		done++
	}
	return done, nil
}

func (o *overlay) enforceCount(rule guarantee.Rule, lo, hi int, hasMax bool) error {
	matches := matcher(rule)
	count := 0
	for _, c := range o.cards {
		if matches(c) {
			count++
		}
	}
	notMatching := func(c catalog.Card) bool { return !matches(c) }

	if count < lo {
		need := lo - count
		got, err := o.replaceFromTail(need, notMatching, o.pool.Filter(matches))
		if err != nil {
			return fmt.Errorf("draw: rule %q: %w", rule.ID, err)
		}
		if got < need {
			o.report(rule, DiagUnsatisfiable, SeverityWarning, "raised target count to %d of required %d", count+got, lo)
		}
	}
	if hasMax && count > hi {
		excess := count - hi
		fillers := o.pool.Filter(notMatching)
		if len(fillers) == 0 {
			o.report(rule, DiagUnsatisfiable, SeverityWarning, "no non-target cards to replace %d excess target cards", excess)
			return nil
		}
		got, err := o.replaceFromTail(excess, matches, fillers)
		if err != nil {
			return fmt.Errorf("draw: rule %q: %w", rule.ID, err)
		}
		if got < excess {
			o.report(rule, DiagUnsatisfiable, SeverityWarning, "lowered target count to %d of allowed %d", count-got, hi)
		}
	}
	return nil
}

func (o *overlay) inject(rule guarantee.Rule, n int, appendCards bool) error {
	matches := matcher(rule)
	candidates := o.pool.Filter(matches)
	if appendCards {
		return o.appendCards(rule, n, candidates)
	}
	got, err := o.replaceFromTail(n, func(c catalog.Card) bool { return !matches(c) }, candidates)
	if err != nil {
		return fmt.Errorf("draw: rule %q: %w", rule.ID, err)
	}
	if got < n {
		o.report(rule, DiagUnsatisfiable, SeverityWarning, "chase hit placed %d of %d cards", got, n)
	}
	return nil
}

func (o *overlay) appendCards(rule guarantee.Rule, n int, from []catalog.Card) error {
	for i := 0; i < n; i++ {
		c, err := pickCard(o.src, from)
		if err != nil {
			return fmt.Errorf("draw: rule %q: %w", rule.ID, err)
		}
		o.cards = append(o.cards, c)
		o.protected = append(o.protected, true)
	}
	return nil
}

func (o *overlay) topper(rule guarantee.Rule, k guarantee.BoxTopper, aux Resolver) error {
	if aux == nil {
		o.report(rule, DiagTopperSourceUnavailable, SeverityWarning, "no resolver for source %q", k.SourcePackProductID)
		return nil
	}
	source, err := aux.Product(k.SourcePackProductID)
	if err != nil {
		o.report(rule, DiagTopperSourceUnavailable, SeverityWarning, "source %q: %v", k.SourcePackProductID, err)
		return nil
	}
	cards, err := aux.CardsForSet(source.SetID)
	if err != nil || len(cards) == 0 {
		o.report(rule, DiagTopperSourceUnavailable, SeverityWarning, "source %q has no cards in set %q", k.SourcePackProductID, source.SetID)
		return nil
	}
	return o.appendCards(rule, k.Quantity, cards)
}
