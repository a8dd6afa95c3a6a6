package guarantee

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// ValidationError describes one violated rule constraint.
type ValidationError struct {
	RuleID  string `json:"ruleId"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("guarantee: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("guarantee: rule %q: %s: %s", e.RuleID, e.Field, e.Message)
}

// ValidationErrors is a non-empty list of violations usable as an error.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Err returns es as an error, or nil when es is empty.
func (es ValidationErrors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// Validate checks a rule against the invariants of its variant.
//
// Postcondition: Returns an empty slice iff the rule is well formed.
func Validate(r Rule) []ValidationError {
	var errs []ValidationError
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{RuleID: r.ID, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(r.ID) == "" {
		add("id", "must not be empty")
	}
	if strings.TrimSpace(r.Description) == "" {
		add("description", "must not be empty")
	}
	if r.Scope != "" && !r.Scope.Valid() {
		add("scope", "must be one of [perBox, perCase], got %q", r.Scope)
	}

	switch k := r.Kind.(type) {
	case nil:
		add("type", "must not be empty")
		return errs
	case Unrecognized:
		if k.Name == "" {
			add("type", "must not be empty")
		} else {
			add("type", "unrecognized rule type %q", k.Name)
		}
		return errs
	case AtLeast:
		if k.Min < 0 {
			add("count.min", "must be >= 0, got %d", k.Min)
		}
	case AtMost:
		if k.Max < 0 {
			add("count.max", "must be >= 0, got %d", k.Max)
		}
	case Exact:
		if k.Count < 0 {
			add("count.exact", "must be >= 0, got %d", k.Count)
		}
	case Range:
		if k.Min < 0 {
			add("count.min", "must be >= 0, got %d", k.Min)
		}
		if k.Max < k.Min {
			add("count.max", "must be >= count.min (%d), got %d", k.Min, k.Max)
		}
	case Average:
		if math.IsNaN(k.TargetAverage) || k.TargetAverage < 0 {
			add("count.targetAverage", "must be >= 0, got %v", k.TargetAverage)
		}
	case Chase:
		if math.IsNaN(k.Chance) || k.Chance < 0 || k.Chance > 1 {
			add("chance", "must be in [0, 1], got %v", k.Chance)
		}
		if k.GuaranteedIfHit < 1 {
			add("guaranteedIfHit", "must be >= 1, got %d", k.GuaranteedIfHit)
		}
	case BoxTopper:
		if r.Scope == ScopePerCase {
			add("scope", "box topper rules must use scope perBox")
		}
		if k.Quantity < 1 {
			add("details.quantity", "must be >= 1, got %d", k.Quantity)
		}
		if strings.TrimSpace(k.SourcePackProductID) == "" {
			add("details.sourcePackProductId", "must not be empty")
		}
		return errs
	}

	if !r.HasTargets() {
		add("targets", "at least one target rarity or card id is required")
	}
	return errs
}

// EditContext carries what an editor knows about the product or template a
// rule is being edited for.
type EditContext struct {
	// Scope is the scope implied by the product or template being edited.
	Scope Scope
	// RarityIDs, when non-nil, restricts target rarities to these ids.
	RarityIDs []string
	// ProductIDs, when non-nil, restricts box topper sources to these ids.
	ProductIDs []string
}

// NewRule returns a rule initialised with editor defaults.
//
// Postcondition: the rule has a fresh id, type atLeast with min 1 and the
// context's scope.
func (c EditContext) NewRule() Rule {
	return Rule{
		ID:              "rule-" + uuid.NewString(),
		Scope:           c.Scope,
		TargetRarityIDs: []string{},
		TargetCardIDs:   []string{},
		Kind:            AtLeast{Min: 1},
	}
}

// Accept normalises r for the context and validates it.
//
// Postcondition: on success the returned rule has a scope and box topper
// rules carry no targets; otherwise all violations are returned.
func (c EditContext) Accept(r Rule) (Rule, []ValidationError) {
	out := r.Clone()
	if out.Scope == "" {
		out.Scope = c.Scope
	}
	if _, ok := out.Kind.(BoxTopper); ok {
		out.Scope = ScopePerBox
		out.TargetRarityIDs = []string{}
		out.TargetCardIDs = []string{}
	}

	errs := Validate(out)
	if c.Scope != "" && out.Scope != c.Scope {
		errs = append(errs, ValidationError{
			RuleID:  out.ID,
			Field:   "scope",
			Message: fmt.Sprintf("rule scope %q does not match editing scope %q", out.Scope, c.Scope),
		})
	}
	if c.RarityIDs != nil {
		known := toSet(c.RarityIDs)
		for _, id := range out.TargetRarityIDs {
			if !known[id] {
				errs = append(errs, ValidationError{RuleID: out.ID, Field: "targetRarityIds", Message: fmt.Sprintf("unknown rarity %q", id)})
			}
		}
	}
	if bt, ok := out.Kind.(BoxTopper); ok && c.ProductIDs != nil && bt.SourcePackProductID != "" {
		if !toSet(c.ProductIDs)[bt.SourcePackProductID] {
			errs = append(errs, ValidationError{RuleID: out.ID, Field: "details.sourcePackProductId", Message: fmt.Sprintf("unknown product %q", bt.SourcePackProductID)})
		}
	}
	if len(errs) > 0 {
		return Rule{}, errs
	}
	return out, nil
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
