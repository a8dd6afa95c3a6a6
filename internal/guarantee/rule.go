// Package guarantee defines box and case guarantee rules, the configurations
// that carry them, and reusable rule templates.
package guarantee

// Type names a guarantee rule variant as it appears on the wire.
type Type string

const (
	TypeAtLeast   Type = "atLeast"
	TypeAtMost    Type = "atMost"
	TypeExact     Type = "exact"
	TypeRange     Type = "range"
	TypeAverage   Type = "average"
	TypeChase     Type = "chase"
	TypeBoxTopper Type = "boxTopper"
)

// Scope is the aggregate a rule constrains.
type Scope string

const (
	ScopePerBox  Scope = "perBox"
	ScopePerCase Scope = "perCase"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopePerBox || s == ScopePerCase
}

// Kind is the variant payload of a Rule. The set of implementations is closed:
// AtLeast, AtMost, Exact, Range, Average, Chase, BoxTopper and Unrecognized.
type Kind interface {
	Type() Type
	isKind()
}

// AtLeast requires at least Min target cards in the aggregate.
type AtLeast struct{ Min int }

// AtMost allows at most Max target cards in the aggregate.
type AtMost struct{ Max int }

// Exact requires exactly Count target cards in the aggregate.
type Exact struct{ Count int }

// Range requires between Min and Max target cards, inclusive.
type Range struct{ Min, Max int }

// Average records a desired long-run mean of target cards per aggregate.
// It is informational and never forces replacements.
type Average struct{ TargetAverage float64 }

// Chase injects GuaranteedIfHit target cards with probability Chance.
type Chase struct {
	Chance          float64
	GuaranteedIfHit int
	// AddsToTotal appends the hit cards instead of replacing baseline cards.
	AddsToTotal bool
}

// BoxTopper appends Quantity bonus cards drawn from the card pool of
// SourcePackProductID's set. Only valid at box scope.
type BoxTopper struct {
	Quantity            int
	SourcePackProductID string
}

// Unrecognized holds a rule whose wire type is unknown. It survives decoding so
// that validation can reject it with a useful message.
type Unrecognized struct{ Name string }

func (AtLeast) Type() Type        { return TypeAtLeast }
func (AtMost) Type() Type         { return TypeAtMost }
func (Exact) Type() Type          { return TypeExact }
func (Range) Type() Type          { return TypeRange }
func (Average) Type() Type        { return TypeAverage }
func (Chase) Type() Type          { return TypeChase }
func (BoxTopper) Type() Type      { return TypeBoxTopper }
func (u Unrecognized) Type() Type { return Type(u.Name) }

func (AtLeast) isKind()      {}
func (AtMost) isKind()       {}
func (Exact) isKind()        {}
func (Range) isKind()        {}
func (Average) isKind()      {}
func (Chase) isKind()        {}
func (BoxTopper) isKind()    {}
func (Unrecognized) isKind() {}

// Rule is one guarantee constraint. The header fields are shared by every
// variant; Kind carries the variant-specific parameters.
type Rule struct {
	ID              string
	Description     string
	Scope           Scope
	TargetRarityIDs []string
	TargetCardIDs   []string
	Kind            Kind
}

// Type returns the wire type of the rule's variant, or "" when Kind is nil.
func (r Rule) Type() Type {
	if r.Kind == nil {
		return ""
	}
	return r.Kind.Type()
}

// HasTargets reports whether the rule names any target rarity or card.
func (r Rule) HasTargets() bool {
	return len(r.TargetRarityIDs) > 0 || len(r.TargetCardIDs) > 0
}

// Clone returns a deep copy of r.
//
// Postcondition: the returned rule shares no slices with r.
func (r Rule) Clone() Rule {
	out := r
	out.TargetRarityIDs = cloneStrings(r.TargetRarityIDs)
	out.TargetCardIDs = cloneStrings(r.TargetCardIDs)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// CountBounds returns the inclusive lower and upper bound a count-based rule
// imposes. hasMax is false when the rule has no upper bound.
//
// Postcondition: ok is false for Average, Chase, BoxTopper and Unrecognized.
func CountBounds(k Kind) (lo, hi int, hasMax, ok bool) {
	switch v := k.(type) {
	case AtLeast:
		return v.Min, 0, false, true
	case AtMost:
		return 0, v.Max, true, true
	case Exact:
		return v.Count, v.Count, true, true
	case Range:
		return v.Min, v.Max, true, true
	default:
		return 0, 0, false, false
	}
}

// Config is the guarantee configuration attached to a box or case product.
type Config struct {
	Notes string `json:"notes" yaml:"notes,omitempty"`
	Rules []Rule `json:"rules" yaml:"rules,omitempty"`
}

// Clone returns a deep copy of c.
func (c Config) Clone() Config {
	return Config{Notes: c.Notes, Rules: cloneRules(c.Rules)}
}

func cloneRules(in []Rule) []Rule {
	if in == nil {
		return nil
	}
	out := make([]Rule, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
