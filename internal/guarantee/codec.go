package guarantee

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// ruleWire is the flat storage shape of a rule. Field names match the JSON
// stored in product guarantee columns and template rule rows.
type ruleWire struct {
	ID              string       `json:"id" yaml:"id"`
	Description     string       `json:"description" yaml:"description"`
	Type            string       `json:"type" yaml:"type"`
	TargetRarityIDs []string     `json:"targetRarityIds" yaml:"targetRarityIds,omitempty"`
	TargetCardIDs   []string     `json:"targetCardIds" yaml:"targetCardIds,omitempty"`
	Count           *countWire   `json:"count,omitempty" yaml:"count,omitempty"`
	Scope           Scope        `json:"scope" yaml:"scope,omitempty"`
	Chance          *float64     `json:"chance,omitempty" yaml:"chance,omitempty"`
	GuaranteedIfHit *int         `json:"guaranteedIfHit,omitempty" yaml:"guaranteedIfHit,omitempty"`
	AddsToTotal     *bool        `json:"addsToTotal,omitempty" yaml:"addsToTotal,omitempty"`
	Details         *detailsWire `json:"details,omitempty" yaml:"details,omitempty"`
}

type countWire struct {
	Min           *int     `json:"min,omitempty" yaml:"min,omitempty"`
	Max           *int     `json:"max,omitempty" yaml:"max,omitempty"`
	Exact         *int     `json:"exact,omitempty" yaml:"exact,omitempty"`
	TargetAverage *float64 `json:"targetAverage,omitempty" yaml:"targetAverage,omitempty"`
}

type detailsWire struct {
	Quantity            int    `json:"quantity" yaml:"quantity"`
	SourcePackProductID string `json:"sourcePackProductId" yaml:"sourcePackProductId"`
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefFloat(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func (r Rule) toWire() ruleWire {
	w := ruleWire{
		ID:              r.ID,
		Description:     r.Description,
		Type:            string(r.Type()),
		TargetRarityIDs: r.TargetRarityIDs,
		TargetCardIDs:   r.TargetCardIDs,
		Scope:           r.Scope,
	}
	switch k := r.Kind.(type) {
	case AtLeast:
		w.Count = &countWire{Min: intPtr(k.Min)}
	case AtMost:
		w.Count = &countWire{Max: intPtr(k.Max)}
	case Exact:
		w.Count = &countWire{Exact: intPtr(k.Count)}
	case Range:
		w.Count = &countWire{Min: intPtr(k.Min), Max: intPtr(k.Max)}
	case Average:
		w.Count = &countWire{TargetAverage: floatPtr(k.TargetAverage)}
	case Chase:
		w.Chance = floatPtr(k.Chance)
		w.GuaranteedIfHit = intPtr(k.GuaranteedIfHit)
		w.AddsToTotal = boolPtr(k.AddsToTotal)
	case BoxTopper:
		w.Details = &detailsWire{Quantity: k.Quantity, SourcePackProductID: k.SourcePackProductID}
	}
	return w
}

func (w ruleWire) toRule() Rule {
	r := Rule{
		ID:              w.ID,
		Description:     w.Description,
		Scope:           w.Scope,
		TargetRarityIDs: w.TargetRarityIDs,
		TargetCardIDs:   w.TargetCardIDs,
	}
	count := w.Count
	if count == nil {
		count = &countWire{}
	}
	switch Type(w.Type) {
	case TypeAtLeast:
		r.Kind = AtLeast{Min: derefInt(count.Min)}
	case TypeAtMost:
		r.Kind = AtMost{Max: derefInt(count.Max)}
	case TypeExact:
		r.Kind = Exact{Count: derefInt(count.Exact)}
	case TypeRange:
		r.Kind = Range{Min: derefInt(count.Min), Max: derefInt(count.Max)}
	case TypeAverage:
		r.Kind = Average{TargetAverage: derefFloat(count.TargetAverage)}
	case TypeChase:
		k := Chase{Chance: derefFloat(w.Chance), GuaranteedIfHit: derefInt(w.GuaranteedIfHit)}
		if w.AddsToTotal != nil {
			k.AddsToTotal = *w.AddsToTotal
		}
		r.Kind = k
	case TypeBoxTopper:
		k := BoxTopper{}
		if w.Details != nil {
			k.Quantity = w.Details.Quantity
			k.SourcePackProductID = w.Details.SourcePackProductID
		}
		r.Kind = k
	default:
		r.Kind = Unrecognized{Name: w.Type}
	}
	return r
}

// MarshalJSON encodes the rule in its flat storage shape.
func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toWire())
}

// UnmarshalJSON decodes the flat storage shape. Unknown rule types decode to
// Unrecognized and are rejected by Validate.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var w ruleWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = w.toRule()
	return nil
}

// MarshalYAML encodes the rule with the same keys as its JSON form.
func (r Rule) MarshalYAML() (interface{}, error) {
	return r.toWire(), nil
}

// UnmarshalYAML decodes the rule from the same keys as its JSON form.
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	var w ruleWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	*r = w.toRule()
	return nil
}

// ParseConfig decodes a stored guarantee configuration. Empty input yields an
// empty configuration.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if len(data) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
