package guarantee_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

func TestConfig_JSONRoundTrip_ChaseAndRange(t *testing.T) {
	cfg := guarantee.Config{
		Notes: "1 SEC per case is not guaranteed",
		Rules: []guarantee.Rule{
			{
				ID:              "chase-sec",
				Description:     "5% chance of an extra SEC",
				Scope:           guarantee.ScopePerCase,
				TargetRarityIDs: []string{"SEC"},
				TargetCardIDs:   []string{},
				Kind:            guarantee.Chase{Chance: 0.05, GuaranteedIfHit: 1, AddsToTotal: true},
			},
			{
				ID:              "sr-range",
				Description:     "2 to 4 SR",
				Scope:           guarantee.ScopePerCase,
				TargetRarityIDs: []string{"SR"},
				TargetCardIDs:   []string{},
				Kind:            guarantee.Range{Min: 2, Max: 4},
			},
		},
	}

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var got guarantee.Config
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, cfg, got)
}

func TestRule_MarshalJSON_StorageShape(t *testing.T) {
	r := guarantee.Rule{
		ID:          "topper",
		Description: "one promo per box",
		Scope:       guarantee.ScopePerBox,
		Kind:        guarantee.BoxTopper{Quantity: 1, SourcePackProductID: "P2"},
	}
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "boxTopper", raw["type"])
	assert.Equal(t, "perBox", raw["scope"])
	details, ok := raw["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), details["quantity"])
	assert.Equal(t, "P2", details["sourcePackProductId"])
	assert.NotContains(t, raw, "count")
}

func TestRule_UnmarshalJSON_CountShapes(t *testing.T) {
	input := `[
		{"id":"a","description":"d","type":"atLeast","targetRarityIds":["SR"],"targetCardIds":[],"count":{"min":2},"scope":"perBox"},
		{"id":"b","description":"d","type":"atMost","targetRarityIds":["SR"],"targetCardIds":[],"count":{"max":5},"scope":"perBox"},
		{"id":"c","description":"d","type":"exact","targetRarityIds":["SR"],"targetCardIds":[],"count":{"exact":3},"scope":"perBox"},
		{"id":"e","description":"d","type":"average","targetRarityIds":["SR"],"targetCardIds":[],"count":{"targetAverage":1.5},"scope":"perBox"}
	]`
	var rules []guarantee.Rule
	require.NoError(t, json.Unmarshal([]byte(input), &rules))
	require.Len(t, rules, 4)
	assert.Equal(t, guarantee.AtLeast{Min: 2}, rules[0].Kind)
	assert.Equal(t, guarantee.AtMost{Max: 5}, rules[1].Kind)
	assert.Equal(t, guarantee.Exact{Count: 3}, rules[2].Kind)
	assert.Equal(t, guarantee.Average{TargetAverage: 1.5}, rules[3].Kind)
}

func TestRule_UnmarshalJSON_UnknownTypeIsKept(t *testing.T) {
	var r guarantee.Rule
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","description":"d","type":"mystery","scope":"perBox"}`), &r))
	assert.Equal(t, guarantee.Unrecognized{Name: "mystery"}, r.Kind)
	assert.NotEmpty(t, guarantee.Validate(r))
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := guarantee.ParseConfig(nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Rules)

	_, err = guarantee.ParseConfig([]byte("{not json"))
	assert.Error(t, err)
}

func TestRule_YAML(t *testing.T) {
	src := `
id: min-sr
description: at least one SR
type: atLeast
targetRarityIds: [SR]
count:
  min: 1
scope: perBox
`
	var r guarantee.Rule
	require.NoError(t, yaml.Unmarshal([]byte(src), &r))
	assert.Equal(t, guarantee.AtLeast{Min: 1}, r.Kind)
	assert.Equal(t, []string{"SR"}, r.TargetRarityIDs)

	out, err := yaml.Marshal(r)
	require.NoError(t, err)
	var again guarantee.Rule
	require.NoError(t, yaml.Unmarshal(out, &again))
	assert.Equal(t, r.Kind, again.Kind)
	assert.Equal(t, r.TargetRarityIDs, again.TargetRarityIDs)
}

func genKind() *rapid.Generator[guarantee.Kind] {
	return rapid.OneOf(
		rapid.Custom(func(t *rapid.T) guarantee.Kind {
			return guarantee.AtLeast{Min: rapid.IntRange(0, 50).Draw(t, "min")}
		}),
		rapid.Custom(func(t *rapid.T) guarantee.Kind {
			return guarantee.AtMost{Max: rapid.IntRange(0, 50).Draw(t, "max")}
		}),
		rapid.Custom(func(t *rapid.T) guarantee.Kind {
			return guarantee.Exact{Count: rapid.IntRange(0, 50).Draw(t, "exact")}
		}),
		rapid.Custom(func(t *rapid.T) guarantee.Kind {
			lo := rapid.IntRange(0, 20).Draw(t, "min")
			return guarantee.Range{Min: lo, Max: lo + rapid.IntRange(0, 20).Draw(t, "span")}
		}),
		rapid.Custom(func(t *rapid.T) guarantee.Kind {
			return guarantee.Average{TargetAverage: rapid.Float64Range(0, 10).Draw(t, "avg")}
		}),
		rapid.Custom(func(t *rapid.T) guarantee.Kind {
			return guarantee.Chase{
				Chance:          rapid.Float64Range(0, 1).Draw(t, "chance"),
				GuaranteedIfHit: rapid.IntRange(1, 5).Draw(t, "hit"),
				AddsToTotal:     rapid.Bool().Draw(t, "adds"),
			}
		}),
		rapid.Custom(func(t *rapid.T) guarantee.Kind {
			return guarantee.BoxTopper{
				Quantity:            rapid.IntRange(1, 3).Draw(t, "qty"),
				SourcePackProductID: rapid.StringMatching(`P[0-9]{1,3}`).Draw(t, "source"),
			}
		}),
	)
}

func TestProperty_RuleJSONRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		r := guarantee.Rule{
			ID:              rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "id"),
			Description:     rapid.String().Draw(rt, "description"),
			Scope:           rapid.SampledFrom([]guarantee.Scope{guarantee.ScopePerBox, guarantee.ScopePerCase}).Draw(rt, "scope"),
			TargetRarityIDs: rapid.SliceOfN(rapid.StringMatching(`[A-Z]{1,3}`), 0, 4).Draw(rt, "rarities"),
			TargetCardIDs:   rapid.SliceOfN(rapid.StringMatching(`[A-Z]{2}-[0-9]{3}`), 0, 4).Draw(rt, "cards"),
			Kind:            genKind().Draw(rt, "kind"),
		}
		data, err := json.Marshal(r)
		if err != nil {
			rt.Fatalf("marshal: %v", err)
		}
		var got guarantee.Rule
		if err := json.Unmarshal(data, &got); err != nil {
			rt.Fatalf("unmarshal: %v", err)
		}
		assert.Equal(rt, r, got)
	})
}
