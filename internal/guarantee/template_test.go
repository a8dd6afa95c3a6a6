package guarantee_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

func boxTemplate() guarantee.Template {
	return guarantee.Template{
		Name:  "standard box",
		Scope: guarantee.TemplateScopeBox,
		Rules: []guarantee.Rule{
			validRule(guarantee.AtLeast{Min: 2}),
			{
				ID:          "topper",
				Description: "promo topper",
				Scope:       guarantee.ScopePerBox,
				Kind:        guarantee.BoxTopper{Quantity: 1, SourcePackProductID: "P2"},
			},
		},
	}
}

func TestTemplate_Validate(t *testing.T) {
	assert.Empty(t, boxTemplate().Validate())

	bad := boxTemplate()
	bad.Name = " "
	bad.Scope = "pallet"
	assert.Contains(t, fields(bad.Validate()), "name")
	assert.Contains(t, fields(bad.Validate()), "scope")
}

func TestTemplate_Validate_RuleScopeMustMatch(t *testing.T) {
	tmpl := boxTemplate()
	tmpl.Scope = guarantee.TemplateScopeCase
	errs := tmpl.Validate()
	assert.NotEmpty(t, errs)
	assert.Contains(t, fields(errs), "scope")
}

func TestTemplate_Validate_DuplicateRuleIDs(t *testing.T) {
	tmpl := boxTemplate()
	tmpl.Rules = append(tmpl.Rules, tmpl.Rules[0])
	assert.Contains(t, fields(tmpl.Validate()), "id")
}

func TestTemplate_Apply_DeepCopies(t *testing.T) {
	tmpl := boxTemplate()
	cfg := guarantee.Config{Notes: "keep me", Rules: []guarantee.Rule{validRule(guarantee.AtMost{Max: 1})}}

	got := tmpl.Apply(cfg)
	require.Len(t, got.Rules, 2)
	assert.Equal(t, "keep me", got.Notes)
	assert.Equal(t, tmpl.Rules, got.Rules)

	tmpl.Rules[0].TargetRarityIDs[0] = "CHANGED"
	tmpl.Rules[0].ID = "changed"
	assert.Equal(t, "SR", got.Rules[0].TargetRarityIDs[0])
	assert.Equal(t, "r1", got.Rules[0].ID)
}

func TestTemplate_Apply_EmptyTemplateClearsRules(t *testing.T) {
	cfg := guarantee.Config{Rules: []guarantee.Rule{validRule(guarantee.AtMost{Max: 1})}}
	got := guarantee.Template{Name: "empty", Scope: guarantee.TemplateScopeBox}.Apply(cfg)
	assert.NotNil(t, got.Rules)
	assert.Empty(t, got.Rules)
}

func TestCountBounds(t *testing.T) {
	lo, _, hasMax, ok := guarantee.CountBounds(guarantee.AtLeast{Min: 3})
	assert.True(t, ok)
	assert.False(t, hasMax)
	assert.Equal(t, 3, lo)

	lo, hi, hasMax, ok := guarantee.CountBounds(guarantee.Range{Min: 1, Max: 2})
	assert.True(t, ok && hasMax)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 2, hi)

	_, _, _, ok = guarantee.CountBounds(guarantee.Chase{})
	assert.False(t, ok)
}
