package guarantee_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

func fields(errs []guarantee.ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Field
	}
	return out
}

func validRule(kind guarantee.Kind) guarantee.Rule {
	return guarantee.Rule{
		ID:              "r1",
		Description:     "rule",
		Scope:           guarantee.ScopePerBox,
		TargetRarityIDs: []string{"SR"},
		Kind:            kind,
	}
}

func TestValidate_AcceptsEachVariant(t *testing.T) {
	kinds := []guarantee.Kind{
		guarantee.AtLeast{Min: 1},
		guarantee.AtMost{Max: 0},
		guarantee.Exact{Count: 2},
		guarantee.Range{Min: 1, Max: 3},
		guarantee.Average{TargetAverage: 1.25},
		guarantee.Chase{Chance: 0.1, GuaranteedIfHit: 1},
	}
	for _, k := range kinds {
		assert.Empty(t, guarantee.Validate(validRule(k)), "kind %T", k)
	}

	topper := guarantee.Rule{
		ID:          "t",
		Description: "topper",
		Scope:       guarantee.ScopePerBox,
		Kind:        guarantee.BoxTopper{Quantity: 1, SourcePackProductID: "P2"},
	}
	assert.Empty(t, guarantee.Validate(topper))
}

func TestValidate_RequiresHeader(t *testing.T) {
	errs := guarantee.Validate(guarantee.Rule{Kind: guarantee.AtLeast{Min: 1}, TargetCardIDs: []string{"c"}})
	assert.ElementsMatch(t, []string{"id", "description"}, fields(errs))
}

func TestValidate_MissingType(t *testing.T) {
	r := validRule(nil)
	assert.Equal(t, []string{"type"}, fields(guarantee.Validate(r)))
}

func TestValidate_UnrecognizedType(t *testing.T) {
	r := validRule(guarantee.Unrecognized{Name: "mystery"})
	errs := guarantee.Validate(r)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "mystery")
}

func TestValidate_RequiresTargets(t *testing.T) {
	r := validRule(guarantee.AtLeast{Min: 1})
	r.TargetRarityIDs = nil
	assert.Equal(t, []string{"targets"}, fields(guarantee.Validate(r)))
}

func TestValidate_Bounds(t *testing.T) {
	cases := map[string]struct {
		kind  guarantee.Kind
		field string
	}{
		"negative min":     {guarantee.AtLeast{Min: -1}, "count.min"},
		"negative max":     {guarantee.AtMost{Max: -1}, "count.max"},
		"negative exact":   {guarantee.Exact{Count: -2}, "count.exact"},
		"inverted range":   {guarantee.Range{Min: 4, Max: 2}, "count.max"},
		"negative average": {guarantee.Average{TargetAverage: -0.5}, "count.targetAverage"},
		"chance too big":   {guarantee.Chase{Chance: 1.5, GuaranteedIfHit: 1}, "chance"},
		"no hit cards":     {guarantee.Chase{Chance: 0.5}, "guaranteedIfHit"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, []string{tc.field}, fields(guarantee.Validate(validRule(tc.kind))))
		})
	}
}

func TestValidate_BoxTopper(t *testing.T) {
	r := guarantee.Rule{
		ID:          "t",
		Description: "topper",
		Scope:       guarantee.ScopePerCase,
		Kind:        guarantee.BoxTopper{},
	}
	assert.ElementsMatch(t,
		[]string{"scope", "details.quantity", "details.sourcePackProductId"},
		fields(guarantee.Validate(r)))
}

func TestValidate_BadScope(t *testing.T) {
	r := validRule(guarantee.AtLeast{Min: 1})
	r.Scope = "perPack"
	assert.Equal(t, []string{"scope"}, fields(guarantee.Validate(r)))
}

func TestValidationErrors_Err(t *testing.T) {
	assert.NoError(t, guarantee.ValidationErrors(nil).Err())
	err := guarantee.ValidationErrors{{RuleID: "r", Field: "id", Message: "bad"}}.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `rule "r": id: bad`)
}

func TestEditContext_NewRuleDefaults(t *testing.T) {
	ctx := guarantee.EditContext{Scope: guarantee.ScopePerCase}
	r := ctx.NewRule()
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, guarantee.ScopePerCase, r.Scope)
	assert.Equal(t, guarantee.AtLeast{Min: 1}, r.Kind)
	assert.NotEqual(t, r.ID, ctx.NewRule().ID)
}

func TestEditContext_Accept_InheritsScope(t *testing.T) {
	ctx := guarantee.EditContext{Scope: guarantee.ScopePerBox}
	r := validRule(guarantee.AtLeast{Min: 1})
	r.Scope = ""
	got, errs := ctx.Accept(r)
	require.Empty(t, errs)
	assert.Equal(t, guarantee.ScopePerBox, got.Scope)
}

func TestEditContext_Accept_ScopeMismatch(t *testing.T) {
	ctx := guarantee.EditContext{Scope: guarantee.ScopePerCase}
	_, errs := ctx.Accept(validRule(guarantee.AtLeast{Min: 1}))
	assert.Equal(t, []string{"scope"}, fields(errs))
}

func TestEditContext_Accept_NormalisesBoxTopper(t *testing.T) {
	ctx := guarantee.EditContext{Scope: guarantee.ScopePerBox, ProductIDs: []string{"P2"}}
	r := guarantee.Rule{
		ID:              "t",
		Description:     "topper",
		TargetRarityIDs: []string{"SR"},
		Kind:            guarantee.BoxTopper{Quantity: 1, SourcePackProductID: "P2"},
	}
	got, errs := ctx.Accept(r)
	require.Empty(t, errs)
	assert.Equal(t, guarantee.ScopePerBox, got.Scope)
	assert.Empty(t, got.TargetRarityIDs)
	assert.Equal(t, []string{"SR"}, r.TargetRarityIDs)
}

func TestEditContext_Accept_UnknownReferences(t *testing.T) {
	ctx := guarantee.EditContext{Scope: guarantee.ScopePerBox, RarityIDs: []string{"C", "R"}, ProductIDs: []string{"P1"}}

	_, errs := ctx.Accept(validRule(guarantee.AtLeast{Min: 1}))
	assert.Equal(t, []string{"targetRarityIds"}, fields(errs))

	topper := guarantee.Rule{ID: "t", Description: "d", Kind: guarantee.BoxTopper{Quantity: 1, SourcePackProductID: "P9"}}
	_, errs = ctx.Accept(topper)
	assert.Equal(t, []string{"details.sourcePackProductId"}, fields(errs))
}
