package draw_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Tinuva88/TCGFun/internal/catalog"
	"github.com/Tinuva88/TCGFun/internal/draw"
	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

func contentRegistry(t *testing.T) *catalog.Registry {
	t.Helper()
	sets, err := catalog.LoadSets("../../content/sets")
	require.NoError(t, err)
	reg, err := catalog.NewRegistry(sets...)
	require.NoError(t, err)
	return reg
}

func TestOpenBox_AppliesBoxRules(t *testing.T) {
	reg := contentRegistry(t)
	e := draw.NewEngine(draw.WithLogger(zaptest.NewLogger(t)))
	box, err := reg.Product("OP01-BOX")
	require.NoError(t, err)

	for seed := uint64(1); seed <= 5; seed++ {
		res, err := e.OpenBox(box, reg, reg, draw.NewSeededSource(seed))
		require.NoError(t, err)
		require.Len(t, res.Cards, 24*12+1)
		assert.GreaterOrEqual(t, countRarity(res.Cards, "SR"), 4)
		assert.LessOrEqual(t, countRarity(res.Cards, "SEC"), 1)
		assert.Equal(t, "PR01", res.Cards[len(res.Cards)-1].SetID)
	}
}

func TestOpenCase_AppliesCaseRules(t *testing.T) {
	reg := contentRegistry(t)
	e := draw.NewEngine()
	c, err := reg.Product("OP01-CASE")
	require.NoError(t, err)

	res, err := e.OpenCase(c, reg, reg, draw.NewSeededSource(11))
	require.NoError(t, err)
	assert.Len(t, res.Cards, 12*(24*12+1))
	assert.GreaterOrEqual(t, countRarity(res.Cards, "SEC"), 1)

	var average *draw.Diagnostic
	for i := range res.Diagnostics {
		if res.Diagnostics[i].Kind == draw.DiagAverageNotEnforced {
			average = &res.Diagnostics[i]
		}
	}
	require.NotNil(t, average)
	assert.Equal(t, "OP01-CASE", average.ProductID)
	assert.Equal(t, "case-leader-average", average.RuleID)
}

func TestOpenCase_CaseRulesKeepBoxToppers(t *testing.T) {
	reg := contentRegistry(t)
	e := draw.NewEngine()
	c, err := reg.Product("OP01-CASE")
	require.NoError(t, err)

	details := *c.Case
	details.Guarantees = guarantee.Config{Rules: []guarantee.Rule{{
		ID:              "case-sec-flood",
		Description:     "At least 15 SEC per case",
		Scope:           guarantee.ScopePerCase,
		TargetRarityIDs: []string{"SEC"},
		Kind:            guarantee.AtLeast{Min: 15},
	}}}
	c.Case = &details

	for _, seed := range []uint64{3, 7, 19} {
		res, err := e.OpenCase(c, reg, reg, draw.NewSeededSource(seed))
		require.NoError(t, err)
		require.Len(t, res.Cards, 12*(24*12+1))
		assert.GreaterOrEqual(t, countRarity(res.Cards, "SEC"), 15)

		toppers := 0
		for _, drawn := range res.Cards {
			if drawn.SetID == "PR01" {
				toppers++
			}
		}
		assert.Equal(t, 12, toppers, "seed %d", seed)
		assert.Equal(t, "PR01", res.Cards[len(res.Cards)-1].SetID, "seed %d", seed)
	}
}

func TestOpen_DispatchesAndIsReproducible(t *testing.T) {
	reg := contentRegistry(t)
	e := draw.NewEngine()

	pack, err := e.Open("OP01-PACK", reg, draw.NewSeededSource(3))
	require.NoError(t, err)
	assert.Len(t, pack.Cards, 12)

	a, err := e.Open("OP01-BOX", reg, draw.NewSeededSource(8))
	require.NoError(t, err)
	b, err := e.Open("OP01-BOX", reg, draw.NewSeededSource(8))
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = e.Open("MISSING", reg, draw.NewSeededSource(1))
	assert.ErrorIs(t, err, draw.ErrUnknownProduct)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestOpenBox_Errors(t *testing.T) {
	reg := registry(t)
	e := draw.NewEngine()
	src := draw.NewSeededSource(1)

	_, err := e.OpenBox(packProduct("P1", 3), reg, reg, src)
	assert.ErrorIs(t, err, draw.ErrWrongProductType)

	noPacks := catalog.Product{ID: "B", Type: catalog.ProductBox, Box: &catalog.BoxDetails{PackProductID: "P1"}}
	_, err = e.OpenBox(noPacks, reg, reg, src)
	assert.ErrorIs(t, err, draw.ErrInvalidProduct)

	dangling := catalog.Product{ID: "B", Type: catalog.ProductBox, Box: &catalog.BoxDetails{PackProductID: "NOPE", PacksPerBox: 2}}
	_, err = e.OpenBox(dangling, reg, reg, src)
	assert.ErrorIs(t, err, draw.ErrUnknownProduct)

	adHoc := catalog.Product{ID: "B", Type: catalog.ProductBox, Box: &catalog.BoxDetails{PackProductID: "P1", PacksPerBox: 2}}
	res, err := e.OpenBox(adHoc, reg, reg, src)
	require.NoError(t, err)
	assert.Len(t, res.Cards, 6)
}

func TestOpenCase_Errors(t *testing.T) {
	reg := registry(t)
	e := draw.NewEngine()
	src := draw.NewSeededSource(1)

	noBoxes := catalog.Product{ID: "CS", Type: catalog.ProductCase, Case: &catalog.CaseDetails{BoxProductID: "B"}}
	_, err := e.OpenCase(noBoxes, reg, reg, src)
	assert.ErrorIs(t, err, draw.ErrInvalidProduct)

	missingBox := catalog.Product{ID: "CS", Type: catalog.ProductCase, Case: &catalog.CaseDetails{BoxProductID: "B", BoxesPerCase: 2}}
	_, err = e.OpenCase(missingBox, reg, reg, src)
	assert.ErrorIs(t, err, draw.ErrUnknownProduct)
}
