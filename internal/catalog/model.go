// Package catalog defines the card catalog: games, sets, rarities, cards and
// the pack, box and case products sold for a set.
package catalog

import (
	"errors"

	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

var (
	// ErrSetNotFound is returned when a set id is unknown.
	ErrSetNotFound = errors.New("catalog: set not found")
	// ErrProductNotFound is returned when a product id is unknown.
	ErrProductNotFound = errors.New("catalog: product not found")
)

// TCG is a trading card game.
type TCG struct {
	ID   string `json:"id" yaml:"id" validate:"required"`
	Name string `json:"name" yaml:"name" validate:"required"`
}

// Rarity is a rarity tier within a set.
type Rarity struct {
	ID         string `json:"id" yaml:"id" validate:"required"`
	Name       string `json:"name" yaml:"name" validate:"required"`
	SetID      string `json:"set_id" yaml:"set_id,omitempty"`
	ColorClass string `json:"color_class,omitempty" yaml:"color_class,omitempty"`
}

// Card is a single card of a set.
type Card struct {
	ID          string  `json:"id" yaml:"id" validate:"required"`
	Name        string  `json:"name" yaml:"name" validate:"required"`
	RarityID    string  `json:"rarity_id" yaml:"rarity_id" validate:"required"`
	SetID       string  `json:"set_id" yaml:"set_id,omitempty"`
	MarketPrice float64 `json:"market_price" yaml:"market_price,omitempty" validate:"gte=0"`
	ImageURL    string  `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	CardNumber  string  `json:"card_number,omitempty" yaml:"card_number,omitempty"`
}

// SlotType selects how a pack slot chooses its rarity.
type SlotType string

const (
	// SlotFixed always draws from FixedRarityID.
	SlotFixed SlotType = "fixed"
	// SlotPool draws a rarity from a weighted pool.
	SlotPool SlotType = "pool"
)

// PoolEntry is one weighted rarity in a pool slot.
type PoolEntry struct {
	RarityID string  `json:"rarity_id" yaml:"rarity_id" validate:"required"`
	Weight   float64 `json:"weight" yaml:"weight" validate:"gt=0"`
}

// SlotConfig is one draw position of a pack, yielding Count cards.
type SlotConfig struct {
	SlotIndex     int         `json:"slot_index" yaml:"slot_index"`
	Type          SlotType    `json:"type" yaml:"type" validate:"oneof=fixed pool"`
	Count         int         `json:"count" yaml:"count" validate:"gte=0"`
	FixedRarityID string      `json:"fixed_rarity_id,omitempty" yaml:"fixed_rarity_id,omitempty" validate:"required_if=Type fixed"`
	Pool          []PoolEntry `json:"pool,omitempty" yaml:"pool,omitempty" validate:"dive"`
}

// ProductType discriminates the product variants.
type ProductType string

const (
	ProductPack ProductType = "pack"
	ProductBox  ProductType = "box"
	ProductCase ProductType = "case"
)

// PackDetails describes a pack's slot structure.
type PackDetails struct {
	CardsPerPack int          `json:"cards_per_pack" yaml:"cards_per_pack" validate:"gte=0"`
	Slots        []SlotConfig `json:"slots" yaml:"slots" validate:"dive"`
}

// SlotCardCount returns the number of cards the slots produce.
func (p PackDetails) SlotCardCount() int {
	n := 0
	for _, s := range p.Slots {
		if s.Count > 0 {
			n += s.Count
		}
	}
	return n
}

// BoxDetails describes a box of packs.
type BoxDetails struct {
	PackProductID string           `json:"pack_product_id" yaml:"pack_product_id" validate:"required"`
	PacksPerBox   int              `json:"packs_per_box" yaml:"packs_per_box" validate:"gte=1"`
	Guarantees    guarantee.Config `json:"guarantees" yaml:"guarantees"`
}

// CaseDetails describes a case of boxes.
type CaseDetails struct {
	BoxProductID string           `json:"box_product_id" yaml:"box_product_id" validate:"required"`
	BoxesPerCase int              `json:"boxes_per_case" yaml:"boxes_per_case" validate:"gte=1"`
	Guarantees   guarantee.Config `json:"guarantees" yaml:"guarantees"`
}

// Product is a sellable unit of a set. Exactly one of Pack, Box or Case is set,
// matching Type.
type Product struct {
	ID    string       `json:"id" yaml:"id" validate:"required"`
	Name  string       `json:"name" yaml:"name" validate:"required"`
	Type  ProductType  `json:"type" yaml:"type" validate:"oneof=pack box case"`
	SetID string       `json:"set_id" yaml:"set_id,omitempty"`
	Pack  *PackDetails `json:"pack,omitempty" yaml:"pack,omitempty"`
	Box   *BoxDetails  `json:"box,omitempty" yaml:"box,omitempty"`
	Case  *CaseDetails `json:"case,omitempty" yaml:"case,omitempty"`
}

// Guarantees returns the guarantee configuration of a box or case product.
func (p Product) Guarantees() (guarantee.Config, bool) {
	switch {
	case p.Type == ProductBox && p.Box != nil:
		return p.Box.Guarantees, true
	case p.Type == ProductCase && p.Case != nil:
		return p.Case.Guarantees, true
	default:
		return guarantee.Config{}, false
	}
}

// Set is a card set with its rarities, cards and products. It is the unit of
// content loading and import.
type Set struct {
	ID       string    `json:"id" yaml:"id" validate:"required"`
	Name     string    `json:"name" yaml:"name" validate:"required"`
	TCG      TCG       `json:"tcg" yaml:"tcg"`
	Rarities []Rarity  `json:"rarities" yaml:"rarities" validate:"dive"`
	Cards    []Card    `json:"cards" yaml:"cards" validate:"dive"`
	Products []Product `json:"products" yaml:"products" validate:"dive"`
}

// normalize fills child set ids left empty in content files.
func (s *Set) normalize() {
	for i := range s.Rarities {
		if s.Rarities[i].SetID == "" {
			s.Rarities[i].SetID = s.ID
		}
	}
	for i := range s.Cards {
		if s.Cards[i].SetID == "" {
			s.Cards[i].SetID = s.ID
		}
	}
	for i := range s.Products {
		if s.Products[i].SetID == "" {
			s.Products[i].SetID = s.ID
		}
	}
}
