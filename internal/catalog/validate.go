package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors flattens a validator error into readable violations.
func fieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			out = append(out, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			out = append(out, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return out
}

// Validate checks a single slot configuration.
//
// Postcondition: Returns nil iff the slot can be drawn from.
func (s SlotConfig) Validate() error {
	var errs []string
	if err := validate.Struct(s); err != nil {
		errs = append(errs, fieldErrors(err)...)
	}
	if s.Type == SlotPool && len(s.Pool) == 0 {
		errs = append(errs, "pool slot must have at least one pool entry")
	}
	if len(errs) > 0 {
		return fmt.Errorf("catalog: slot %d: %s", s.SlotIndex, strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks field constraints and referential integrity of the set:
// every card's rarity exists, every slot rarity exists, products carry the
// details matching their type, and box/case references resolve within the set.
//
// Postcondition: Returns nil iff the set is internally consistent, or an
// error describing all violations.
func (s Set) Validate() error {
	var errs []string
	if err := validate.Struct(s); err != nil {
		errs = append(errs, fieldErrors(err)...)
	}

	rarities := make(map[string]bool, len(s.Rarities))
	for _, r := range s.Rarities {
		if rarities[r.ID] {
			errs = append(errs, fmt.Sprintf("duplicate rarity %q", r.ID))
		}
		rarities[r.ID] = true
		if r.SetID != "" && r.SetID != s.ID {
			errs = append(errs, fmt.Sprintf("rarity %q belongs to set %q", r.ID, r.SetID))
		}
	}

	cards := make(map[string]bool, len(s.Cards))
	for _, c := range s.Cards {
		if cards[c.ID] {
			errs = append(errs, fmt.Sprintf("duplicate card %q", c.ID))
		}
		cards[c.ID] = true
		if c.RarityID != "" && !rarities[c.RarityID] {
			errs = append(errs, fmt.Sprintf("card %q references unknown rarity %q", c.ID, c.RarityID))
		}
		if c.SetID != "" && c.SetID != s.ID {
			errs = append(errs, fmt.Sprintf("card %q belongs to set %q", c.ID, c.SetID))
		}
	}

	products := make(map[string]Product, len(s.Products))
	for _, p := range s.Products {
		if _, dup := products[p.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate product %q", p.ID))
		}
		products[p.ID] = p
	}
	for _, p := range s.Products {
		errs = append(errs, productErrors(p, rarities, products)...)
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog: set %q: %s", s.ID, strings.Join(errs, "; "))
	}
	return nil
}

func productErrors(p Product, rarities map[string]bool, products map[string]Product) []string {
	var errs []string
	refType := func(field, id string, want ProductType) {
		ref, ok := products[id]
		switch {
		case !ok:
			errs = append(errs, fmt.Sprintf("product %q: %s %q not found", p.ID, field, id))
		case ref.Type != want:
			errs = append(errs, fmt.Sprintf("product %q: %s %q is a %s, want %s", p.ID, field, id, ref.Type, want))
		}
	}
	rules := func(cfg guarantee.Config, scope guarantee.Scope) {
		ctx := guarantee.EditContext{Scope: scope}
		for _, r := range cfg.Rules {
			if _, verrs := ctx.Accept(r); len(verrs) > 0 {
				errs = append(errs, fmt.Sprintf("product %q: %s", p.ID, guarantee.ValidationErrors(verrs).Error()))
			}
		}
	}

	switch p.Type {
	case ProductPack:
		if p.Pack == nil {
			return append(errs, fmt.Sprintf("product %q: pack details missing", p.ID))
		}
		for _, slot := range p.Pack.Slots {
			if err := slot.Validate(); err != nil {
				errs = append(errs, fmt.Sprintf("product %q: %v", p.ID, err))
				continue
			}
			if slot.Type == SlotFixed && !rarities[slot.FixedRarityID] {
				errs = append(errs, fmt.Sprintf("product %q: slot %d references unknown rarity %q", p.ID, slot.SlotIndex, slot.FixedRarityID))
			}
			for _, e := range slot.Pool {
				if !rarities[e.RarityID] {
					errs = append(errs, fmt.Sprintf("product %q: slot %d references unknown rarity %q", p.ID, slot.SlotIndex, e.RarityID))
				}
			}
		}
	case ProductBox:
		if p.Box == nil {
			return append(errs, fmt.Sprintf("product %q: box details missing", p.ID))
		}
		refType("pack_product_id", p.Box.PackProductID, ProductPack)
		rules(p.Box.Guarantees, guarantee.ScopePerBox)
	case ProductCase:
		if p.Case == nil {
			return append(errs, fmt.Sprintf("product %q: case details missing", p.ID))
		}
		refType("box_product_id", p.Case.BoxProductID, ProductBox)
		rules(p.Case.Guarantees, guarantee.ScopePerCase)
	}
	return errs
}
