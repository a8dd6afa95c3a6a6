package guarantee

import (
	"fmt"
	"strings"
	"time"
)

// TemplateScope is the product level a template is written for.
type TemplateScope string

const (
	TemplateScopeBox  TemplateScope = "box"
	TemplateScopeCase TemplateScope = "case"
)

// RuleScope maps a template scope to the rule scope its rules must carry.
func (s TemplateScope) RuleScope() Scope {
	switch s {
	case TemplateScopeBox:
		return ScopePerBox
	case TemplateScopeCase:
		return ScopePerCase
	default:
		return ""
	}
}

// Template is a named, reusable list of rules.
type Template struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Scope       TemplateScope `json:"scope"`
	Rules       []Rule        `json:"rules"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Validate checks the template header and every rule against the template's
// scope.
//
// Postcondition: Returns an empty slice iff the template can be stored.
func (t Template) Validate() []ValidationError {
	var errs []ValidationError
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "must not be empty"})
	}
	scope := t.Scope.RuleScope()
	if scope == "" {
		errs = append(errs, ValidationError{Field: "scope", Message: fmt.Sprintf("must be one of [box, case], got %q", t.Scope)})
	}
	ctx := EditContext{Scope: scope}
	seen := make(map[string]bool, len(t.Rules))
	for _, r := range t.Rules {
		if seen[r.ID] && r.ID != "" {
			errs = append(errs, ValidationError{RuleID: r.ID, Field: "id", Message: "duplicate rule id"})
		}
		seen[r.ID] = true
		if _, ruleErrs := ctx.Accept(r); len(ruleErrs) > 0 {
			errs = append(errs, ruleErrs...)
		}
	}
	return errs
}

// Apply returns cfg with its rules replaced by a deep copy of t's rules.
// Notes are preserved.
//
// Postcondition: later changes to t do not affect the returned Config.
func (t Template) Apply(cfg Config) Config {
	rules := cloneRules(t.Rules)
	if rules == nil {
		rules = []Rule{}
	}
	return Config{Notes: cfg.Notes, Rules: rules}
}
