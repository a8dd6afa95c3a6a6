package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

// ErrTemplateNotFound is returned when a template lookup yields no results.
var ErrTemplateNotFound = errors.New("guarantee template not found")

// ErrTemplateExists is returned when a template name is already taken.
var ErrTemplateExists = errors.New("guarantee template already exists")

// TemplateRepository stores reusable guarantee rule templates.
type TemplateRepository struct {
	db *pgxpool.Pool
}

// NewTemplateRepository creates a TemplateRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create stores t with its rules in order.
//
// Precondition: t must pass Validate.
// Postcondition: Returns the stored template with ID and timestamps set,
// ErrTemplateExists if the name is taken, or a guarantee.ValidationErrors.
func (r *TemplateRepository) Create(ctx context.Context, t guarantee.Template) (guarantee.Template, error) {
	rules, err := normalizeTemplate(t)
	if err != nil {
		return guarantee.Template{}, err
	}
	err = inTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO guarantee_templates (name, description, scope)
			 VALUES ($1, $2, $3)
			 RETURNING id, created_at, updated_at`,
			t.Name, t.Description, string(t.Scope),
		).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			if isDuplicateKeyError(err) {
				return ErrTemplateExists
			}
			return fmt.Errorf("inserting template: %w", err)
		}
		return insertTemplateRules(ctx, tx, t.ID, rules)
	})
	if err != nil {
		return guarantee.Template{}, err
	}
	t.Rules = rules
	return t, nil
}

// Get returns the template with id and its rules in stored order.
//
// Postcondition: Returns the template or ErrTemplateNotFound.
func (r *TemplateRepository) Get(ctx context.Context, id int64) (guarantee.Template, error) {
	var (
		t     guarantee.Template
		scope string
	)
	err := r.db.QueryRow(ctx,
		`SELECT id, name, description, scope, created_at, updated_at
		 FROM guarantee_templates WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Name, &t.Description, &scope, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return guarantee.Template{}, ErrTemplateNotFound
		}
		return guarantee.Template{}, fmt.Errorf("querying template: %w", err)
	}
	t.Scope = guarantee.TemplateScope(scope)

	rows, err := r.db.Query(ctx,
		`SELECT rule FROM guarantee_template_rules WHERE template_id = $1 ORDER BY sort_order`,
		id,
	)
	if err != nil {
		return guarantee.Template{}, fmt.Errorf("querying template rules: %w", err)
	}
	t.Rules, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (guarantee.Rule, error) {
		var raw []byte
		if err := row.Scan(&raw); err != nil {
			return guarantee.Rule{}, err
		}
		var rule guarantee.Rule
		err := json.Unmarshal(raw, &rule)
		return rule, err
	})
	if err != nil {
		return guarantee.Template{}, fmt.Errorf("scanning template rules: %w", err)
	}
	if t.Rules == nil {
		t.Rules = []guarantee.Rule{}
	}
	return t, nil
}

// List returns template headers ordered by name. An empty scope lists all
// templates. Rules are not loaded.
func (r *TemplateRepository) List(ctx context.Context, scope guarantee.TemplateScope) ([]guarantee.Template, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, description, scope, created_at, updated_at
		 FROM guarantee_templates
		 WHERE $1 = '' OR scope = $1
		 ORDER BY name`,
		string(scope),
	)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (guarantee.Template, error) {
		var (
			t  guarantee.Template
			sc string
		)
		err := row.Scan(&t.ID, &t.Name, &t.Description, &sc, &t.CreatedAt, &t.UpdatedAt)
		t.Scope = guarantee.TemplateScope(sc)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning templates: %w", err)
	}
	return out, nil
}

// Update replaces the name, description and scope of t.ID. When replaceRules
// is set the stored rules are replaced by t.Rules.
//
// Postcondition: Returns the updated template, ErrTemplateNotFound,
// ErrTemplateExists on a name clash, or a guarantee.ValidationErrors.
func (r *TemplateRepository) Update(ctx context.Context, t guarantee.Template, replaceRules bool) (guarantee.Template, error) {
	check := t
	if !replaceRules {
		check.Rules = nil
	}
	rules, err := normalizeTemplate(check)
	if err != nil {
		return guarantee.Template{}, err
	}
	err = inTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`UPDATE guarantee_templates
			 SET name = $2, description = $3, scope = $4, updated_at = NOW()
			 WHERE id = $1
			 RETURNING created_at, updated_at`,
			t.ID, t.Name, t.Description, string(t.Scope),
		).Scan(&t.CreatedAt, &t.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrTemplateNotFound
			}
			if isDuplicateKeyError(err) {
				return ErrTemplateExists
			}
			return fmt.Errorf("updating template: %w", err)
		}
		if !replaceRules {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM guarantee_template_rules WHERE template_id = $1`, t.ID); err != nil {
			return fmt.Errorf("clearing template rules: %w", err)
		}
		return insertTemplateRules(ctx, tx, t.ID, rules)
	})
	if err != nil {
		return guarantee.Template{}, err
	}
	return r.Get(ctx, t.ID)
}

// Delete removes the template and its rules.
//
// Postcondition: Returns ErrTemplateNotFound if nothing was deleted.
func (r *TemplateRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM guarantee_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// normalizeTemplate validates t and returns its rules with scopes filled in.
func normalizeTemplate(t guarantee.Template) ([]guarantee.Rule, error) {
	if errs := t.Validate(); len(errs) > 0 {
		return nil, guarantee.ValidationErrors(errs)
	}
	ctx := guarantee.EditContext{Scope: t.Scope.RuleScope()}
	rules := make([]guarantee.Rule, 0, len(t.Rules))
	for _, rule := range t.Rules {
		norm, _ := ctx.Accept(rule)
		rules = append(rules, norm)
	}
	return rules, nil
}

func insertTemplateRules(ctx context.Context, tx pgx.Tx, templateID int64, rules []guarantee.Rule) error {
	for i, rule := range rules {
		raw, err := json.Marshal(rule)
		if err != nil {
			return fmt.Errorf("encoding rule %q: %w", rule.ID, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO guarantee_template_rules (template_id, sort_order, rule) VALUES ($1, $2, $3)`,
			templateID, i, raw,
		); err != nil {
			return fmt.Errorf("inserting rule %q: %w", rule.ID, err)
		}
	}
	return nil
}
