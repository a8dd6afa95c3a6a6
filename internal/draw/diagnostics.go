package draw

import "errors"

var (
	// ErrEmptyCardPool is returned when a draw is requested against a set with no cards.
	ErrEmptyCardPool = errors.New("draw: empty card pool")
	// ErrEmptyPool is returned when a weighted pick has no viable weight.
	ErrEmptyPool = errors.New("draw: no viable weight in pool")
	// ErrNoCardsForRarity is returned when a slot's rarity has no cards after all attempts.
	ErrNoCardsForRarity = errors.New("draw: no cards for rarity")
	// ErrInvalidSlot is returned for a slot with an unknown type.
	ErrInvalidSlot = errors.New("draw: invalid slot")
	// ErrWrongProductType is returned when a product of the wrong type is passed.
	ErrWrongProductType = errors.New("draw: wrong product type")
	// ErrUnknownProduct is returned when a referenced product cannot be resolved.
	ErrUnknownProduct = errors.New("draw: unknown product")
	// ErrInvalidProduct is returned for products missing details or multiplicities.
	ErrInvalidProduct = errors.New("draw: invalid product")
)

// DiagnosticKind classifies a non-fatal condition met during a draw.
type DiagnosticKind string

const (
	DiagUnknownTargetRarity     DiagnosticKind = "unknown_target_rarity"
	DiagUnknownTargetCard       DiagnosticKind = "unknown_target_card"
	DiagInvalidScope            DiagnosticKind = "invalid_scope"
	DiagInvalidRule             DiagnosticKind = "invalid_rule"
	DiagUnsatisfiable           DiagnosticKind = "unsatisfiable"
	DiagAverageNotEnforced      DiagnosticKind = "average_not_enforced"
	DiagTopperSourceUnavailable DiagnosticKind = "topper_source_unavailable"
	DiagSlotCountMismatch       DiagnosticKind = "slot_count_mismatch"
	DiagDegradedPack            DiagnosticKind = "degraded_pack"
	DiagEmptyPack               DiagnosticKind = "empty_pack"
)

// Severity grades a diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a non-fatal condition returned alongside a draw result.
type Diagnostic struct {
	Kind      DiagnosticKind `json:"kind"`
	Severity  Severity       `json:"severity"`
	ProductID string         `json:"product_id,omitempty"`
	RuleID    string         `json:"rule_id,omitempty"`
	Message   string         `json:"message"`
}

// dedupe removes repeated diagnostics, keeping first occurrences in order.
func dedupe(diags []Diagnostic) []Diagnostic {
	if len(diags) < 2 {
		return diags
	}
	seen := make(map[Diagnostic]bool, len(diags))
	out := diags[:0:0]
	for _, d := range diags {
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
