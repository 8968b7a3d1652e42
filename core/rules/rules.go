package rules

import (
	"github.com/kaptinlin/jsonrepair"
)

// Rule is a single named syntactic correction. Apply must be idempotent:
// Apply(Apply(s)) == Apply(s).
type Rule struct {
	Name  string
	Apply func(string) string
}

// Names of the built-in rules, in the order [Default] applies them.
const (
	NameSmartQuotes        = "smart-quotes"
	NameSingleQuotes       = "single-quotes"
	NameTrailingCommas     = "trailing-commas"
	NameControlChars       = "control-chars"
	NameConcatenatedValues = "concatenated-values"
)

// Default returns the fixed rule sequence: smart quotes, single quotes,
// trailing commas, control characters. A fresh slice is returned on every call.
func Default() []Rule {
	return []Rule{
		{Name: NameSmartQuotes, Apply: NormalizeSmartQuotes},
		{Name: NameSingleQuotes, Apply: ConvertSingleQuotes},
		{Name: NameTrailingCommas, Apply: RemoveTrailingCommas},
		{Name: NameControlChars, Apply: EscapeControlChars},
	}
}

// ConcatenatedValues is an optional rule that joins top-level values emitted
// back to back ({..}{..} or one per line) into a single JSON array.
var ConcatenatedValues = Rule{Name: NameConcatenatedValues, Apply: JoinConcatenated}

// Repairer applies an ordered rule list. It holds no mutable state and is safe
// for concurrent use.
type Repairer struct {
	rules []Rule
}

// New returns a Repairer running [Default] followed by any extra rules.
func New(extra ...Rule) *Repairer {
	return &Repairer{rules: append(Default(), extra...)}
}

// Apply runs every rule in order and returns the corrected candidate.
func (r *Repairer) Apply(candidate string) string {
	out, _ := r.ApplyTrace(candidate)
	return out
}

// ApplyTrace runs every rule in order and also reports the names of the rules
// that changed the text. The returned slice is nil when nothing changed.
func (r *Repairer) ApplyTrace(candidate string) (string, []string) {
	var applied []string
	for _, rule := range r.rules {
		next := rule.Apply(candidate)
		if next != candidate {
			applied = append(applied, rule.Name)
			candidate = next
		}
	}
	return candidate, applied
}

// Names lists the rules in application order.
func (r *Repairer) Names() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}

// LibraryRepair runs the general-purpose jsonrepair library over candidate.
// It handles damage the fixed rules leave alone (unquoted keys, comments,
// missing commas, truncated structures). The original candidate is returned
// together with the error when the library gives up.
func LibraryRepair(candidate string) (string, error) {
	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return candidate, err
	}
	return repaired, nil
}
