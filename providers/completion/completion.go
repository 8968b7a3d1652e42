package completion

import (
	"context"
	"fmt"
)

// Service produces text for a prompt using the configuration registered for
// tier. The per-call deadline is carried by ctx.
type Service interface {
	Complete(ctx context.Context, tier, prompt string) (string, error)
}

// Func adapts an ordinary function to the Service interface.
type Func func(ctx context.Context, tier, prompt string) (string, error)

// Complete calls f(ctx, tier, prompt).
func (f Func) Complete(ctx context.Context, tier, prompt string) (string, error) {
	return f(ctx, tier, prompt)
}

// Models maps tier names to the model identifier a backend sends for them.
type Models map[string]string

// Resolve returns the model for tier. A tier without a model is a
// configuration error.
func (m Models) Resolve(provider, tier string) (string, error) {
	model, ok := m[tier]
	if !ok || model == "" {
		return "", &Error{Kind: ErrConfig, Provider: provider, Err: fmt.Errorf("no model configured for tier %q", tier)}
	}
	return model, nil
}

// Clone returns an independent copy of m.
func (m Models) Clone() Models {
	out := make(Models, len(m))
	for tier, model := range m {
		out[tier] = model
	}
	return out
}
