package repair

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leofalp/jsonmend/core/structural"
	"github.com/leofalp/jsonmend/providers/completion"
)

const promptInstructions = `You are a JSON formatter, fixing any issues with JSON formats.
Fix the JSON below so that it parses as strict JSON. Keep every key and value; only repair the syntax.
Return only the fixed JSON with no additional content. Do not add "Here is the fixed JSON" or any other text.`

// BuildPrompt returns the repair request for candidate. When parseErr is set,
// its message and position are included so the model can aim the fix.
func BuildPrompt(candidate string, parseErr *structural.ParseError) string {
	var b strings.Builder
	b.WriteString(promptInstructions)
	if parseErr != nil {
		b.WriteString("\n\nParser error: ")
		b.WriteString(parseErr.Error())
	}
	b.WriteString("\n\nJSON:\n")
	b.WriteString(candidate)
	return b.String()
}

// waitFunc blocks for d or until ctx is done.
type waitFunc func(ctx context.Context, d time.Duration) error

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Orchestrator issues repair requests to a completion service. It selects the
// tier, applies the per-call timeout and computes backoff delays; it never
// parses replies. An Orchestrator is stateless and safe for concurrent use.
type Orchestrator struct {
	service completion.Service
	opts    Options
}

// NewOrchestrator returns an orchestrator over service. Zero-valued options
// take their defaults.
func NewOrchestrator(service completion.Service, opts Options) *Orchestrator {
	opts.applyDefaults()
	return &Orchestrator{service: service, opts: opts}
}

// TierFor returns the tier for the n-th model attempt (1-based). Attempts up to
// TierEscalationThreshold use the fast tier, later ones the strong tier.
func (o *Orchestrator) TierFor(n int) string {
	if n <= o.opts.TierEscalationThreshold {
		return o.opts.Tiers.Fast
	}
	return o.opts.Tiers.Strong
}

// Backoff returns the delay before the retry that follows the n-th consecutive
// transient failure: min(BackoffBase * 2^(n-1), BackoffCap). It is zero for n < 1.
func (o *Orchestrator) Backoff(n int) time.Duration {
	if n < 1 {
		return 0
	}
	delay := o.opts.BackoffBase
	for i := 1; i < n; i++ {
		if delay >= o.opts.BackoffCap/2 {
			return o.opts.BackoffCap
		}
		delay *= 2
	}
	return min(delay, o.opts.BackoffCap)
}

// Repair asks the service to fix candidate and returns its raw reply. n is the
// 1-based model attempt number used for tier selection. Errors are classified
// with completion.Classify.
func (o *Orchestrator) Repair(ctx context.Context, candidate string, parseErr *structural.ParseError, n int) (string, error) {
	if o.service == nil {
		return "", &completion.Error{Kind: completion.ErrConfig, Err: fmt.Errorf("no completion service configured")}
	}

	callCtx, cancel := context.WithTimeout(ctx, o.opts.CallTimeout)
	defer cancel()

	reply, err := o.service.Complete(callCtx, o.TierFor(n), BuildPrompt(candidate, parseErr))
	if err != nil {
		return "", completion.Classify("", err)
	}
	return reply, nil
}
