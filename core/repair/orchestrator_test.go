package repair

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/jsonmend/core/structural"
	"github.com/leofalp/jsonmend/providers/completion"
)

func TestOptions_Defaults(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 3, opts.MaxAttempts)
	assert.Equal(t, 1, opts.TierEscalationThreshold)
	assert.Equal(t, 250*time.Millisecond, opts.BackoffBase)
	assert.Equal(t, 8*time.Second, opts.BackoffCap)
	assert.Equal(t, 30*time.Second, opts.CallTimeout)
	assert.Zero(t, opts.SessionTimeout)
	assert.Equal(t, Tiers{Fast: "fast", Strong: "strong"}, opts.Tiers)
	assert.Equal(t, 24*time.Hour, opts.CacheTTL)
	assert.False(t, opts.LibraryRepair)

	custom := Options{BackoffBase: time.Second, BackoffCap: 10 * time.Millisecond}
	custom.applyDefaults()
	assert.Equal(t, time.Second, custom.BackoffCap, "cap is raised to the base")
}

func TestOrchestrator_TierFor(t *testing.T) {
	tests := []struct {
		threshold int
		attempt   int
		want      string
	}{
		{1, 1, "fast"},
		{1, 2, "strong"},
		{1, 3, "strong"},
		{2, 2, "fast"},
		{2, 3, "strong"},
	}

	for _, tt := range tests {
		o := NewOrchestrator(nil, Options{TierEscalationThreshold: tt.threshold})
		assert.Equal(t, tt.want, o.TierFor(tt.attempt), "threshold %d attempt %d", tt.threshold, tt.attempt)
	}

	custom := NewOrchestrator(nil, Options{Tiers: Tiers{Fast: "groq-fast", Strong: "groq-strong"}})
	assert.Equal(t, "groq-fast", custom.TierFor(1))
	assert.Equal(t, "groq-strong", custom.TierFor(2))
}

func TestOrchestrator_Backoff(t *testing.T) {
	o := NewOrchestrator(nil, Options{BackoffBase: 250 * time.Millisecond, BackoffCap: 8 * time.Second})

	tests := []struct {
		n    int
		want time.Duration
	}{
		{0, 0},
		{1, 250 * time.Millisecond},
		{2, 500 * time.Millisecond},
		{3, time.Second},
		{5, 4 * time.Second},
		{6, 8 * time.Second},
		{7, 8 * time.Second},
		{200, 8 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, o.Backoff(tt.n), "n=%d", tt.n)
	}
}

func TestBuildPrompt(t *testing.T) {
	parseErr := &structural.ParseError{Kind: structural.KindTruncated, Offset: 7, Line: 1, Column: 8, Message: "unexpected end of JSON input"}
	prompt := BuildPrompt(`{"a": 1`, parseErr)

	assert.True(t, strings.HasPrefix(prompt, "You are a JSON formatter"))
	assert.Contains(t, prompt, "Return only the fixed JSON")
	assert.Contains(t, prompt, "Parser error: truncated-input at line 1, column 8 (offset 7)")
	assert.True(t, strings.HasSuffix(prompt, "\n"+`{"a": 1`))

	assert.NotContains(t, BuildPrompt("x", nil), "Parser error")
}

func TestOrchestrator_Repair(t *testing.T) {
	var gotTier string
	var hadDeadline bool
	service := completion.Func(func(ctx context.Context, tier, prompt string) (string, error) {
		gotTier = tier
		_, hadDeadline = ctx.Deadline()
		return "raw reply", nil
	})

	o := NewOrchestrator(service, Options{})
	reply, err := o.Repair(context.Background(), "{", nil, 2)
	require.NoError(t, err)
	assert.Equal(t, "raw reply", reply)
	assert.Equal(t, "strong", gotTier)
	assert.True(t, hadDeadline)
}

func TestOrchestrator_RepairClassifiesErrors(t *testing.T) {
	plain := completion.Func(func(context.Context, string, string) (string, error) {
		return "", assert.AnError
	})
	_, err := NewOrchestrator(plain, Options{}).Repair(context.Background(), "{", nil, 1)
	assert.ErrorIs(t, err, completion.ErrUnavailable)
	assert.ErrorIs(t, err, assert.AnError)

	_, err = NewOrchestrator(nil, Options{}).Repair(context.Background(), "{", nil, 1)
	assert.True(t, completion.IsFatal(err))
}

func TestSleep(t *testing.T) {
	assert.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, sleep(ctx, 0), context.Canceled)
}
