package repair

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/jsonmend/core/structural"
)

func parseErrAt(offset int) *structural.ParseError {
	return &structural.ParseError{Kind: structural.KindSyntax, Offset: offset, Line: 1, Column: offset + 1, Message: "bad"}
}

func TestSession_RecordAssignsIndices(t *testing.T) {
	session := newSession(NewPayload("x", "test"), time.Now())

	for i := 0; i < 3; i++ {
		recorded := session.record(Attempt{Index: 99, Strategy: ModelStrategy("fast"), ParseErr: parseErrAt(i)})
		assert.Equal(t, i, recorded.Index)
	}
	for i, attempt := range session.Attempts() {
		assert.Equal(t, i, attempt.Index)
	}
}

func TestSession_AttemptsAreCopies(t *testing.T) {
	session := newSession(NewPayload("x", ""), time.Now())
	session.record(Attempt{Strategy: StrategyDeterministic, ParseErr: parseErrAt(3), Rules: []string{"a"}})

	attempts := session.Attempts()
	attempts[0].ParseErr.Offset = 100
	attempts[0].Rules[0] = "mutated"
	attempts[0].Candidate = "mutated"

	again := session.Attempts()[0]
	assert.Equal(t, 3, again.ParseErr.Offset)
	assert.Equal(t, []string{"a"}, again.Rules)
	assert.Empty(t, again.Candidate)
}

func TestSession_Best(t *testing.T) {
	session := newSession(NewPayload("x", ""), time.Now())
	_, ok := session.Best()
	assert.False(t, ok)

	session.record(Attempt{Candidate: "a", ParseErr: parseErrAt(5)})
	session.record(Attempt{Candidate: "b", ParseErr: parseErrAt(2)})
	session.record(Attempt{ServiceErr: errors.New("rate limited")})

	best, ok := session.Best()
	require.True(t, ok)
	assert.Equal(t, "a", best.Candidate)

	session.record(Attempt{Candidate: "c", ParseErr: parseErrAt(5)})
	best, _ = session.Best()
	assert.Equal(t, "c", best.Candidate, "later candidate wins ties")

	session.record(Attempt{Candidate: "d"})
	best, _ = session.Best()
	assert.Equal(t, "d", best.Candidate)
	assert.True(t, best.Succeeded())
}

func TestSession_FinishOnce(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	session := newSession(NewPayload("x", ""), start)
	assert.False(t, session.Outcome().Terminal())
	assert.Zero(t, session.Duration())

	require.NoError(t, session.finish(Exhausted("budget"), start.Add(2*time.Second)))
	assert.ErrorIs(t, session.finish(Success(1), start.Add(3*time.Second)), errOutcomeSet)

	assert.Equal(t, OutcomeExhausted, session.Outcome().Kind)
	assert.Equal(t, 2*time.Second, session.Duration())
}

func TestSession_UniqueIDs(t *testing.T) {
	a := newSession(NewPayload("x", ""), time.Now())
	b := newSession(NewPayload("x", ""), time.Now())
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestStrategy(t *testing.T) {
	assert.False(t, StrategyDeterministic.IsModel())
	assert.False(t, StrategyLibrary.IsModel())

	strong := ModelStrategy("strong")
	assert.True(t, strong.IsModel())
	tier, ok := strong.Tier()
	assert.True(t, ok)
	assert.Equal(t, "strong", tier)

	_, ok = StrategyDeterministic.Tier()
	assert.False(t, ok)
}

func TestSession_MarshalJSON(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	session := newSession(RawPayload{Text: "secret raw text", Source: "unit", ReceivedAt: start}, start)
	session.record(Attempt{Strategy: StrategyDeterministic, Candidate: `{"a":`, ParseErr: parseErrAt(5), Rules: []string{"trailing-commas"}})
	session.record(Attempt{Strategy: ModelStrategy("fast"), ServiceErr: errors.New("rate limited"), Duration: 1500 * time.Microsecond})
	require.NoError(t, session.finish(Exhausted("budget"), start.Add(time.Second)))

	data, err := json.Marshal(session)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret raw text")

	var decoded struct {
		ID       string `json:"id"`
		Source   string `json:"source"`
		Best     *int   `json:"best"`
		Attempts []struct {
			Index        int                    `json:"index"`
			Strategy     string                 `json:"strategy"`
			ParseError   *structural.ParseError `json:"parse_error"`
			ServiceError string                 `json:"service_error"`
			Rules        []string               `json:"rules"`
			DurationMS   float64                `json:"duration_ms"`
		} `json:"attempts"`
		Outcome struct {
			Kind   string `json:"kind"`
			Reason string `json:"reason"`
		} `json:"outcome"`
		DurationMS float64 `json:"duration_ms"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, session.ID(), decoded.ID)
	assert.Equal(t, "unit", decoded.Source)
	require.NotNil(t, decoded.Best)
	assert.Equal(t, 0, *decoded.Best)
	require.Len(t, decoded.Attempts, 2)
	assert.Equal(t, 5, decoded.Attempts[0].ParseError.Offset)
	assert.Equal(t, []string{"trailing-commas"}, decoded.Attempts[0].Rules)
	assert.Equal(t, "model:fast", decoded.Attempts[1].Strategy)
	assert.Equal(t, "rate limited", decoded.Attempts[1].ServiceError)
	assert.InDelta(t, 1.5, decoded.Attempts[1].DurationMS, 1e-9)
	assert.Equal(t, "exhausted", decoded.Outcome.Kind)
	assert.Equal(t, "budget", decoded.Outcome.Reason)
	assert.InDelta(t, 1000.0, decoded.DurationMS, 1e-9)
}

func TestRepairFailure_Unwrap(t *testing.T) {
	cause := errors.New("root")
	failure := &RepairFailure{Outcome: Unrepairable("x"), Cause: cause}
	assert.ErrorIs(t, failure, ErrUnrepairable)
	assert.ErrorIs(t, failure, cause)
	assert.NotErrorIs(t, failure, ErrExhausted)

	exhausted := &RepairFailure{Outcome: Exhausted("y")}
	assert.ErrorIs(t, exhausted, ErrExhausted)
	assert.Equal(t, "jsonmend: exhausted: y", exhausted.Error())
}
