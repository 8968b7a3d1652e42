package repair

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/jsonmend/core/structural"
)

// RawPayload is the untrusted input of one load. It is never modified.
type RawPayload struct {
	Text       string    `json:"text"`
	Source     string    `json:"source,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// NewPayload wraps text with a source tag and the current time.
func NewPayload(text, source string) RawPayload {
	return RawPayload{Text: text, Source: source, ReceivedAt: time.Now()}
}

// Strategy tags how an attempt produced its candidate.
type Strategy string

const (
	StrategyDeterministic Strategy = "deterministic"
	StrategyLibrary       Strategy = "library"

	modelStrategyPrefix = "model:"
)

// ModelStrategy returns the strategy tag for a completion call on tier.
func ModelStrategy(tier string) Strategy {
	return Strategy(modelStrategyPrefix + tier)
}

// IsModel reports whether the strategy is a completion-service call.
func (s Strategy) IsModel() bool {
	return strings.HasPrefix(string(s), modelStrategyPrefix)
}

// Tier returns the tier of a model strategy.
func (s Strategy) Tier() (string, bool) {
	return strings.CutPrefix(string(s), modelStrategyPrefix)
}

// Attempt is one recorded step of a session. Values handed out by a Session
// are copies; mutating them does not affect the session.
type Attempt struct {
	Index     int
	Strategy  Strategy
	Candidate string
	// ParseErr is set when Candidate still failed strict parsing.
	ParseErr *structural.ParseError
	// ServiceErr is set when a completion call failed transiently and no
	// candidate was produced.
	ServiceErr error
	// Rules lists the deterministic rules that changed the candidate.
	Rules     []string
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the attempt produced a strictly valid candidate.
func (a Attempt) Succeeded() bool {
	return a.ParseErr == nil && a.ServiceErr == nil
}

func (a Attempt) clone() Attempt {
	a.ParseErr = a.ParseErr.Clone()
	if a.Rules != nil {
		a.Rules = append([]string(nil), a.Rules...)
	}
	return a
}

type attemptJSON struct {
	Index        int                    `json:"index"`
	Strategy     Strategy               `json:"strategy"`
	Candidate    string                 `json:"candidate,omitempty"`
	ParseError   *structural.ParseError `json:"parse_error,omitempty"`
	ServiceError string                 `json:"service_error,omitempty"`
	Rules        []string               `json:"rules,omitempty"`
	StartedAt    time.Time              `json:"started_at"`
	DurationMS   float64                `json:"duration_ms"`
}

// MarshalJSON renders the attempt for traces and the HTTP API.
func (a Attempt) MarshalJSON() ([]byte, error) {
	out := attemptJSON{
		Index:      a.Index,
		Strategy:   a.Strategy,
		Candidate:  a.Candidate,
		ParseError: a.ParseErr,
		Rules:      a.Rules,
		StartedAt:  a.StartedAt,
		DurationMS: float64(a.Duration) / float64(time.Millisecond),
	}
	if a.ServiceErr != nil {
		out.ServiceError = a.ServiceErr.Error()
	}
	return json.Marshal(out)
}

// OutcomeKind is the terminal state of a session.
type OutcomeKind string

const (
	OutcomePending      OutcomeKind = ""
	OutcomeSuccess      OutcomeKind = "success"
	OutcomeExhausted    OutcomeKind = "exhausted"
	OutcomeUnrepairable OutcomeKind = "unrepairable"
)

// Outcome is the terminal result of a session.
type Outcome struct {
	Kind   OutcomeKind      `json:"kind"`
	Value  structural.Value `json:"-"`
	Reason string           `json:"reason,omitempty"`
}

// Success builds a successful outcome.
func Success(value structural.Value) Outcome {
	return Outcome{Kind: OutcomeSuccess, Value: value}
}

// Exhausted builds an exhausted outcome.
func Exhausted(reason string) Outcome {
	return Outcome{Kind: OutcomeExhausted, Reason: reason}
}

// Unrepairable builds an unrepairable outcome.
func Unrepairable(reason string) Outcome {
	return Outcome{Kind: OutcomeUnrepairable, Reason: reason}
}

// Terminal reports whether the outcome has been decided.
func (o Outcome) Terminal() bool {
	return o.Kind != OutcomePending
}

// Session is the ordered, append-only record of one load. It is owned by the
// Load call that created it until that call returns; afterwards it is
// read-only and safe to share.
type Session struct {
	id         string
	payload    RawPayload
	attempts   []Attempt
	best       int
	outcome    Outcome
	fromCache  bool
	notes      []string
	startedAt  time.Time
	finishedAt time.Time
}

func newSession(payload RawPayload, now time.Time) *Session {
	return &Session{
		id:        uuid.NewString(),
		payload:   payload,
		best:      -1,
		startedAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Payload returns the raw input.
func (s *Session) Payload() RawPayload { return s.payload }

// Len returns the number of recorded attempts.
func (s *Session) Len() int { return len(s.attempts) }

// Attempts returns a copy of every attempt in order.
func (s *Session) Attempts() []Attempt {
	out := make([]Attempt, len(s.attempts))
	for i, attempt := range s.attempts {
		out[i] = attempt.clone()
	}
	return out
}

// ModelAttempts returns the number of recorded completion-service attempts.
func (s *Session) ModelAttempts() int {
	n := 0
	for _, attempt := range s.attempts {
		if attempt.Strategy.IsModel() {
			n++
		}
	}
	return n
}

// Last returns the most recent attempt.
func (s *Session) Last() (Attempt, bool) {
	if len(s.attempts) == 0 {
		return Attempt{}, false
	}
	return s.attempts[len(s.attempts)-1].clone(), true
}

// Best returns the best candidate so far: the successful one if any, otherwise
// the failing candidate whose parse error is furthest into the text (the
// latest wins ties).
func (s *Session) Best() (Attempt, bool) {
	if s.best < 0 {
		return Attempt{}, false
	}
	return s.attempts[s.best].clone(), true
}

// Outcome returns the terminal outcome, or a pending one while running.
func (s *Session) Outcome() Outcome { return s.outcome }

// FromCache reports whether the value was served from the result cache.
func (s *Session) FromCache() bool { return s.fromCache }

// Notes returns the non-fatal problems met during the load, such as cache
// failures. They never change the outcome.
func (s *Session) Notes() []string {
	return append([]string(nil), s.notes...)
}

func (s *Session) note(msg string) {
	s.notes = append(s.notes, msg)
}

// StartedAt returns when the session began.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Duration returns the wall-clock time from start to the terminal outcome.
func (s *Session) Duration() time.Duration {
	if s.finishedAt.IsZero() {
		return 0
	}
	return s.finishedAt.Sub(s.startedAt)
}

// record appends a copy of attempt with the next index and returns it.
func (s *Session) record(attempt Attempt) Attempt {
	attempt.Index = len(s.attempts)
	attempt = attempt.clone()
	s.attempts = append(s.attempts, attempt)

	switch {
	case attempt.ServiceErr != nil:
	case attempt.ParseErr == nil:
		s.best = attempt.Index
	case s.best < 0:
		s.best = attempt.Index
	default:
		current := s.attempts[s.best].ParseErr
		if current != nil && attempt.ParseErr.Offset >= current.Offset {
			s.best = attempt.Index
		}
	}
	return attempt.clone()
}

// finish sets the terminal outcome. It fails if an outcome was already set.
func (s *Session) finish(outcome Outcome, now time.Time) error {
	if s.outcome.Terminal() {
		return errOutcomeSet
	}
	s.outcome = outcome
	s.finishedAt = now
	return nil
}

type sessionJSON struct {
	ID         string    `json:"id"`
	Source     string    `json:"source,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
	Attempts   []Attempt `json:"attempts"`
	Best       *int      `json:"best,omitempty"`
	Outcome    Outcome   `json:"outcome"`
	FromCache  bool      `json:"from_cache,omitempty"`
	Notes      []string  `json:"notes,omitempty"`
	DurationMS float64   `json:"duration_ms"`
}

// MarshalJSON renders the session trail. The raw payload text is omitted;
// every candidate derived from it is included.
func (s *Session) MarshalJSON() ([]byte, error) {
	out := sessionJSON{
		ID:         s.id,
		Source:     s.payload.Source,
		ReceivedAt: s.payload.ReceivedAt,
		Attempts:   s.Attempts(),
		Outcome:    s.outcome,
		FromCache:  s.fromCache,
		Notes:      s.notes,
		DurationMS: float64(s.Duration()) / float64(time.Millisecond),
	}
	if s.best >= 0 {
		best := s.best
		out.Best = &best
	}
	return json.Marshal(out)
}
