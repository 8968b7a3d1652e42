package repair

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/leofalp/jsonmend/core/preprocess"
	"github.com/leofalp/jsonmend/core/rules"
	"github.com/leofalp/jsonmend/core/structural"
	"github.com/leofalp/jsonmend/providers/cache"
	"github.com/leofalp/jsonmend/providers/completion"
	"github.com/leofalp/jsonmend/providers/observability"
)

var errSessionDeadline = errors.New("jsonmend: session deadline exceeded")

// Loader is the top-level entry point of the pipeline. It is immutable after
// construction and safe for concurrent use; every Load owns its own Session.
type Loader struct {
	opts         Options
	repairer     *rules.Repairer
	orchestrator *Orchestrator
	hasService   bool
	store        cache.Store
	observer     observability.Provider
	now          func() time.Time
	wait         waitFunc
}

// Option configures optional Loader collaborators.
type Option func(*Loader)

// WithCache consults store before repairing and populates it on success.
func WithCache(store cache.Store) Option {
	return func(l *Loader) {
		l.store = store
	}
}

// WithObserver reports spans, metrics and log lines to provider.
func WithObserver(provider observability.Provider) Option {
	return func(l *Loader) {
		if provider != nil {
			l.observer = provider
		}
	}
}

// NewLoader returns a Loader that escalates to service when deterministic
// repair is not enough. A nil service disables model repair: such sessions end
// as exhausted after the deterministic steps.
func NewLoader(service completion.Service, opts Options, options ...Option) *Loader {
	opts.applyDefaults()

	l := &Loader{
		opts:         opts,
		repairer:     rules.New(),
		orchestrator: NewOrchestrator(service, opts),
		hasService:   service != nil,
		observer:     observability.Nop(),
		now:          time.Now,
		wait:         sleep,
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Options returns the effective options, defaults included.
func (l *Loader) Options() Options { return l.opts }

// Load repairs and parses raw. See LoadPayload.
func (l *Loader) Load(ctx context.Context, raw string) (structural.Value, *Session, error) {
	return l.LoadPayload(ctx, NewPayload(raw, ""))
}

// LoadPayload runs one session over payload. On success it returns the parsed
// value; otherwise the error is a *RepairFailure. The session is returned in
// both cases.
func (l *Loader) LoadPayload(ctx context.Context, payload RawPayload) (structural.Value, *Session, error) {
	run := &sessionRun{
		loader:  l,
		session: newSession(payload, l.now()),
	}

	ctx, run.span = l.observer.StartSpan(ctx, observability.SpanLoad,
		observability.String(observability.AttrSessionID, run.session.ID()),
		observability.String(observability.AttrPayloadSource, payload.Source),
		observability.Int(observability.AttrPayloadBytes, len(payload.Text)),
	)
	defer run.span.End()

	if l.opts.SessionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, l.opts.SessionTimeout, errSessionDeadline)
		defer cancel()
	}

	return run.execute(ctx)
}

// sessionRun holds the per-call state of one LoadPayload.
type sessionRun struct {
	loader  *Loader
	session *Session
	span    observability.Span
}

func (r *sessionRun) execute(ctx context.Context) (structural.Value, *Session, error) {
	l := r.loader
	text := r.session.payload.Text
	if ctx.Err() != nil {
		return r.interrupted(ctx)
	}
	key := cache.VariantKey(text, l.opts.cacheVariant())

	if value, ok := r.lookup(ctx, key); ok {
		r.session.fromCache = true
		return r.succeed(ctx, "", value)
	}

	if l.opts.DecodeHTML && preprocess.LooksLikeHTML(text) {
		if markdown, err := preprocess.HTMLToMarkdown(text); err == nil {
			text = markdown
		} else {
			r.warn(ctx, "html decoding failed, using raw text", err)
		}
	}

	started := l.now()
	candidate, applied := l.extract(text)
	if candidate == "" || (!preprocess.HasJSONStart(candidate) && !structural.Valid(candidate)) {
		return r.fail(ctx, Unrepairable("no JSON-like content in input"), ErrPreprocess)
	}

	// Attempt 0: already-valid input skips the rules entirely.
	value, parseErr := parseCandidate(candidate)
	if parseErr != nil {
		var fixed []string
		candidate, fixed = l.repairer.ApplyTrace(candidate)
		applied = append(applied, fixed...)
		value, parseErr = parseCandidate(candidate)
	}
	r.record(ctx, Attempt{
		Strategy:  StrategyDeterministic,
		Candidate: candidate,
		ParseErr:  parseErr,
		Rules:     applied,
		StartedAt: started,
		Duration:  l.now().Sub(started),
	})
	if parseErr == nil {
		return r.succeed(ctx, key, value)
	}

	if l.opts.LibraryRepair {
		started = l.now()
		if repaired, err := rules.LibraryRepair(candidate); err == nil && repaired != candidate {
			value, libErr := parseCandidate(repaired)
			r.record(ctx, Attempt{
				Strategy:  StrategyLibrary,
				Candidate: repaired,
				ParseErr:  libErr,
				StartedAt: started,
				Duration:  l.now().Sub(started),
			})
			if libErr == nil {
				return r.succeed(ctx, key, value)
			}
			candidate, parseErr = repaired, libErr
		}
	}

	if !l.hasService {
		return r.fail(ctx, Exhausted("deterministic repair failed and no completion service is configured"), ErrExhausted)
	}

	return r.modelLoop(ctx, key, candidate, parseErr)
}

// modelLoop drives the bounded completion-service attempts. current is the
// latest failing candidate and currentErr its parse error.
func (r *sessionRun) modelLoop(ctx context.Context, key, current string, currentErr *structural.ParseError) (structural.Value, *Session, error) {
	l := r.loader
	transientStreak := 0

	for n := 1; n <= l.opts.MaxAttempts; n++ {
		if transientStreak > 0 {
			delay := l.orchestrator.Backoff(transientStreak)
			r.span.AddEvent(observability.EventBackoff, observability.Duration(observability.AttrCompletionBackoff, delay))
			if err := l.wait(ctx, delay); err != nil {
				return r.interrupted(ctx)
			}
		}
		if ctx.Err() != nil {
			return r.interrupted(ctx)
		}

		tier := l.orchestrator.TierFor(n)
		started := l.now()
		reply, err := l.orchestrator.Repair(ctx, current, currentErr, n)
		elapsed := l.now().Sub(started)

		if err != nil {
			if ctx.Err() != nil {
				return r.interrupted(ctx)
			}
			if completion.IsFatal(err) {
				return r.fail(ctx, Unrepairable(err.Error()), err)
			}
			r.record(ctx, Attempt{
				Strategy:   ModelStrategy(tier),
				ServiceErr: err,
				StartedAt:  started,
				Duration:   elapsed,
			})
			transientStreak++
			continue
		}
		transientStreak = 0

		next, applied := l.extract(reply)
		if !structural.Valid(next) {
			var fixed []string
			next, fixed = l.repairer.ApplyTrace(next)
			applied = append(applied, fixed...)
		}
		value, parseErr := parseCandidate(next)
		r.record(ctx, Attempt{
			Strategy:  ModelStrategy(tier),
			Candidate: next,
			ParseErr:  parseErr,
			Rules:     applied,
			StartedAt: started,
			Duration:  elapsed,
		})
		if parseErr == nil {
			return r.succeed(ctx, key, value)
		}
		if next == current {
			return r.fail(ctx, Unrepairable("no progress: repair returned the previous candidate unchanged"), ErrNoProgress)
		}
		current, currentErr = next, parseErr
	}

	return r.fail(ctx, Exhausted(fmt.Sprintf("no valid candidate after %d model attempts", l.opts.MaxAttempts)), ErrExhausted)
}

// interrupted ends a session whose context is done. The session deadline
// exhausts the budget; anything else is the caller giving up.
func (r *sessionRun) interrupted(ctx context.Context) (structural.Value, *Session, error) {
	if errors.Is(context.Cause(ctx), errSessionDeadline) {
		return r.fail(ctx, Exhausted("session deadline exceeded"), context.DeadlineExceeded)
	}
	return r.fail(ctx, Unrepairable("canceled: "+ctx.Err().Error()), ctx.Err())
}

func (r *sessionRun) record(ctx context.Context, attempt Attempt) {
	recorded := r.session.record(attempt)

	attrs := []observability.Attribute{
		observability.Int(observability.AttrAttemptIndex, recorded.Index),
		observability.String(observability.AttrAttemptStrategy, string(recorded.Strategy)),
	}
	if len(recorded.Rules) > 0 {
		attrs = append(attrs, observability.StringSlice(observability.AttrAttemptRules, recorded.Rules))
	}
	if recorded.ParseErr != nil {
		attrs = append(attrs,
			observability.String(observability.AttrParseErrorKind, string(recorded.ParseErr.Kind)),
			observability.Int(observability.AttrParseErrorOffset, recorded.ParseErr.Offset),
		)
	}
	if recorded.ServiceErr != nil {
		attrs = append(attrs, observability.Error(recorded.ServiceErr))
	}

	r.span.AddEvent(observability.EventAttemptRecorded, attrs...)
	r.loader.observer.Counter(observability.MetricAttemptsTotal).Add(ctx, 1,
		observability.String(observability.AttrAttemptStrategy, string(recorded.Strategy)))
	r.loader.observer.Debug(ctx, "repair attempt recorded", attrs...)
}

func (r *sessionRun) succeed(ctx context.Context, key string, value structural.Value) (structural.Value, *Session, error) {
	_ = r.session.finish(Success(value), r.loader.now())
	if key != "" {
		r.store(ctx, key, value)
	}
	r.report(ctx, nil)
	return value, r.session, nil
}

func (r *sessionRun) fail(ctx context.Context, outcome Outcome, cause error) (structural.Value, *Session, error) {
	_ = r.session.finish(outcome, r.loader.now())
	failure := &RepairFailure{Session: r.session, Outcome: outcome, Cause: cause}
	r.report(ctx, failure)
	return nil, r.session, failure
}

func (r *sessionRun) report(ctx context.Context, failure error) {
	l := r.loader
	outcome := r.session.Outcome()
	attrs := []observability.Attribute{
		observability.String(observability.AttrSessionID, r.session.ID()),
		observability.String(observability.AttrOutcome, string(outcome.Kind)),
		observability.Int(observability.AttrAttemptsTotal, r.session.Len()),
		observability.Bool(observability.AttrCacheHit, r.session.FromCache()),
	}

	l.observer.Counter(observability.MetricLoadTotal).Add(ctx, 1,
		observability.String(observability.AttrOutcome, string(outcome.Kind)))
	l.observer.Histogram(observability.MetricLoadDuration).Record(ctx,
		observability.Milliseconds(r.session.Duration()))
	if r.session.FromCache() {
		l.observer.Counter(observability.MetricCacheHits).Add(ctx, 1)
	}

	r.span.SetAttributes(attrs...)
	if failure != nil {
		attrs = append(attrs, observability.String(observability.AttrOutcomeReason, outcome.Reason))
		r.span.RecordError(failure)
		r.span.SetStatus(observability.StatusError, outcome.Reason)
		l.observer.Info(ctx, "load failed", attrs...)
		return
	}
	r.span.SetStatus(observability.StatusOK, "")
	l.observer.Debug(ctx, "load succeeded", attrs...)
}

// lookup returns a cached value, ignoring anything that fails strict parsing.
func (r *sessionRun) lookup(ctx context.Context, key string) (structural.Value, bool) {
	l := r.loader
	if l.store == nil {
		return nil, false
	}
	data, ok, err := l.store.Get(ctx, key)
	if err != nil {
		r.warn(ctx, "cache lookup failed", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	value, err := structural.Parse(string(data))
	if err != nil {
		r.warn(ctx, "ignoring invalid cached value", err)
		return nil, false
	}
	return value, true
}

// store writes value to the cache. Failures are reported and otherwise ignored.
func (r *sessionRun) store(ctx context.Context, key string, value structural.Value) {
	l := r.loader
	if l.store == nil {
		return
	}
	data, err := json.Marshal(value)
	if err == nil {
		err = l.store.Set(context.WithoutCancel(ctx), key, data, l.opts.CacheTTL)
	}
	if err != nil {
		r.warn(ctx, "cache store failed", err)
	}
}

// warn reports a failure that does not change the outcome, both to the
// observer and as a session note.
func (r *sessionRun) warn(ctx context.Context, msg string, err error) {
	r.session.note(msg + ": " + err.Error())
	r.loader.observer.Warn(ctx, msg, observability.Error(err))
}

// extract isolates the JSON candidate in text. With JoinConcatenated set,
// back-to-back top-level values are joined before extraction would keep only
// the first of them.
func (l *Loader) extract(text string) (string, []string) {
	if l.opts.JoinConcatenated {
		stripped := preprocess.StripFence(text)
		if joined := rules.JoinConcatenated(stripped); joined != stripped {
			return joined, []string{rules.NameConcatenatedValues}
		}
	}
	return preprocess.Extract(text), nil
}

// parseCandidate narrows structural.Parse's error to *ParseError.
func parseCandidate(candidate string) (structural.Value, *structural.ParseError) {
	value, err := structural.Parse(candidate)
	if err == nil {
		return value, nil
	}
	var parseErr *structural.ParseError
	if errors.As(err, &parseErr) {
		return nil, parseErr
	}
	return nil, &structural.ParseError{Kind: structural.KindSyntax, Message: err.Error()}
}
