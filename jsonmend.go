// Package jsonmend turns untrusted JSON-like text, typically the output of a
// language model, into a strictly valid parsed value.
//
// Loading runs a pipeline: the payload is extracted from surrounding prose and
// markdown fences, fixed with deterministic rules (smart quotes, single quotes,
// trailing commas, raw control characters) and, if it still does not parse,
// sent to a completion service for repair under a bounded retry budget. Every
// step is recorded in a [repair.Session] returned alongside the result.
//
// Example usage:
//
//	value, session, err := jsonmend.SafeLoad(ctx, reply, service)
//	if err != nil {
//	    var failure *repair.RepairFailure
//	    if errors.As(err, &failure) {
//	        log.Printf("gave up after %d attempts", failure.Session.Len())
//	    }
//	    return err
//	}
//
//	type Verdict struct {
//	    Score  int    `json:"score"`
//	    Reason string `json:"reason"`
//	}
//	verdict, _, err := jsonmend.LoadAs[Verdict](ctx, reply, service)
package jsonmend

import (
	"context"
	"fmt"

	"github.com/leofalp/jsonmend/core/parse"
	"github.com/leofalp/jsonmend/core/repair"
	"github.com/leofalp/jsonmend/core/structural"
	"github.com/leofalp/jsonmend/providers/cache"
	"github.com/leofalp/jsonmend/providers/completion"
	"github.com/leofalp/jsonmend/providers/observability"
)

// Terminal errors, re-exported for callers that only import this package.
var (
	ErrPreprocess   = repair.ErrPreprocess
	ErrUnrepairable = repair.ErrUnrepairable
	ErrNoProgress   = repair.ErrNoProgress
	ErrExhausted    = repair.ErrExhausted
)

// Option customizes a SafeLoad or LoadAs call.
type Option func(*settings)

type settings struct {
	opts   repair.Options
	loader []repair.Option
	source string
}

// WithOptions replaces the repair options. Zero-valued fields take defaults.
func WithOptions(opts repair.Options) Option {
	return func(s *settings) {
		s.opts = opts
	}
}

// WithCache consults store before repairing and populates it on success.
func WithCache(store cache.Store) Option {
	return func(s *settings) {
		s.loader = append(s.loader, repair.WithCache(store))
	}
}

// WithObserver reports the load to provider.
func WithObserver(provider observability.Provider) Option {
	return func(s *settings) {
		s.loader = append(s.loader, repair.WithObserver(provider))
	}
}

// WithSource tags the payload with where it came from (a file name, a model
// name, a request ID). The tag shows up in session traces.
func WithSource(source string) Option {
	return func(s *settings) {
		s.source = source
	}
}

// SafeLoad repairs and parses raw. service may be nil, in which case only the
// deterministic steps run.
//
// On failure the error is a *repair.RepairFailure matching ErrPreprocess,
// ErrUnrepairable or ErrExhausted with errors.Is. The session is returned in
// every case.
func SafeLoad(ctx context.Context, raw string, service completion.Service, options ...Option) (structural.Value, *repair.Session, error) {
	s := settings{opts: repair.DefaultOptions()}
	for _, option := range options {
		option(&s)
	}

	loader := repair.NewLoader(service, s.opts, s.loader...)
	return loader.LoadPayload(ctx, repair.NewPayload(raw, s.source))
}

// LoadAs runs SafeLoad and converts the value into T with parse.Into.
// Conversion errors are returned as-is; the session still reports a success.
func LoadAs[T any](ctx context.Context, raw string, service completion.Service, options ...Option) (T, *repair.Session, error) {
	var zero T

	value, session, err := SafeLoad(ctx, raw, service, options...)
	if err != nil {
		return zero, session, err
	}

	typed, err := parse.Into[T](value)
	if err != nil {
		return zero, session, fmt.Errorf("jsonmend: %w", err)
	}
	return typed, session, nil
}
