package repair

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/leofalp/jsonmend/core/structural"
)

// Result is the outcome of one payload in a batch.
type Result struct {
	Payload RawPayload
	Value   structural.Value
	Session *Session
	Err     error
}

// LoadAll loads every payload in its own session with at most limit sessions
// in flight (limit <= 0 means one per payload). Results keep the input order.
// A failed payload does not stop the others; only ctx cancellation does, and
// payloads not yet started then fail as unrepairable, valid ones included.
func (l *Loader) LoadAll(ctx context.Context, payloads []RawPayload, limit int) []Result {
	results := make([]Result, len(payloads))

	group, groupCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}

	for i, payload := range payloads {
		group.Go(func() error {
			value, session, err := l.LoadPayload(groupCtx, payload)
			results[i] = Result{Payload: payload, Value: value, Session: session, Err: err}
			return nil
		})
	}
	_ = group.Wait()

	return results
}
