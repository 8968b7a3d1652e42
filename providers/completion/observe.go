package completion

import (
	"context"
	"time"

	"github.com/leofalp/jsonmend/providers/observability"
)

// Observe wraps service so every call opens a span, increments the call
// counter and records its latency on provider. name labels the backend.
func Observe(service Service, provider observability.Provider, name string) Service {
	if provider == nil {
		return service
	}
	return &observed{next: service, provider: provider, name: name}
}

type observed struct {
	next     Service
	provider observability.Provider
	name     string
}

func (o *observed) Complete(ctx context.Context, tier, prompt string) (string, error) {
	attrs := []observability.Attribute{
		observability.String(observability.AttrCompletionTier, tier),
		observability.String(observability.AttrCompletionProvider, o.name),
	}

	ctx, span := o.provider.StartSpan(ctx, observability.SpanCompletion, attrs...)
	defer span.End()
	ctx = observability.ContextWithObserver(ctx, o.provider)

	start := time.Now()
	reply, err := o.next.Complete(ctx, tier, prompt)
	elapsed := time.Since(start)

	o.provider.Counter(observability.MetricCompletionCalls).Add(ctx, 1, attrs...)
	o.provider.Histogram(observability.MetricCompletionDuration).Record(ctx, observability.Milliseconds(elapsed), attrs...)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		o.provider.Warn(ctx, "completion call failed",
			append(attrs,
				observability.Error(err),
				observability.Bool(observability.AttrCompletionTransient, IsTransient(err)),
				observability.Duration(observability.AttrDuration, elapsed),
			)...)
		return "", err
	}

	span.SetAttributes(
		observability.Int(observability.AttrPromptBytes, len(prompt)),
		observability.Int(observability.AttrReplyBytes, len(reply)),
	)
	span.SetStatus(observability.StatusOK, "")
	o.provider.Debug(ctx, "completion call finished",
		append(attrs, observability.Duration(observability.AttrDuration, elapsed))...)
	return reply, nil
}
