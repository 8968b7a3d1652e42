package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAttributeConstructors(t *testing.T) {
	tests := []struct {
		name string
		attr Attribute
		key  string
		want any
	}{
		{"string", String(AttrSessionID, "abc"), AttrSessionID, "abc"},
		{"int", Int(AttrAttemptIndex, 2), AttrAttemptIndex, 2},
		{"int64", Int64(AttrPayloadBytes, 1024), AttrPayloadBytes, int64(1024)},
		{"float64", Float64(AttrDuration, 1.5), AttrDuration, 1.5},
		{"bool", Bool(AttrCacheHit, true), AttrCacheHit, true},
		{"duration", Duration(AttrCompletionBackoff, time.Second), AttrCompletionBackoff, time.Second},
		{"error", Error(errors.New("boom")), AttrError, "boom"},
		{"nil error", Error(nil), AttrError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.attr.Key != tt.key {
				t.Errorf("Key = %q, want %q", tt.attr.Key, tt.key)
			}
			if tt.attr.Value != tt.want {
				t.Errorf("Value = %v, want %v", tt.attr.Value, tt.want)
			}
		})
	}
}

func TestStringSlice(t *testing.T) {
	attr := StringSlice(AttrAttemptRules, []string{"single-quotes", "trailing-commas"})
	value, ok := attr.Value.([]string)
	if !ok || len(value) != 2 || value[1] != "trailing-commas" {
		t.Errorf("unexpected value %#v", attr.Value)
	}
}

func TestStatusCode_String(t *testing.T) {
	if StatusOK.String() != "ok" || StatusError.String() != "error" || StatusUnset.String() != "unset" {
		t.Error("unexpected status code names")
	}
}

func TestMilliseconds(t *testing.T) {
	if got := Milliseconds(1500 * time.Microsecond); got != 1.5 {
		t.Errorf("Milliseconds() = %v, want 1.5", got)
	}
}

func TestNop_IsUsable(t *testing.T) {
	provider := Nop()
	ctx, span := provider.StartSpan(context.Background(), SpanLoad, String(AttrSessionID, "x"))
	if span == nil {
		t.Fatal("expected a non-nil span")
	}
	span.AddEvent(EventAttemptRecorded)
	span.SetStatus(StatusOK, "")
	span.End()

	provider.Counter(MetricLoadTotal).Add(ctx, 1)
	provider.Histogram(MetricLoadDuration).Record(ctx, 3.2)
	provider.Info(ctx, "message", Bool(AttrCacheHit, false))
}

func TestSpanContext(t *testing.T) {
	if SpanFromContext(context.Background()) != nil {
		t.Error("expected nil span from empty context")
	}

	span := &recordingSpan{}
	ctx := ContextWithSpan(context.Background(), span)
	if SpanFromContext(ctx) != span {
		t.Error("span did not round-trip through context")
	}

	//nolint:staticcheck // nil context is handled
	if SpanFromContext(nil) != nil {
		t.Error("expected nil span from nil context")
	}
}

func TestObserverContext(t *testing.T) {
	if ObserverFromContext(context.Background()) != nil {
		t.Error("expected nil observer from empty context")
	}

	observer := Nop()
	ctx := ContextWithObserver(context.Background(), observer)
	if ObserverFromContext(ctx) != observer {
		t.Error("observer did not round-trip through context")
	}

	// Span and observer keys must not collide.
	ctx = ContextWithSpan(ctx, &recordingSpan{})
	if ObserverFromContext(ctx) != observer {
		t.Error("storing a span replaced the observer")
	}
}

type recordingSpan struct {
	events []string
}

func (s *recordingSpan) End()                                 {}
func (s *recordingSpan) SetAttributes(...Attribute)           {}
func (s *recordingSpan) SetStatus(StatusCode, string)         {}
func (s *recordingSpan) RecordError(error)                    {}
func (s *recordingSpan) AddEvent(name string, _ ...Attribute) { s.events = append(s.events, name) }
