// Package obstest provides an in-memory observability.Provider for tests.
package obstest

import (
	"context"
	"sync"

	"github.com/leofalp/jsonmend/providers/observability"
)

// Recorder captures spans, metrics and log lines. It is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	spans    []*Span
	counters map[string]int64
	samples  map[string][]float64
	logs     []Log
}

// Span is a recorded span.
type Span struct {
	mu     sync.Mutex
	Name   string
	Attrs  []observability.Attribute
	Events []string
	Status observability.StatusCode
	Errors []error
	Ended  bool
}

// Log is a recorded log line.
type Log struct {
	Level string
	Msg   string
	Attrs []observability.Attribute
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{counters: make(map[string]int64), samples: make(map[string][]float64)}
}

func (r *Recorder) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &Span{Name: name, Attrs: append([]observability.Attribute(nil), attrs...)}
	r.mu.Lock()
	r.spans = append(r.spans, span)
	r.mu.Unlock()
	return observability.ContextWithSpan(ctx, span), span
}

func (r *Recorder) Counter(name string) observability.Counter     { return counter{r: r, name: name} }
func (r *Recorder) Histogram(name string) observability.Histogram { return histogram{r: r, name: name} }

func (r *Recorder) Trace(_ context.Context, msg string, attrs ...observability.Attribute) {
	r.log("trace", msg, attrs)
}

func (r *Recorder) Debug(_ context.Context, msg string, attrs ...observability.Attribute) {
	r.log("debug", msg, attrs)
}

func (r *Recorder) Info(_ context.Context, msg string, attrs ...observability.Attribute) {
	r.log("info", msg, attrs)
}

func (r *Recorder) Warn(_ context.Context, msg string, attrs ...observability.Attribute) {
	r.log("warn", msg, attrs)
}

func (r *Recorder) Error(_ context.Context, msg string, attrs ...observability.Attribute) {
	r.log("error", msg, attrs)
}

func (r *Recorder) log(level, msg string, attrs []observability.Attribute) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, Log{Level: level, Msg: msg, Attrs: append([]observability.Attribute(nil), attrs...)})
}

// Spans returns the spans started so far, optionally filtered by name.
func (r *Recorder) Spans(name ...string) []*Span {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Span
	for _, span := range r.spans {
		if len(name) == 0 || span.Name == name[0] {
			out = append(out, span)
		}
	}
	return out
}

// Count returns the accumulated value of a counter.
func (r *Recorder) Count(name string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[name]
}

// Samples returns the values recorded on a histogram.
func (r *Recorder) Samples(name string) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.samples[name]...)
}

// Logs returns the recorded log lines.
func (r *Recorder) Logs() []Log {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Log(nil), r.logs...)
}

// Attr returns the value of the first attribute named key, if any.
func Attr(attrs []observability.Attribute, key string) (any, bool) {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return nil, false
}

func (s *Span) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Ended = true
}

func (s *Span) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Attrs = append(s.Attrs, attrs...)
}

func (s *Span) SetStatus(code observability.StatusCode, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = code
}

func (s *Span) RecordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, err)
}

func (s *Span) AddEvent(name string, _ ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, name)
}

type counter struct {
	r    *Recorder
	name string
}

func (c counter) Add(_ context.Context, value int64, _ ...observability.Attribute) {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	c.r.counters[c.name] += value
}

type histogram struct {
	r    *Recorder
	name string
}

func (h histogram) Record(_ context.Context, value float64, _ ...observability.Attribute) {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()
	h.r.samples[h.name] = append(h.r.samples[h.name], value)
}
