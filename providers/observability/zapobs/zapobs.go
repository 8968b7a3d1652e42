package zapobs

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leofalp/jsonmend/providers/observability"
)

// Observer implements observability.Provider on a zap.Logger.
type Observer struct {
	logger   *zap.Logger
	counters sync.Map // name -> *atomic.Int64
}

var _ observability.Provider = (*Observer)(nil)

// New wraps logger. A nil logger yields a no-op observer.
func New(logger *zap.Logger) *Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Observer{logger: logger}
}

// NewProduction builds a JSON logger on stderr using zap's production
// config, at debug level when debug is set.
func NewProduction(debug bool) (*Observer, error) {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return New(logger), nil
}

// Logger returns the underlying logger.
func (o *Observer) Logger() *zap.Logger { return o.logger }

// Sync flushes buffered entries.
func (o *Observer) Sync() error { return o.logger.Sync() }

// StartSpan returns a context carrying a span that logs its events and,
// on End, its duration and status.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &zapSpan{
		logger: o.logger.With(zap.String("span", name)),
		start:  time.Now(),
		attrs:  append([]observability.Attribute(nil), attrs...),
	}
	span.logger.Debug("span started", fields(attrs)...)
	return observability.ContextWithSpan(ctx, span), span
}

type zapSpan struct {
	logger *zap.Logger
	start  time.Time

	mu     sync.Mutex
	attrs  []observability.Attribute
	status observability.StatusCode
	ended  bool
}

func (s *zapSpan) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true

	all := append(fields(s.attrs),
		zap.Duration(observability.AttrDuration, time.Since(s.start)),
		zap.Stringer(observability.AttrStatus, s.status),
	)
	s.logger.Debug("span ended", all...)
}

func (s *zapSpan) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attrs = append(s.attrs, attrs...)
}

func (s *zapSpan) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = code
	if description != "" {
		s.attrs = append(s.attrs, observability.String("status.description", description))
	}
}

func (s *zapSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	s.attrs = append(s.attrs, observability.Error(err))
	s.mu.Unlock()
	s.logger.Warn("span error", zap.Error(err))
}

func (s *zapSpan) AddEvent(name string, attrs ...observability.Attribute) {
	s.logger.Debug("span event", append([]zap.Field{zap.String("event", name)}, fields(attrs)...)...)
}

// Counter returns the named counter. Totals are kept in process.
func (o *Observer) Counter(name string) observability.Counter {
	value, _ := o.counters.LoadOrStore(name, new(atomic.Int64))
	return &counter{name: name, logger: o.logger, value: value.(*atomic.Int64)}
}

// CounterValue returns the running total of the named counter.
func (o *Observer) CounterValue(name string) int64 {
	value, ok := o.counters.Load(name)
	if !ok {
		return 0
	}
	return value.(*atomic.Int64).Load()
}

// Histogram returns the named histogram; observations are logged only.
func (o *Observer) Histogram(name string) observability.Histogram {
	return &histogram{name: name, logger: o.logger}
}

type counter struct {
	name   string
	logger *zap.Logger
	value  *atomic.Int64
}

func (c *counter) Add(_ context.Context, delta int64, attrs ...observability.Attribute) {
	total := c.value.Add(delta)
	if ce := c.logger.Check(zapcore.DebugLevel, "counter"); ce != nil {
		ce.Write(append([]zap.Field{zap.String("metric", c.name), zap.Int64("value", total), zap.Int64("delta", delta)}, fields(attrs)...)...)
	}
}

type histogram struct {
	name   string
	logger *zap.Logger
}

func (h *histogram) Record(_ context.Context, value float64, attrs ...observability.Attribute) {
	if ce := h.logger.Check(zapcore.DebugLevel, "histogram"); ce != nil {
		ce.Write(append([]zap.Field{zap.String("metric", h.name), zap.Float64("value", value)}, fields(attrs)...)...)
	}
}

// Trace is logged at debug level; zap has nothing finer.
func (o *Observer) Trace(_ context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Debug(msg, append(fields(attrs), zap.Bool("trace", true))...)
}

func (o *Observer) Debug(_ context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Debug(msg, fields(attrs)...)
}

func (o *Observer) Info(_ context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Info(msg, fields(attrs)...)
}

func (o *Observer) Warn(_ context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Warn(msg, fields(attrs)...)
}

func (o *Observer) Error(_ context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Error(msg, fields(attrs)...)
}

func fields(attrs []observability.Attribute) []zap.Field {
	out := make([]zap.Field, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, zap.Any(attr.Key, attr.Value))
	}
	return out
}
