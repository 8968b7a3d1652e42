package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Handler is a slog.Handler that supports multiple output formats.
type Handler struct {
	format Format
	level  slog.Leveler
	output io.Writer
	colors bool
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Format specifies the output format (compact, pretty, json).
	Format Format
	// Level is the minimum log level to output.
	Level slog.Leveler
	// Output is where logs are written (defaults to os.Stderr).
	Output io.Writer
	// Colors forces ANSI colors on (compact and pretty formats only). When
	// false, colors are still used if Output is a terminal and NO_COLOR is unset.
	Colors bool
}

// NewHandler creates a new Handler with the given options.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	format := opts.Format
	if format == "" {
		format = FormatCompact
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	colors := opts.Colors
	if !colors && format != FormatJSON && os.Getenv("NO_COLOR") == "" {
		if f, ok := output.(*os.File); ok {
			colors = isTerminal(f)
		}
	}

	return &Handler{
		format: format,
		level:  level,
		output: output,
		colors: colors && format != FormatJSON,
		mu:     &sync.Mutex{},
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes a log record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf []byte
	var err error
	switch h.format {
	case FormatPretty:
		buf = h.formatPretty(r)
	case FormatJSON:
		buf, err = h.formatJSON(r)
	default:
		buf = h.formatCompact(r)
	}
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.output.Write(buf)
	return err
}

// WithAttrs returns a new Handler with additional attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, attr := range attrs {
		attr.Key = h.prefix(attr.Key)
		clone.attrs = append(clone.attrs, attr)
	}
	return &clone
}

// WithGroup returns a new Handler whose later attributes are nested under name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(slices.Clone(h.groups), name)
	return &clone
}

// formatCompact renders "2006-01-02 15:04:05 LEVEL Message → {"key":"value"}".
func (h *Handler) formatCompact(r slog.Record) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format(time.DateTime)...)
	buf = append(buf, ' ')
	buf = append(buf, h.paint(r.Level, fmt.Sprintf("%5s", levelString(r.Level)))...)
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	if attrs := h.collectAttrs(r); len(attrs) > 0 {
		buf = append(buf, " → "...)
		jsonData, err := json.Marshal(attrs)
		if err != nil {
			buf = append(buf, "[json-error]"...)
		} else {
			buf = append(buf, jsonData...)
		}
	}

	return append(buf, '\n')
}

// formatPretty renders the header line followed by one sorted attribute per line.
func (h *Handler) formatPretty(r slog.Record) []byte {
	const indent = "                   "

	buf := make([]byte, 0, 256)
	buf = append(buf, r.Time.Format(time.DateTime)...)
	buf = append(buf, ' ')
	level := levelString(r.Level)
	buf = append(buf, h.paint(r.Level, level)...)
	buf = append(buf, "       "[:7-len(level)]...)
	buf = append(buf, r.Message...)
	buf = append(buf, '\n')

	attrs := h.collectAttrs(r)
	keys := slices.Sorted(maps.Keys(attrs))
	for i, key := range keys {
		branch := "├─ "
		if i == len(keys)-1 {
			branch = "└─ "
		}
		buf = append(buf, indent...)
		buf = append(buf, branch...)
		buf = append(buf, key...)
		buf = append(buf, ": "...)
		buf = append(buf, fmt.Sprintf("%v", attrs[key])...)
		buf = append(buf, '\n')
	}

	return buf
}

// formatJSON renders one object with time, level, msg and the attributes
// merged at the top level.
func (h *Handler) formatJSON(r slog.Record) ([]byte, error) {
	data := h.collectAttrs(r)
	data["time"] = r.Time.Format(time.RFC3339Nano)
	data["level"] = levelString(r.Level)
	data["msg"] = r.Message

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return append(jsonData, '\n'), nil
}

// collectAttrs gathers handler and record attributes into one map.
func (h *Handler) collectAttrs(r slog.Record) map[string]any {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, attr := range h.attrs {
		addAttr(attrs, attr.Key, attr.Value)
	}
	r.Attrs(func(attr slog.Attr) bool {
		addAttr(attrs, h.prefix(attr.Key), attr.Value)
		return true
	})
	return attrs
}

func (h *Handler) prefix(key string) string {
	for i := len(h.groups) - 1; i >= 0; i-- {
		key = h.groups[i] + "." + key
	}
	return key
}

// addAttr flattens group values into dotted keys.
func addAttr(attrs map[string]any, key string, value slog.Value) {
	value = value.Resolve()
	switch value.Kind() {
	case slog.KindGroup:
		for _, member := range value.Group() {
			addAttr(attrs, key+"."+member.Key, member.Value)
		}
	case slog.KindDuration:
		attrs[key] = value.Duration().String()
	case slog.KindAny:
		if err, ok := value.Any().(error); ok {
			attrs[key] = err.Error()
			return
		}
		attrs[key] = value.Any()
	default:
		attrs[key] = value.Any()
	}
}

var levelColors = map[string]*color.Color{
	"TRACE": forcedColor(color.FgHiBlack),
	"DEBUG": forcedColor(color.FgBlue),
	"INFO":  forcedColor(color.FgGreen),
	"WARN":  forcedColor(color.FgYellow),
	"ERROR": forcedColor(color.FgRed, color.Bold),
}

// forcedColor ignores color.NoColor; the handler decides per output.
func forcedColor(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

// paint colors text for level when colors are enabled.
func (h *Handler) paint(level slog.Level, text string) string {
	if !h.colors {
		return text
	}
	return levelColors[levelString(level)].Sprint(text)
}

// isTerminal reports whether f is connected to a terminal device.
func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
