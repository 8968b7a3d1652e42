// Package slogobs provides an observability.Provider backed by log/slog.
// Spans, span events and metric updates become debug-level log records;
// ordinary log calls keep their level. Output goes through a [Handler] that
// renders compact, pretty or JSON lines, colored with fatih/color when the
// destination is a terminal.
//
// The main entry point is [New]. Without options the format and level come
// from JSONMEND_LOG_FORMAT and JSONMEND_LOG_LEVEL.
package slogobs
