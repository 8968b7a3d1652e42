package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/leofalp/jsonmend/core/repair"
	"github.com/leofalp/jsonmend/internal/utils"
)

const candidatePreview = 120

// tracePrinter renders a session trail for humans. Colors follow
// color.NoColor, which is off when stderr is not a terminal.
type tracePrinter struct {
	w       io.Writer
	header  *color.Color
	ok      *color.Color
	failed  *color.Color
	dim     *color.Color
	outcome map[repair.OutcomeKind]*color.Color
}

func newTracePrinter(w io.Writer) *tracePrinter {
	ok := color.New(color.FgGreen, color.Bold)
	failed := color.New(color.FgRed, color.Bold)
	return &tracePrinter{
		w:      w,
		header: color.New(color.FgCyan, color.Bold),
		ok:     ok,
		failed: failed,
		dim:    color.New(color.Faint),
		outcome: map[repair.OutcomeKind]*color.Color{
			repair.OutcomeSuccess:      ok,
			repair.OutcomeExhausted:    color.New(color.FgYellow, color.Bold),
			repair.OutcomeUnrepairable: failed,
		},
	}
}

func (p *tracePrinter) Print(session *repair.Session) {
	if session == nil {
		return
	}

	fmt.Fprintf(p.w, "%s %s\n", p.header.Sprint("session"), session.ID())
	if session.FromCache() {
		fmt.Fprintf(p.w, "  %s\n", p.dim.Sprint("served from cache"))
	}
	for _, note := range session.Notes() {
		fmt.Fprintf(p.w, "  note: %s\n", note)
	}

	best, hasBest := session.Best()
	for _, attempt := range session.Attempts() {
		mark := p.ok.Sprint("ok  ")
		if !attempt.Succeeded() {
			mark = p.failed.Sprint("fail")
		}
		fmt.Fprintf(p.w, "  #%d %s %-16s %s\n", attempt.Index, mark, attempt.Strategy, p.dim.Sprint(attempt.Duration.Round(time.Microsecond)))

		if len(attempt.Rules) > 0 {
			fmt.Fprintf(p.w, "     rules: %s\n", strings.Join(attempt.Rules, ", "))
		}
		switch {
		case attempt.ServiceErr != nil:
			fmt.Fprintf(p.w, "     service: %v\n", attempt.ServiceErr)
		case attempt.ParseErr != nil:
			fmt.Fprintf(p.w, "     parse: %v\n", attempt.ParseErr)
		}
		if attempt.Candidate != "" {
			fmt.Fprintf(p.w, "     %s\n", p.dim.Sprint(preview(attempt.Candidate)))
		}
		if hasBest && best.Index == attempt.Index && !attempt.Succeeded() {
			fmt.Fprintf(p.w, "     %s\n", p.dim.Sprint("best candidate"))
		}
	}

	outcome := session.Outcome()
	paint, ok := p.outcome[outcome.Kind]
	if !ok {
		paint = p.dim
	}
	line := paint.Sprint(string(outcome.Kind))
	if outcome.Reason != "" {
		line += ": " + outcome.Reason
	}
	fmt.Fprintf(p.w, "  %s %s in %s\n", p.header.Sprint("outcome"), line, session.Duration().Round(time.Microsecond))
}

func preview(candidate string) string {
	return utils.TruncateString(strings.Join(strings.Fields(candidate), " "), candidatePreview)
}
