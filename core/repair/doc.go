// Package repair turns untrusted, supposedly-JSON text into a parsed value or
// a fully diagnosable failure.
//
// A [Loader] runs one [Session] per payload: text extraction, the fixed
// deterministic rules, an optional library pass, and then a bounded sequence of
// completion-service calls driven by an [Orchestrator]. Each step is recorded
// as an [Attempt]; the loop stops on the first strictly valid candidate, when
// the attempt budget is spent, when two consecutive candidates are identical,
// or when the completion service reports a fatal error.
//
// Failures are returned as [*RepairFailure], which carries the whole session and
// matches [ErrPreprocess], [ErrUnrepairable], [ErrNoProgress] or [ErrExhausted]
// under errors.Is, plus any completion-service sentinel that caused it.
package repair
