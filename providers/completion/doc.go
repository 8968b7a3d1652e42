// Package completion defines the narrow text-completion capability consumed by
// the repair orchestrator, together with its error taxonomy.
//
// A [Service] turns a prompt into text for a named tier ("fast", "strong").
// Failures are classified by wrapping one of the sentinel errors: [ErrAuth] and
// [ErrConfig] are fatal, [ErrRateLimited], [ErrTimeout] and [ErrUnavailable] are
// transient. Use [IsFatal] and [IsTransient] instead of matching sentinels one
// by one.
//
// [Router] maps tiers onto concrete backends, which live in sub-packages
// (openai, anthropic, gemini, ollama).
package completion
