package observability

// Attribute keys, span names, event names and metric names shared by every
// component and backend.

// --- Session and attempt attributes ---

const (
	// AttrSessionID is the repair session identifier
	AttrSessionID = "jsonmend.session.id"

	// AttrPayloadSource is the caller-supplied source tag of the raw payload
	AttrPayloadSource = "jsonmend.payload.source"

	// AttrPayloadBytes is the length of the raw payload in bytes
	AttrPayloadBytes = "jsonmend.payload.bytes"

	// AttrAttemptIndex is the 0-based attempt index within a session
	AttrAttemptIndex = "jsonmend.attempt.index"

	// AttrAttemptStrategy is the strategy tag (deterministic, library, model:<tier>)
	AttrAttemptStrategy = "jsonmend.attempt.strategy"

	// AttrAttemptRules lists the deterministic rules that changed the candidate
	AttrAttemptRules = "jsonmend.attempt.rules"

	// AttrAttemptsTotal is the number of attempts recorded by a session
	AttrAttemptsTotal = "jsonmend.attempts.total"

	// AttrParseErrorKind is the structural error kind of a failed candidate
	AttrParseErrorKind = "jsonmend.parse_error.kind"

	// AttrParseErrorOffset is the byte offset of a structural error
	AttrParseErrorOffset = "jsonmend.parse_error.offset"

	// AttrOutcome is the terminal outcome kind of a session
	AttrOutcome = "jsonmend.outcome"

	// AttrOutcomeReason is the reason attached to a non-success outcome
	AttrOutcomeReason = "jsonmend.outcome.reason"

	// AttrCacheHit reports whether a value was served from the result cache
	AttrCacheHit = "jsonmend.cache.hit"
)

// --- Completion attributes ---

const (
	// AttrCompletionTier is the requested tier (e.g., "fast", "strong")
	AttrCompletionTier = "completion.tier"

	// AttrCompletionProvider is the backend name (e.g., "openai", "gemini")
	AttrCompletionProvider = "completion.provider"

	// AttrCompletionModel is the model identifier sent to the backend
	AttrCompletionModel = "completion.model"

	// AttrCompletionTransient reports whether a failure is eligible for retry
	AttrCompletionTransient = "completion.transient"

	// AttrCompletionBackoff is the delay applied before a retried call
	AttrCompletionBackoff = "completion.backoff"

	// AttrPromptBytes is the length of the prompt sent to the backend
	AttrPromptBytes = "completion.prompt.bytes"

	// AttrReplyBytes is the length of the text returned by the backend
	AttrReplyBytes = "completion.reply.bytes"
)

// --- HTTP attributes ---

const (
	// AttrHTTPMethod is the HTTP method (GET, POST, etc.)
	AttrHTTPMethod = "http.method"

	// AttrHTTPStatusCode is the HTTP response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPURL is the full request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPRoute is the matched server route
	AttrHTTPRoute = "http.route"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body.size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body.size"
)

// --- General attributes ---

const (
	// AttrError is the error message
	AttrError = "error"

	// AttrDuration is the operation duration
	AttrDuration = "duration"

	// AttrStatus is the operation status
	AttrStatus = "status"
)

// --- Span names ---

const (
	// SpanLoad covers one SafeLoad call from cache lookup to terminal outcome
	SpanLoad = "jsonmend.load"

	// SpanCompletion covers a single completion-service call
	SpanCompletion = "jsonmend.completion"

	// SpanHTTPRequest covers one request handled by the HTTP API
	SpanHTTPRequest = "jsonmend.http.request"
)

// --- Event names ---

const (
	// EventAttemptRecorded is added to the load span for every recorded attempt
	EventAttemptRecorded = "attempt.recorded"

	// EventBackoff marks a wait before a retried completion call
	EventBackoff = "completion.backoff"

	// EventHTTPRequestPrepared marks an outgoing backend request
	EventHTTPRequestPrepared = "http.request.prepared"

	// EventHTTPResponseReceived marks a backend response
	EventHTTPResponseReceived = "http.response.received"

	// EventHTTPRequestError marks a transport failure
	EventHTTPRequestError = "http.request.error"
)

// --- Metric names ---

const (
	// MetricLoadTotal counts finished loads, labelled by outcome
	MetricLoadTotal = "jsonmend.load.total"

	// MetricLoadDuration records load wall-clock time in milliseconds
	MetricLoadDuration = "jsonmend.load.duration"

	// MetricAttemptsTotal counts recorded attempts, labelled by strategy
	MetricAttemptsTotal = "jsonmend.attempts.total"

	// MetricCacheHits counts loads served from the result cache
	MetricCacheHits = "jsonmend.cache.hits"

	// MetricCompletionCalls counts completion-service calls, labelled by tier
	MetricCompletionCalls = "jsonmend.completion.calls"

	// MetricCompletionDuration records completion latency in milliseconds
	MetricCompletionDuration = "jsonmend.completion.duration"
)
