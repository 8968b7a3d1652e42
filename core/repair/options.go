package repair

import (
	"strings"
	"time"
)

// Options enumerates every recognized loader setting. Zero values are replaced
// by the defaults listed on each field.
type Options struct {
	// MaxAttempts bounds the number of completion-service attempts per
	// session, transient failures included. Default: 3.
	MaxAttempts int

	// TierEscalationThreshold is the last model attempt served by the fast
	// tier; later attempts use the strong tier. Default: 1.
	TierEscalationThreshold int

	// BackoffBase is the delay before the first retry after a transient
	// failure. It doubles per consecutive failure. Default: 250ms.
	BackoffBase time.Duration

	// BackoffCap caps the backoff delay. Default: 8s.
	BackoffCap time.Duration

	// CallTimeout bounds a single completion-service call. Default: 30s.
	CallTimeout time.Duration

	// SessionTimeout bounds the whole session. Zero means no session deadline.
	SessionTimeout time.Duration

	// Tiers names the completion tiers. Default: "fast" and "strong".
	Tiers Tiers

	// CacheTTL is the lifetime of cached results. Default: 24h.
	CacheTTL time.Duration

	// LibraryRepair enables a general-purpose repair pass between the
	// deterministic rules and the first model call. It is not counted
	// against MaxAttempts.
	LibraryRepair bool

	// JoinConcatenated adds a rule that wraps back-to-back top-level values
	// into one array.
	JoinConcatenated bool

	// DecodeHTML converts HTML payloads to markdown before extraction.
	DecodeHTML bool
}

// Tiers holds the tier names passed to the completion service.
type Tiers struct {
	Fast   string `yaml:"fast" toml:"fast" json:"fast"`
	Strong string `yaml:"strong" toml:"strong" json:"strong"`
}

// Default values applied by DefaultOptions and by NewLoader.
const (
	DefaultMaxAttempts             = 3
	DefaultTierEscalationThreshold = 1
	DefaultBackoffBase             = 250 * time.Millisecond
	DefaultBackoffCap              = 8 * time.Second
	DefaultCallTimeout             = 30 * time.Second
	DefaultCacheTTL                = 24 * time.Hour
	DefaultFastTier                = "fast"
	DefaultStrongTier              = "strong"
)

// DefaultOptions returns Options with every default filled in.
func DefaultOptions() Options {
	var o Options
	o.applyDefaults()
	return o
}

func (o *Options) applyDefaults() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.TierEscalationThreshold <= 0 {
		o.TierEscalationThreshold = DefaultTierEscalationThreshold
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = DefaultBackoffBase
	}
	if o.BackoffCap <= 0 {
		o.BackoffCap = DefaultBackoffCap
	}
	if o.BackoffCap < o.BackoffBase {
		o.BackoffCap = o.BackoffBase
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = DefaultCallTimeout
	}
	if o.SessionTimeout < 0 {
		o.SessionTimeout = 0
	}
	if o.Tiers.Fast == "" {
		o.Tiers.Fast = DefaultFastTier
	}
	if o.Tiers.Strong == "" {
		o.Tiers.Strong = DefaultStrongTier
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = DefaultCacheTTL
	}
}

// cacheVariant names the option set that changes what a payload repairs to.
// Results cached under one variant are never served to another.
func (o Options) cacheVariant() string {
	var parts []string
	if o.LibraryRepair {
		parts = append(parts, "library")
	}
	if o.JoinConcatenated {
		parts = append(parts, "join")
	}
	if o.DecodeHTML {
		parts = append(parts, "html")
	}
	return strings.Join(parts, "+")
}
