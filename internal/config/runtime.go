package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/leofalp/jsonmend/core/repair"
	"github.com/leofalp/jsonmend/providers/cache"
	"github.com/leofalp/jsonmend/providers/cache/inmemory"
	"github.com/leofalp/jsonmend/providers/cache/rediscache"
	"github.com/leofalp/jsonmend/providers/cache/sqlitecache"
	"github.com/leofalp/jsonmend/providers/completion"
	"github.com/leofalp/jsonmend/providers/completion/anthropic"
	"github.com/leofalp/jsonmend/providers/completion/gemini"
	"github.com/leofalp/jsonmend/providers/completion/ollama"
	"github.com/leofalp/jsonmend/providers/completion/openai"
	"github.com/leofalp/jsonmend/providers/observability"
	"github.com/leofalp/jsonmend/providers/observability/slogobs"
	"github.com/leofalp/jsonmend/providers/observability/zapobs"
)

// Provider names accepted in the providers section.
const (
	ProviderNone      = "none"
	ProviderOpenAI    = openai.Name
	ProviderAnthropic = anthropic.Name
	ProviderGemini    = gemini.Name
	ProviderOllama    = ollama.Name
)

// Cache backends accepted in the cache section.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// Logging backends.
const (
	LogSlog = "slog"
	LogZap  = "zap"
)

// Services builds the completion router for the fast and strong tiers. Each
// backend is wrapped with completion.Observe on observer. A tier set to "none"
// borrows the provider and model of the other tier, so escalation always has
// a route. It returns nil when both tiers are "none", leaving the loader
// deterministic only.
func (c *Config) Services(observer observability.Provider) (completion.Service, error) {
	fast, strong := c.Providers.Fast, c.Providers.Strong
	switch {
	case !fast.enabled() && !strong.enabled():
		return nil, nil
	case !fast.enabled():
		fast = strong
	case !strong.enabled():
		strong = fast
	}

	router := completion.NewRouter()
	tiers := []struct {
		name string
		tier Tier
	}{
		{repair.DefaultFastTier, fast},
		{repair.DefaultStrongTier, strong},
	}
	for _, t := range tiers {
		provider := t.tier.provider()
		service, err := c.backend(provider, t.name, t.tier.Model)
		if err != nil {
			return nil, fmt.Errorf("providers.%s: %w", t.name, err)
		}
		router.Route(t.name, completion.Observe(service, observer, provider))
	}
	return router, nil
}

func (t Tier) provider() string {
	return strings.ToLower(strings.TrimSpace(t.Provider))
}

func (t Tier) enabled() bool {
	p := t.provider()
	return p != "" && p != ProviderNone
}

func (c *Config) backend(provider, tier, model string) (completion.Service, error) {
	switch provider {
	case ProviderOpenAI:
		p := openai.New()
		if c.Providers.OpenAI.BaseURL != "" {
			p.WithBaseURL(c.Providers.OpenAI.BaseURL)
		}
		if model != "" {
			p.WithModel(tier, model)
		}
		return p, nil
	case ProviderAnthropic:
		p := anthropic.New()
		if c.Providers.Anthropic.BaseURL != "" {
			p.WithBaseURL(c.Providers.Anthropic.BaseURL)
		}
		if model != "" {
			p.WithModel(tier, model)
		}
		return p, nil
	case ProviderGemini:
		p := gemini.New()
		if c.Providers.Gemini.BaseURL != "" {
			p.WithBaseURL(c.Providers.Gemini.BaseURL)
		}
		if model != "" {
			p.WithModel(tier, model)
		}
		return p, nil
	case ProviderOllama:
		p := ollama.New()
		if c.Providers.Ollama.Host != "" {
			p.WithHost(c.Providers.Ollama.Host)
		}
		if model != "" {
			p.WithModel(tier, model)
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown provider %q", provider)
}

// OpenCache opens the configured cache backend. The returned close function
// is never nil. A "none" backend returns a nil store.
func (c *Config) OpenCache(ctx context.Context) (cache.Store, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(c.Cache.Backend) {
	case "", CacheNone:
		return nil, noop, nil
	case CacheMemory:
		return inmemory.New(), noop, nil
	case CacheSQLite:
		path := c.Cache.Path
		if path == "" {
			path = filepath.Join(CacheDir(), "cache.db")
		}
		store, err := sqlitecache.Open(ctx, path)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case CacheRedis:
		store, err := rediscache.Open(ctx, c.Cache.URL, c.Cache.Prefix)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
}

// Observer builds the logging backend writing to w. The returned flush
// function syncs buffered output and is never nil.
func (c *Config) Observer(w io.Writer) (observability.Provider, func() error, error) {
	level := slog.LevelInfo
	if c.Logging.Level != "" {
		var err error
		if level, err = slogobs.ParseLogLevel(c.Logging.Level); err != nil {
			return nil, nil, fmt.Errorf("logging.level: %w", err)
		}
	}

	switch strings.ToLower(c.Logging.Backend) {
	case "", LogSlog:
		observer := slogobs.New(
			slogobs.WithFormat(slogobs.ParseFormat(c.Logging.Format)),
			slogobs.WithLevel(level),
			slogobs.WithOutput(w),
		)
		return observer, func() error { return nil }, nil
	case LogZap:
		observer := zapobs.New(newZapLogger(w, level))
		return observer, observer.Sync, nil
	}
	return nil, nil, fmt.Errorf("unknown logging backend %q", c.Logging.Backend)
}

// newZapLogger builds a JSON zap logger on w. slog levels map onto zap's,
// with trace folded into debug.
func newZapLogger(w io.Writer, level slog.Level) *zap.Logger {
	zapLevel := zapcore.InfoLevel
	switch {
	case level < slog.LevelInfo:
		zapLevel = zapcore.DebugLevel
	case level >= slog.LevelError:
		zapLevel = zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		zapLevel = zapcore.WarnLevel
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zapLevel)
	return zap.New(core)
}
