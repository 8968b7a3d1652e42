package ollama

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/leofalp/jsonmend/internal/utils"
	"github.com/leofalp/jsonmend/providers/completion"
)

const (
	// Name labels this backend in errors and telemetry.
	Name = "ollama"

	defaultHost      = "http://localhost:11434"
	generateEndpoint = "/api/generate"
)

// DefaultModels are used when no tier mapping is configured.
var DefaultModels = completion.Models{
	"fast":   "llama3.2",
	"strong": "qwen2.5:14b",
}

// Provider calls a local Ollama server. No credentials are needed.
type Provider struct {
	host     string
	client   *http.Client
	models   completion.Models
	jsonMode bool
}

// New returns a provider for OLLAMA_HOST, or localhost:11434 when unset.
func New() *Provider {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = defaultHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	return &Provider{
		host:     strings.TrimRight(host, "/"),
		client:   &http.Client{},
		models:   DefaultModels.Clone(),
		jsonMode: true,
	}
}

// WithHost overrides the server address.
func (p *Provider) WithHost(host string) *Provider {
	p.host = strings.TrimRight(host, "/")
	return p
}

// WithHTTPClient replaces the default http.Client.
func (p *Provider) WithHTTPClient(httpClient *http.Client) *Provider {
	p.client = httpClient
	return p
}

// WithModel maps tier to model.
func (p *Provider) WithModel(tier, model string) *Provider {
	p.models[tier] = model
	return p
}

// WithJSONMode toggles Ollama's constrained JSON output (on by default).
func (p *Provider) WithJSONMode(enabled bool) *Provider {
	p.jsonMode = enabled
	return p
}

type options struct {
	Temperature float64 `json:"temperature"`
}

type request struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Format  string  `json:"format,omitempty"`
	Options options `json:"options"`
}

type response struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// Complete implements completion.Service.
func (p *Provider) Complete(ctx context.Context, tier, prompt string) (string, error) {
	model, err := p.models.Resolve(Name, tier)
	if err != nil {
		return "", err
	}

	body := request{Model: model, Prompt: prompt}
	if p.jsonMode {
		body.Format = "json"
	}

	resp, err := utils.DoPostSync[response](ctx, p.client, p.host+generateEndpoint, Name, body)
	if err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", &completion.Error{Kind: completion.ErrUnavailable, Provider: Name, Err: fmt.Errorf("%s", resp.Error)}
	}
	return resp.Response, nil
}
