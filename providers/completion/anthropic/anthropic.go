package anthropic

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
	Name = "anthropic"

	// defaultBaseURL is the canonical base URL for Anthropic's Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	messagesEndpoint = "/messages"

	// anthropicVersion pins the wire format of the Messages API.
	anthropicVersion = "2023-06-01"

	defaultMaxTokens = 4096
)

// DefaultModels are used when no tier mapping is configured.
var DefaultModels = completion.Models{
	"fast":   "claude-haiku-4-5",
	"strong": "claude-sonnet-4-5",
}

// Provider calls the Messages API.
type Provider struct {
	apiKey    string
	baseURL   string
	client    *http.Client
	models    completion.Models
	maxTokens int
}

// New returns a provider initialized from environment variables.
func New() *Provider {
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		apiKey:    os.Getenv("ANTHROPIC_API_KEY"),
		baseURL:   baseURL,
		client:    &http.Client{},
		models:    DefaultModels.Clone(),
		maxTokens: defaultMaxTokens,
	}
}

// WithAPIKey overrides the value read from ANTHROPIC_API_KEY.
func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the API base URL, e.g. for a proxy.
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	p.baseURL = baseURL
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

// WithMaxTokens caps the reply length. Repaired payloads are roughly as long
// as the input, so this bounds the largest payload a model can return whole.
func (p *Provider) WithMaxTokens(maxTokens int) *Provider {
	if maxTokens > 0 {
		p.maxTokens = maxTokens
	}
	return p
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type response struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// x-api-key carries the credential; Anthropic does not use Bearer tokens.
func (p *Provider) buildHeaders() []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-api-key", Value: p.apiKey},
		{Key: "anthropic-version", Value: anthropicVersion},
	}
}

// Complete implements completion.Service. The text blocks of the reply are
// concatenated.
func (p *Provider) Complete(ctx context.Context, tier, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", &completion.Error{Kind: completion.ErrAuth, Provider: Name, Err: fmt.Errorf("API key is not set")}
	}

	model, err := p.models.Resolve(Name, tier)
	if err != nil {
		return "", err
	}

	body := request{
		Model:     model,
		MaxTokens: p.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	}

	resp, err := utils.DoPostSync[response](ctx, p.client, p.baseURL+messagesEndpoint, Name, body, p.buildHeaders()...)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", &completion.Error{Kind: completion.ErrUnavailable, Provider: Name, Err: fmt.Errorf("no text content in response (stop reason %q)", resp.StopReason)}
	}
	return text.String(), nil
}
