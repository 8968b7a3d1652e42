package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/leofalp/jsonmend/internal/utils"
	"github.com/leofalp/jsonmend/providers/completion"
)

const (
	// Name labels this backend in errors and telemetry.
	Name = "openai"

	defaultBaseURL          = "https://api.groq.com/openai/v1"
	chatCompletionsEndpoint = "/chat/completions"
)

// DefaultModels are the Groq models used when no tier mapping is configured.
var DefaultModels = completion.Models{
	"fast":   "llama-3.1-8b-instant",
	"strong": "llama-3.3-70b-versatile",
}

// Provider calls the /chat/completions endpoint of an OpenAI-compatible API.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	models  completion.Models
}

// New creates a provider configured from the environment.
func New() *Provider {
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Provider{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
		models:  DefaultModels.Clone(),
	}
}

// WithAPIKey sets the API key for the provider
func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the base URL for the API
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	p.baseURL = baseURL
	return p
}

// WithHTTPClient sets a custom HTTP client
func (p *Provider) WithHTTPClient(httpClient *http.Client) *Provider {
	p.client = httpClient
	return p
}

// WithModel maps tier to model.
func (p *Provider) WithModel(tier, model string) *Provider {
	p.models[tier] = model
	return p
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type response struct {
	Choices []struct {
		Message      message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// Complete implements completion.Service.
func (p *Provider) Complete(ctx context.Context, tier, prompt string) (string, error) {
	if p.apiKey == "" {
		return "", &completion.Error{Kind: completion.ErrAuth, Provider: Name, Err: fmt.Errorf("API key is not set")}
	}

	model, err := p.models.Resolve(Name, tier)
	if err != nil {
		return "", err
	}

	body := request{
		Model:    model,
		Messages: []message{{Role: "user", Content: prompt}},
	}

	resp, err := utils.DoPostSync[response](ctx, p.client, p.baseURL+chatCompletionsEndpoint, Name, body, utils.BearerAuth(p.apiKey))
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", &completion.Error{Kind: completion.ErrUnavailable, Provider: Name, Err: fmt.Errorf("no choices in response")}
	}
	return resp.Choices[0].Message.Content, nil
}
