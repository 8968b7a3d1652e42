package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"google.golang.org/genai"

	"github.com/leofalp/jsonmend/providers/completion"
)

// Name labels this backend in errors and telemetry.
const Name = "gemini"

// DefaultModels are used when no tier mapping is configured.
var DefaultModels = completion.Models{
	"fast":   "gemini-2.5-flash-lite",
	"strong": "gemini-2.5-pro",
}

// Provider calls generateContent through a genai client.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
	models  completion.Models
}

// New returns a provider configured from the environment.
func New() *Provider {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}

	return &Provider{
		apiKey:  apiKey,
		baseURL: os.Getenv("GEMINI_API_BASE_URL"),
		models:  DefaultModels.Clone(),
	}
}

// WithAPIKey sets the API key.
func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the SDK's endpoint.
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	p.baseURL = baseURL
	return p
}

// WithHTTPClient sets the HTTP client handed to the SDK.
func (p *Provider) WithHTTPClient(httpClient *http.Client) *Provider {
	p.client = httpClient
	return p
}

// WithModel maps tier to model.
func (p *Provider) WithModel(tier, model string) *Provider {
	p.models[tier] = model
	return p
}

func (p *Provider) newClient(ctx context.Context) (*genai.Client, error) {
	config := &genai.ClientConfig{
		APIKey:     p.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.client,
	}
	if p.baseURL != "" {
		config.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}
	return genai.NewClient(ctx, config)
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

	client, err := p.newClient(ctx)
	if err != nil {
		return "", &completion.Error{Kind: completion.ErrConfig, Provider: Name, Err: fmt.Errorf("failed to create GenAI client: %w", err)}
	}

	var temperature float32
	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", classify(err)
	}

	text := result.Text()
	if text == "" {
		return "", &completion.Error{Kind: completion.ErrUnavailable, Provider: Name, Err: fmt.Errorf("no text in response")}
	}
	return text, nil
}

// classify maps SDK errors onto completion sentinels by HTTP status.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return withCause(completion.FromStatus(Name, apiErr.Code, apiErr.Message), err)
	}
	return completion.Classify(Name, err)
}

func withCause(classified, cause error) error {
	var cerr *completion.Error
	if errors.As(classified, &cerr) {
		cerr.Err = cause
	}
	return classified
}
