// Package gemini suggests expense categories using the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// ModelName is the default model used for category suggestions.
const ModelName = "gemini-2.5-flash"

// ErrNoAPIKey is returned by NewClient without an API key.
var ErrNoAPIKey = errors.New("gemini API key is required")

// ContentGenerator is the slice of the genai SDK the client calls. Tests
// substitute a fake.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// sdkGenerator adapts *genai.Models to ContentGenerator.
type sdkGenerator struct {
	models *genai.Models
}

func (g sdkGenerator) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	resp, err := g.models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("genai.GenerateContent: %w", err)
	}
	return resp, nil
}

// Client suggests categories through a ContentGenerator.
type Client struct {
	generator ContentGenerator
	model     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithModel overrides ModelName. An empty name keeps the default.
func WithModel(name string) ClientOption {
	return func(c *Client) {
		if name != "" {
			c.model = name
		}
	}
}

// NewClient creates a Client backed by the Gemini API. A nil httpClient
// uses the SDK default.
func NewClient(ctx context.Context, apiKey string, httpClient *http.Client, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return NewClientWithGenerator(sdkGenerator{models: sdk.Models}, opts...), nil
}

// NewClientWithGenerator creates a Client over generator.
func NewClientWithGenerator(generator ContentGenerator, opts ...ClientOption) *Client {
	c := &Client{generator: generator, model: ModelName}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}
