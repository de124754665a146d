package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/schema"
)

const (
	ProviderGoogleAI = "googleai"
	ProviderOllama   = "ollama"

	// AnalysisTemperature keeps repeated runs on the same input structurally stable.
	AnalysisTemperature = 0.2
)

// ClientConfig represents the configuration for the analysis client.
type ClientConfig struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string  // Ollama server URL
	Temperature float64 // used for chat sessions only
}

// Client issues structured-output requests to the document model. Provider
// clients are built on first use so a missing credential surfaces as a
// configuration error at request time.
type Client struct {
	config ClientConfig

	mu       sync.Mutex
	analysis llms.Model
	chat     llms.Model
}

type Option func(*Client)

// WithModel makes the client use m for both analysis and chat.
func WithModel(m llms.Model) Option {
	return func(c *Client) {
		c.analysis = m
		c.chat = m
	}
}

func NewClient(config ClientConfig, opts ...Option) (*Client, error) {
	if config.Provider == "" {
		config.Provider = ProviderGoogleAI
	}
	if config.Provider != ProviderGoogleAI && config.Provider != ProviderOllama {
		return nil, models.NewConfigurationError(fmt.Sprintf("unknown llm provider %q", config.Provider), nil)
	}
	if config.Model == "" {
		if config.Provider == ProviderOllama {
			config.Model = "mistral" // Default Ollama model
		} else {
			config.Model = "gemini-2.5-flash"
		}
	}
	if config.Temperature < 0 || config.Temperature > 1 {
		return nil, fmt.Errorf("temperature must be between 0 and 1")
	}
	if config.Temperature == 0 {
		config.Temperature = AnalysisTemperature
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434" // Default Ollama URL
	}

	c := &Client{config: config}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Config() ClientConfig {
	return c.config
}

// Analyze sends the rendered system instruction and the ingested content and
// returns the raw text payload of the first choice.
func (c *Client) Analyze(ctx context.Context, system string, content *models.Content) (string, error) {
	model, err := c.analysisModel(ctx)
	if err != nil {
		return "", err
	}

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		contentMessage(content),
	}

	resp, err := model.GenerateContent(ctx, messages,
		llms.WithTemperature(AnalysisTemperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		return "", models.NewTransportError("model request failed", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", models.NewTransportError("model returned no choices", nil)
	}

	return resp.Choices[0].Content, nil
}

// OpenSession starts a conversation grounded in an analyzed document.
func (c *Client) OpenSession(ctx context.Context, resultID, grounding, locale string) (*Session, error) {
	model, err := c.chatModel(ctx)
	if err != nil {
		return nil, err
	}
	return OpenSession(model, resultID, grounding, locale, llms.WithTemperature(c.config.Temperature)), nil
}

func contentMessage(content *models.Content) llms.MessageContent {
	if content.Kind == models.MediaImage {
		return llms.MessageContent{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextContent{Text: content.Instruction},
				llms.BinaryPart(content.MediaType, content.Binary),
			},
		}
	}
	return llms.TextParts(schema.ChatMessageTypeHuman, content.Text)
}

func (c *Client) analysisModel(ctx context.Context) (llms.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.analysis != nil {
		return c.analysis, nil
	}
	m, err := c.build(ctx, true)
	if err != nil {
		return nil, err
	}
	c.analysis = m
	return m, nil
}

func (c *Client) chatModel(ctx context.Context) (llms.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.chat != nil {
		return c.chat, nil
	}
	m, err := c.build(ctx, false)
	if err != nil {
		return nil, err
	}
	c.chat = m
	return m, nil
}

func (c *Client) build(ctx context.Context, jsonOutput bool) (llms.Model, error) {
	switch c.config.Provider {
	case ProviderOllama:
		opts := []ollama.Option{
			ollama.WithModel(c.config.Model),
			ollama.WithServerURL(c.config.BaseURL),
		}
		if jsonOutput {
			opts = append(opts, ollama.WithFormat("json"))
		}
		m, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize LLM: %w", err)
		}
		return m, nil
	default:
		if c.config.APIKey == "" {
			return nil, models.NewConfigurationError("GEMINI_API_KEY is not configured", nil)
		}
		m, err := googleai.New(ctx,
			googleai.WithAPIKey(c.config.APIKey),
			googleai.WithDefaultModel(c.config.Model),
		)
		if err != nil {
			return nil, models.NewConfigurationError("failed to initialize LLM", err)
		}
		return m, nil
	}
}
