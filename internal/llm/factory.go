package llm

import (
	"fmt"
	"net/http"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropics"
)

type ClientConfig struct {
	Type       string
	BaseURL    string
	Token      string
	Model      string
	HTTPClient *http.Client
}

// ProviderDefaults returns the base URL and model used for provider when the
// configuration leaves them empty.
func ProviderDefaults(provider string) (baseURL, model string) {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIURL, DefaultOpenAIModel
	case ProviderAnthropic:
		return DefaultAnthropicURL, DefaultAnthropicModel
	default:
		return DefaultGeminiURL, DefaultGeminiModel
	}
}

// NewClient builds the provider client selected by cfg.Type. An empty type
// selects Gemini.
func NewClient(cfg ClientConfig) (Client, error) {
	switch cfg.Type {
	case "", ProviderGemini:
		return NewGeminiClient(GeminiConfig{
			BaseURL:    cfg.BaseURL,
			Token:      cfg.Token,
			Model:      cfg.Model,
			HTTPClient: cfg.HTTPClient,
		})
	case ProviderOpenAI:
		return NewOpenAIClient(OpenAIConfig{
			BaseURL:    cfg.BaseURL,
			Token:      cfg.Token,
			Model:      cfg.Model,
			HTTPClient: cfg.HTTPClient,
		})
	case ProviderAnthropic:
		return NewAnthropicClient(AnthropicConfig{
			BaseURL:    cfg.BaseURL,
			Token:      cfg.Token,
			Model:      cfg.Model,
			HTTPClient: cfg.HTTPClient,
		})
	default:
		return nil, fmt.Errorf("unsupported llm.type: %s", cfg.Type)
	}
}
