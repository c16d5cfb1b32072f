package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	DefaultAnthropicURL   = "https://api.anthropic.com"
	DefaultAnthropicModel = "claude-3-5-haiku-latest"

	defaultAnthropicVersion   = "2023-06-01"
	defaultAnthropicMaxTokens = 1024
)

type AnthropicConfig struct {
	BaseURL    string
	Token      string
	Model      string
	Version    string
	MaxTokens  int
	HTTPClient *http.Client
}

type AnthropicClient struct {
	baseURL    string
	token      string
	model      string
	version    string
	maxTokens  int
	httpClient *http.Client
}

func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultAnthropicURL
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("anthropic token is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultAnthropicModel
	}
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = defaultAnthropicVersion
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &AnthropicClient{
		baseURL:    baseURL,
		token:      token,
		model:      model,
		version:    version,
		maxTokens:  maxTokens,
		httpClient: client,
	}, nil
}

// Chat sends the messages to the Messages API. The API has no response schema
// parameter, so a requested schema is appended to the system prompt.
func (c *AnthropicClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	messages, system := splitAnthropicMessages(req.Messages)
	if req.Schema != nil {
		instruction, err := anthropicSchemaInstruction(req.Schema)
		if err != nil {
			return ChatResponse{}, err
		}
		system = strings.TrimSpace(system + "\n\n" + instruction)
	}
	payload := anthropicChatRequest{
		Model:     c.resolveModel(req.Model),
		Messages:  messages,
		System:    system,
		MaxTokens: c.maxTokens,
	}
	var resp anthropicChatResponse
	if err := c.do(ctx, payload, &resp); err != nil {
		return ChatResponse{}, err
	}
	return ChatResponse{
		Content:      flattenAnthropicContent(resp.Content),
		Model:        resp.Model,
		FinishReason: resp.StopReason,
	}, nil
}

func (c *AnthropicClient) resolveModel(override string) string {
	if strings.TrimSpace(override) == "" {
		return c.model
	}
	return override
}

func (c *AnthropicClient) do(ctx context.Context, payload anthropicChatRequest, out *anthropicChatResponse) error {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	endpoint := buildAnthropicEndpoint(c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.token)
	httpReq.Header.Set("anthropic-version", c.version)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("anthropic request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return readAnthropicError(httpResp.Body, httpResp.StatusCode)
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return fmt.Errorf("anthropic error: %s", out.Error.Message)
	}
	return nil
}

func buildAnthropicEndpoint(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(base, "/v1") {
		return base + "/messages"
	}
	return base + "/v1/messages"
}

func readAnthropicError(body io.Reader, status int) error {
	var resp anthropicChatResponse
	_ = json.NewDecoder(body).Decode(&resp)
	if resp.Error != nil && resp.Error.Message != "" {
		return fmt.Errorf("anthropic request failed: %s (status %d)", resp.Error.Message, status)
	}
	return fmt.Errorf("anthropic request failed with status %d", status)
}

func anthropicSchemaInstruction(schema *Schema) (string, error) {
	data, err := json.Marshal(schema.JSONSchema())
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}
	return "Respond with JSON only, no prose or code fences, matching this JSON Schema:\n" + string(data), nil
}

func splitAnthropicMessages(messages []Message) ([]Message, string) {
	if len(messages) == 0 || messages[0].Role != "system" {
		return messages, ""
	}
	return messages[1:], messages[0].Content
}

func flattenAnthropicContent(blocks []anthropicContent) string {
	var builder strings.Builder
	for _, block := range blocks {
		if block.Type != "text" {
			continue
		}
		builder.WriteString(block.Text)
	}
	return builder.String()
}

type anthropicChatRequest struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	System    string    `json:"system,omitempty"`
	MaxTokens int       `json:"max_tokens"`
}

type anthropicChatResponse struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Content    []anthropicContent `json:"content"`
	StopReason string             `json:"stop_reason"`
	Error      *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
