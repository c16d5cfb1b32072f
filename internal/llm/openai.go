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
	DefaultOpenAIURL   = "https://api.openai.com"
	DefaultOpenAIModel = "gpt-4o-mini"

	openAISchemaName   = "structured_output"
	openAIWrappedField = "items"
)

type OpenAIConfig struct {
	BaseURL    string
	Token      string
	Model      string
	HTTPClient *http.Client
}

type OpenAIClient struct {
	baseURL    string
	token      string
	model      string
	httpClient *http.Client
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultOpenAIURL
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("openai token is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultOpenAIModel
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	return &OpenAIClient{
		baseURL:    baseURL,
		token:      token,
		model:      model,
		httpClient: client,
	}, nil
}

func (c *OpenAIClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	payload := openAIChatRequest{
		Model:    c.resolveModel(req.Model),
		Messages: req.Messages,
	}
	if req.Schema != nil {
		payload.ResponseFormat = newOpenAIResponseFormat(req.Schema)
	}
	var resp openAIChatResponse
	if err := c.do(ctx, payload, &resp); err != nil {
		return ChatResponse{}, err
	}
	if len(resp.Choices) == 0 {
		return ChatResponse{}, errors.New("openai response has no choices")
	}
	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return ChatResponse{}, fmt.Errorf("openai refused: %s", choice.Message.Refusal)
	}
	content := choice.Message.Content
	if req.Schema != nil && req.Schema.Type != TypeObject {
		content = unwrapOpenAIContent(content)
	}
	return ChatResponse{
		Content:      content,
		Model:        resp.Model,
		FinishReason: choice.FinishReason,
	}, nil
}

func (c *OpenAIClient) resolveModel(override string) string {
	if strings.TrimSpace(override) == "" {
		return c.model
	}
	return override
}

func (c *OpenAIClient) do(ctx context.Context, payload openAIChatRequest, out *openAIChatResponse) error {
	requestBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	endpoint := buildChatEndpoint(c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("openai request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < http.StatusOK || httpResp.StatusCode >= http.StatusMultipleChoices {
		return readOpenAIError(httpResp.Body, httpResp.StatusCode)
	}
	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return fmt.Errorf("openai error: %s", out.Error.Message)
	}
	return nil
}

func buildChatEndpoint(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

func readOpenAIError(body io.Reader, status int) error {
	var resp openAIChatResponse
	_ = json.NewDecoder(body).Decode(&resp)
	if resp.Error != nil && resp.Error.Message != "" {
		return fmt.Errorf("openai request failed: %s (status %d)", resp.Error.Message, status)
	}
	return fmt.Errorf("openai request failed with status %d", status)
}

// Structured outputs require an object at the root. Other schemas are wrapped
// in {"items": ...} and unwrapped again before the content is returned.
func newOpenAIResponseFormat(schema *Schema) *openAIResponseFormat {
	root := schema.JSONSchema()
	if schema.Type != TypeObject {
		root = map[string]any{
			"type":                 "object",
			"properties":           map[string]any{openAIWrappedField: root},
			"required":             []string{openAIWrappedField},
			"additionalProperties": false,
		}
	}
	return &openAIResponseFormat{
		Type: "json_schema",
		JSONSchema: &openAIJSONSchema{
			Name:   openAISchemaName,
			Strict: true,
			Schema: root,
		},
	}
}

// unwrapOpenAIContent returns the wrapped payload, or content unchanged when
// it is not a wrapper so the caller can diagnose it against the schema.
func unwrapOpenAIContent(content string) string {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &wrapper); err != nil {
		return content
	}
	inner, ok := wrapper[openAIWrappedField]
	if !ok {
		return content
	}
	return string(inner)
}

type openAIChatRequest struct {
	Model          string                `json:"model"`
	Messages       []Message             `json:"messages"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIResponseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *openAIJSONSchema `json:"json_schema,omitempty"`
}

type openAIJSONSchema struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Refusal string `json:"refusal,omitempty"`
}

type openAIChoice struct {
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIChatResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
