package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer token" {
			t.Fatalf("missing bearer token")
		}
		var req openAIChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-test" {
			t.Fatalf("unexpected model: %s", req.Model)
		}
		if req.ResponseFormat != nil {
			t.Fatalf("unexpected response format: %+v", req.ResponseFormat)
		}
		resp := openAIChatResponse{
			Model: "gpt-test",
			Choices: []openAIChoice{
				{
					Message:      openAIMessage{Role: "assistant", Content: "hello"},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewOpenAIClient(OpenAIConfig{
		BaseURL: server.URL,
		Token:   "token",
		Model:   "gpt-test",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	resp, err := client.Chat(context.Background(), ChatRequest{
		Messages: UserPrompt("hi"),
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Content != "hello" {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if resp.FinishReason != "stop" {
		t.Fatalf("unexpected finish reason: %s", resp.FinishReason)
	}
}

func TestOpenAIChatWithArraySchema(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req openAIChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
			t.Fatalf("unexpected response format: %+v", req.ResponseFormat)
		}
		root := req.ResponseFormat.JSONSchema.Schema
		if root["type"] != "object" {
			t.Fatalf("expected wrapped object root, got %v", root["type"])
		}
		props, _ := root["properties"].(map[string]any)
		items, _ := props["items"].(map[string]any)
		if items["type"] != "array" {
			t.Fatalf("unexpected wrapped schema: %v", items)
		}
		resp := openAIChatResponse{
			Choices: []openAIChoice{
				{Message: openAIMessage{Role: "assistant", Content: `{"items":["a","b"]}`}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, Token: "token", Model: "gpt-test"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	resp, err := client.Chat(context.Background(), ChatRequest{
		Messages: UserPrompt("list"),
		Schema:   &Schema{Type: TypeArray, Items: &Schema{Type: TypeString}},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if resp.Content != `["a","b"]` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
}

func TestOpenAIChatRefusal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"","refusal":"no"}}]}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, Token: "token", Model: "gpt-test"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Chat(context.Background(), ChatRequest{Messages: UserPrompt("hi")}); err == nil {
		t.Fatalf("expected refusal error")
	}
}

func TestBuildChatEndpoint(t *testing.T) {
	if got := buildChatEndpoint("https://api.example.com/v1/"); got != "https://api.example.com/v1/chat/completions" {
		t.Fatalf("unexpected endpoint: %s", got)
	}
	if got := buildChatEndpoint("https://api.example.com"); got != "https://api.example.com/v1/chat/completions" {
		t.Fatalf("unexpected endpoint: %s", got)
	}
}

func TestOpenAIChatWithArraySchemaUnwrappedReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openAIChatResponse{
			Choices: []openAIChoice{
				{Message: openAIMessage{Role: "assistant", Content: `{"recipes":["a"]}`}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewOpenAIClient(OpenAIConfig{BaseURL: server.URL, Token: "token", Model: "gpt-test"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	resp, err := client.Chat(context.Background(), ChatRequest{
		Messages: UserPrompt("list"),
		Schema:   &Schema{Type: TypeArray, Items: &Schema{Type: TypeString}},
	})
	if err != nil {
		t.Fatalf("chat should pass unexpected payloads through: %v", err)
	}
	if resp.Content != `{"recipes":["a"]}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
}

func TestNewOpenAIClientDefaults(t *testing.T) {
	client, err := NewOpenAIClient(OpenAIConfig{Token: "token"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.baseURL != DefaultOpenAIURL || client.model != DefaultOpenAIModel {
		t.Fatalf("unexpected defaults: %s %s", client.baseURL, client.model)
	}
}
