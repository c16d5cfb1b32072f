package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recipe-chat/internal/config"
	"recipe-chat/internal/llm"
)

func TestBuildMessages(t *testing.T) {
	messages := buildMessages("be brief", "hi")
	if len(messages) != 2 || messages[0].Role != "system" || messages[1].Role != "user" || messages[1].Content != "hi" {
		t.Fatalf("unexpected messages: %+v", messages)
	}
	if messages := buildMessages("  ", "hi"); len(messages) != 1 {
		t.Fatalf("blank system prompt kept: %+v", messages)
	}
}

func TestProviderOverrides(t *testing.T) {
	var cfg config.Config
	cfg.LLM.Type = "gemini"
	cfg.LLM.URL = "https://example.com"
	cfg.LLM.Token = "config-token"
	cfg.LLM.Model = "config-model"

	got := providerOverrides{Model: "flag-model", Token: "flag-token"}.clientConfig(cfg)
	if got.Type != "gemini" || got.BaseURL != "https://example.com" {
		t.Fatalf("unexpected base settings: %+v", got)
	}
	if got.Model != "flag-model" || got.Token != "flag-token" {
		t.Fatalf("overrides not applied: %+v", got)
	}
}

func TestProviderTypeOverrideUsesProviderDefaults(t *testing.T) {
	var cfg config.Config
	cfg.LLM.Type = "gemini"
	cfg.LLM.URL = "https://generativelanguage.googleapis.com"
	cfg.LLM.Model = "gemini-1.5-pro"

	got := providerOverrides{Type: "openai"}.clientConfig(cfg)
	if got.BaseURL != llm.DefaultOpenAIURL || got.Model != llm.DefaultOpenAIModel {
		t.Fatalf("expected openai defaults, got %+v", got)
	}

	got = providerOverrides{Type: "anthropics", URL: "http://localhost:9000", Model: "local"}.clientConfig(cfg)
	if got.BaseURL != "http://localhost:9000" || got.Model != "local" {
		t.Fatalf("flags must win over provider defaults: %+v", got)
	}

	got = providerOverrides{Type: "gemini"}.clientConfig(cfg)
	if got.BaseURL != cfg.LLM.URL || got.Model != cfg.LLM.Model {
		t.Fatalf("same type must keep configured settings: %+v", got)
	}
}

func TestLLMTestCommand(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "pong"}}}},
			},
		})
	}))
	defer server.Close()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"llm", "test", "--type", "gemini", "--url", server.URL, "--token", "test-key", "--model", "gemini-test"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != "pong" {
		t.Fatalf("output = %q", out.String())
	}
	if gotPath != "/v1beta/models/gemini-test:generateContent" || gotKey != "test-key" {
		t.Fatalf("unexpected request: path=%q key=%q", gotPath, gotKey)
	}
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != "dev" {
		t.Fatalf("version = %q", out.String())
	}
}
