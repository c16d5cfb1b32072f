package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(newTestViper(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Type != "gemini" {
		t.Fatalf("unexpected llm.type: %s", cfg.LLM.Type)
	}
	if cfg.LLM.Model != "gemini-1.5-pro" {
		t.Fatalf("unexpected llm.model: %s", cfg.LLM.Model)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected server.addr: %s", cfg.Server.Addr)
	}
	if cfg.Chat.Profile != "recipe" {
		t.Fatalf("unexpected chat.profile: %s", cfg.Chat.Profile)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RECIPE_CHAT_LLM_TOKEN", "secret")
	t.Setenv("RECIPE_CHAT_SERVER_ADDR", ":9090")
	t.Setenv("RECIPE_CHAT_CHAT_PROFILE", "text")

	cfg, err := LoadFrom(newTestViper(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Token != "secret" {
		t.Fatalf("unexpected token: %q", cfg.LLM.Token)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.Chat.Profile != "text" {
		t.Fatalf("unexpected profile: %s", cfg.Chat.Profile)
	}
}

func TestLoadTokenFromGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-gemini")

	cfg, err := LoadFrom(newTestViper(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Token != "from-gemini" {
		t.Fatalf("unexpected token: %q", cfg.LLM.Token)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe-chat.yaml")
	data := []byte("llm:\n  type: openai\n  url: https://api.openai.com\n  model: gpt-4o-mini\nlog:\n  format: json\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	v := newTestViper(t)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("read config: %v", err)
	}

	cfg, err := LoadFrom(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Type != "openai" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected llm config: %+v", cfg.LLM)
	}
	if cfg.Log.Format != "json" {
		t.Fatalf("unexpected log format: %s", cfg.Log.Format)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		LLM:    LLMConfig{Type: "gemini"},
		Server: ServerConfig{Addr: ":8080"},
		Chat:   ChatConfig{Profile: "recipe"},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]func(c *Config){
		"llm type":    func(c *Config) { c.LLM.Type = "cohere" },
		"server addr": func(c *Config) { c.Server.Addr = " " },
		"log level":   func(c *Config) { c.Log.Level = "loud" },
		"log format":  func(c *Config) { c.Log.Format = "xml" },
		"profile":     func(c *Config) { c.Chat.Profile = "poetry" },
	}
	for name, mutate := range tests {
		cfg := valid
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadProviderDefaultsFollowType(t *testing.T) {
	tests := []struct {
		provider string
		url      string
		model    string
	}{
		{provider: "gemini", url: "https://generativelanguage.googleapis.com", model: "gemini-1.5-pro"},
		{provider: "openai", url: "https://api.openai.com", model: "gpt-4o-mini"},
		{provider: "anthropics", url: "https://api.anthropic.com", model: "claude-3-5-haiku-latest"},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			v := newTestViper(t)
			v.Set("llm.type", tt.provider)
			cfg, err := LoadFrom(v)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if cfg.LLM.URL != tt.url || cfg.LLM.Model != tt.model {
				t.Fatalf("unexpected defaults for %s: url=%s model=%s", tt.provider, cfg.LLM.URL, cfg.LLM.Model)
			}
			if cfg.LLM.ModelConfigured() {
				t.Fatalf("default model reported as configured")
			}
		})
	}
}

func TestLoadKeepsConfiguredURLAndModel(t *testing.T) {
	t.Setenv("RECIPE_CHAT_LLM_TYPE", "openai")
	t.Setenv("RECIPE_CHAT_LLM_URL", "http://localhost:11434/v1")
	t.Setenv("RECIPE_CHAT_LLM_MODEL", "llama3")

	cfg, err := LoadFrom(newTestViper(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.URL != "http://localhost:11434/v1" || cfg.LLM.Model != "llama3" {
		t.Fatalf("configured values replaced: %+v", cfg.LLM)
	}
	if !cfg.LLM.ModelConfigured() {
		t.Fatalf("configured model not reported")
	}
}
