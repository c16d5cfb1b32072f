package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"recipe-chat/internal/chat"
	"recipe-chat/internal/llm"
	"recipe-chat/internal/logger"
)

const EnvPrefix = "RECIPE_CHAT"

type Config struct {
	LLM    LLMConfig    `mapstructure:"llm"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Chat   ChatConfig   `mapstructure:"chat"`
}

type LLMConfig struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
	Token string `mapstructure:"token"`
	Type  string `mapstructure:"type"`

	modelSet bool
}

// ModelConfigured reports whether llm.model came from configuration rather
// than the provider default.
func (c LLMConfig) ModelConfigured() bool {
	return c.modelSet
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Dev  bool   `mapstructure:"dev"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type ChatConfig struct {
	Profile string `mapstructure:"profile"`
}

// SetDefaults registers every key so that environment variables are picked
// up by Unmarshal even when no config file mentions them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.type", llm.ProviderGemini)
	// url and model depend on llm.type and are filled in by LoadFrom.
	v.SetDefault("llm.url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.token", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.dev", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatText)
	v.SetDefault("log.file", "")
	v.SetDefault("chat.profile", chat.ProfileRecipe)
}

// BindEnv maps RECIPE_CHAT_LLM_TOKEN style variables onto keys. The API key
// is also accepted from GEMINI_API_KEY.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("llm.token", EnvPrefix+"_LLM_TOKEN", "GEMINI_API_KEY")
}

func Load() (Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	cfg.LLM.applyProviderDefaults()
	return cfg, nil
}

func (c *LLMConfig) applyProviderDefaults() {
	if c.Type == "" {
		c.Type = llm.ProviderGemini
	}
	url, model := llm.ProviderDefaults(c.Type)
	if strings.TrimSpace(c.URL) == "" {
		c.URL = url
	}
	c.modelSet = strings.TrimSpace(c.Model) != ""
	if !c.modelSet {
		c.Model = model
	}
}

func (c Config) Validate() error {
	switch c.LLM.Type {
	case "", llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderGemini:
	default:
		return fmt.Errorf("invalid llm.type: %s", c.LLM.Type)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %s", c.Log.Level)
	}
	switch c.Log.Format {
	case "", logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("invalid log.format: %s", c.Log.Format)
	}
	if _, err := chat.LookupProfile(c.Chat.Profile); err != nil {
		return fmt.Errorf("invalid chat.profile: %s", c.Chat.Profile)
	}
	return nil
}

func (c Config) ClientConfig() llm.ClientConfig {
	return llm.ClientConfig{
		Type:    c.LLM.Type,
		BaseURL: c.LLM.URL,
		Token:   c.LLM.Token,
		Model:   c.LLM.Model,
	}
}

func (c Config) LoggerOptions() logger.Options {
	return logger.Options{
		Level:  c.Log.Level,
		Format: c.Log.Format,
		File:   c.Log.File,
	}
}
