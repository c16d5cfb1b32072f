package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"recipe-chat/internal/config"
	"recipe-chat/internal/llm"
	"recipe-chat/internal/recipe"

	"github.com/spf13/cobra"
)

// providerOverrides replace the configured provider settings for one call.
type providerOverrides struct {
	Type  string
	Model string
	URL   string
	Token string
}

func addProviderFlags(cmd *cobra.Command, o *providerOverrides) {
	cmd.Flags().StringVar(&o.Type, "type", "", "override provider type (gemini, openai, anthropics)")
	cmd.Flags().StringVar(&o.Model, "model", "", "override model name")
	cmd.Flags().StringVar(&o.URL, "url", "", "override base url")
	cmd.Flags().StringVar(&o.Token, "token", "", "override access token")
}

// clientConfig applies the overrides to cfg. Switching to another provider
// type drops the configured URL and model in favor of that provider's
// defaults.
func (o providerOverrides) clientConfig(cfg config.Config) llm.ClientConfig {
	base := cfg.ClientConfig()
	if o.Type != "" && o.Type != base.Type {
		base.BaseURL, base.Model = llm.ProviderDefaults(o.Type)
	}
	return llm.ClientConfig{
		Type:    firstNonEmpty(o.Type, base.Type),
		BaseURL: firstNonEmpty(o.URL, base.BaseURL),
		Token:   firstNonEmpty(o.Token, base.Token),
		Model:   firstNonEmpty(o.Model, base.Model),
	}
}

type llmChatOptions struct {
	providerOverrides
	Prompt string
	System string
	Recipe bool
}

func newLLMCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llm",
		Short: "Interact with LLM providers",
	}

	cmd.AddCommand(newLLMChatCmd())
	cmd.AddCommand(newLLMTestCmd())
	return cmd
}

func newLLMChatCmd() *cobra.Command {
	opts := &llmChatOptions{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send a raw prompt to the configured provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLLMChat(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Prompt, "prompt", "", "prompt content (read stdin if empty)")
	cmd.Flags().StringVar(&opts.System, "system", "", "system prompt")
	cmd.Flags().BoolVar(&opts.Recipe, "recipe-schema", false, "request output matching the recipe schema")
	addProviderFlags(cmd, &opts.providerOverrides)
	return cmd
}

func runLLMChat(cmd *cobra.Command, opts *llmChatOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	prompt := strings.TrimSpace(opts.Prompt)
	if prompt == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read prompt: %w", err)
		}
		prompt = strings.TrimSpace(string(data))
	}
	if prompt == "" {
		return errors.New("prompt is required")
	}

	client, err := llm.NewClient(opts.clientConfig(cfg))
	if err != nil {
		return err
	}

	req := llm.ChatRequest{
		Model:    opts.Model,
		Messages: buildMessages(opts.System, prompt),
	}
	if opts.Recipe {
		req.Schema = recipe.Schema()
	}

	resp, err := client.Chat(cmd.Context(), req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Content)
	return err
}

func newLLMTestCmd() *cobra.Command {
	opts := &providerOverrides{}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test LLM connectivity with config or flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLLMTest(cmd, opts)
		},
	}
	addProviderFlags(cmd, opts)
	return cmd
}

func runLLMTest(cmd *cobra.Command, opts *providerOverrides) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	clientCfg := opts.clientConfig(cfg)
	client, err := llm.NewClient(clientCfg)
	if err != nil {
		return err
	}

	resp, err := client.Chat(cmd.Context(), llm.ChatRequest{
		Model:    opts.Model,
		Messages: llm.UserPrompt("ping"),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", firstNonEmpty(clientCfg.Type, llm.ProviderGemini), err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Content)
	return err
}

func buildMessages(system, prompt string) []llm.Message {
	messages := make([]llm.Message, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, llm.Message{
			Role:    "system",
			Content: system,
		})
	}
	return append(messages, llm.UserPrompt(prompt)...)
}
