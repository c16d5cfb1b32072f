package cli

import (
	"fmt"
	"io"
	"log/slog"

	"recipe-chat/internal/chat"
	"recipe-chat/internal/config"
	"recipe-chat/internal/generation"
	"recipe-chat/internal/llm"
	"recipe-chat/internal/logger"
)

// runtime holds what every session-driving command needs.
type runtime struct {
	cfg       config.Config
	logger    *slog.Logger
	profile   chat.Profile
	generator *generation.Client
	closeLog  func() error
}

// newRuntime loads config and builds the logger and generation client. Logs
// go to logOut unless log.file is set. model overrides every configured model;
// when it is empty and llm.model is unset, the profile's preferred model for
// the provider is used.
func newRuntime(logOut io.Writer, model string) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, closeLog, err := logger.New(cfg.LoggerOptions(), logOut)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)

	profile, err := chat.LookupProfile(cfg.Chat.Profile)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	if model == "" && !cfg.LLM.ModelConfigured() {
		model = profile.ModelFor(cfg.LLM.Type)
	}
	client, err := llm.NewClient(cfg.ClientConfig())
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("create llm client: %w", err)
	}
	generator, err := generation.NewClient(client,
		generation.WithModel(model),
		generation.WithLogger(log),
	)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	log.Debug("runtime ready", "llm_type", cfg.LLM.Type, "model", firstNonEmpty(model, cfg.LLM.Model), "profile", profile.Name)
	return &runtime{
		cfg:       cfg,
		logger:    log,
		profile:   profile,
		generator: generator,
		closeLog:  closeLog,
	}, nil
}

func (r *runtime) Close() error {
	return r.closeLog()
}
