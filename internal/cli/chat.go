package cli

import (
	"fmt"

	"recipe-chat/internal/chat"
	"recipe-chat/internal/tui"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// The terminal belongs to the UI, so chat logs to a file.
const defaultChatLogPath = "/tmp/recipe-chat.log"

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd)
		},
	}
}

func runChat(cmd *cobra.Command) error {
	if viper.GetString("log.file") == "" {
		viper.Set("log.file", defaultChatLogPath)
	}
	rt, err := newRuntime(nil, "")
	if err != nil {
		return err
	}
	defer rt.Close()

	session := chat.NewSession(rt.profile, rt.generator,
		chat.WithID(uuid.NewString()),
		chat.WithLogger(rt.logger),
	)
	rt.logger.Info("terminal chat started", "session_id", session.ID())

	p := tea.NewProgram(tui.New(cmd.Context(), session))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running chat: %w", err)
	}
	return nil
}
