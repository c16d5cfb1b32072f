package cli

import (
	"errors"
	"fmt"
	"os"

	"recipe-chat/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Options struct {
	Config   string
	Profile  string
	LogLevel string
}

func NewRootCmd() *cobra.Command {
	opts := &Options{}
	root := &cobra.Command{
		Use:           "recipe-chat",
		Short:         "recipe-chat - turn leftover ingredients into recipes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cobra.OnInitialize(func() {
		initConfig(opts.Config)
	})

	root.PersistentFlags().StringVar(
		&opts.Config,
		"config",
		"",
		"config file (default: ./recipe-chat.yaml)",
	)
	root.PersistentFlags().StringVar(&opts.Profile, "profile", "", "chat profile (recipe, story or text)")
	root.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("chat.profile", root.PersistentFlags().Lookup("profile"))
	_ = viper.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newVersionCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newChatCmd())
	root.AddCommand(newAskCmd())
	root.AddCommand(newLLMCmd())
	return root
}

func initConfig(configFile string) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("recipe-chat")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/recipe-chat")
	}

	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return
		}
		fmt.Fprintln(os.Stderr, err.Error())
	}
}
