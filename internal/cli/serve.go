package cli

import (
	"os"
	"os/signal"
	"syscall"

	"recipe-chat/internal/chat"
	"recipe-chat/internal/web"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type serveOptions struct {
	Addr string
	Dev  bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat page over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "development mode: insecure cookies, any websocket origin")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.dev", cmd.Flags().Lookup("dev"))
	return cmd
}

func runServe(cmd *cobra.Command) error {
	rt, err := newRuntime(cmd.ErrOrStderr(), "")
	if err != nil {
		return err
	}
	defer rt.Close()

	store := chat.NewStore(rt.profile, rt.generator, rt.logger)
	srv, err := web.NewServer(store,
		web.WithLogger(rt.logger),
		web.WithDev(rt.cfg.Server.Dev),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, rt.cfg.Server.Addr)
}
