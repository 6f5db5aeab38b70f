package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/veigalabs/tonesentry/internal/app"
	"github.com/veigalabs/tonesentry/internal/config"
)

const version = "0.1.0"

func NewRoot(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "tonesentry",
		Short: "Tonesentry monitors workplace chat channels for toxic messages",
	}

	root.AddCommand(newServeCommand(logger))
	root.AddCommand(newVersionCommand())

	return root
}

func newServeCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server and moderation pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			runtime, err := app.New(cfg, logger)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runtime.Run(ctx)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
		},
	}
}
