package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linanwx/chatwidget/channel"
	"github.com/linanwx/chatwidget/config"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a /chat endpoint in the terminal",
	Long: `Open a chat session against the configured endpoint. Replies are
revealed as they would be in the widget.

Type /endpoint to show the endpoint, /endpoint <url> to switch it, and
/quit to leave.

Examples:
  chatwidget chat
  chatwidget chat --env production
  chatwidget chat --endpoint http://localhost:9000/chat`,
	RunE: runChat,
}

var (
	chatEndpoint string
	chatEnv      string
)

func init() {
	chatCmd.Flags().StringVar(&chatEndpoint, "endpoint", "", "Chat endpoint URL (overrides widget.endpoint)")
	chatCmd.Flags().StringVar(&chatEnv, "env", "", "Environment: auto, development or production")
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyWidgetOverrides(&cfg.Widget, chatEndpoint, chatEnv)

	term := channel.NewCLIChannel(channel.NewSessions(cfg.Widget))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := term.Start(ctx); err != nil {
		return err
	}
	select {
	case <-term.Done():
	case <-ctx.Done():
	}
	return term.Stop()
}

func applyWidgetOverrides(w *config.WidgetConfig, endpoint, env string) {
	if endpoint != "" {
		w.Endpoint = endpoint
	}
	if env != "" {
		w.Environment = env
		if endpoint == "" {
			// An explicit environment beats a configured endpoint.
			w.Endpoint = ""
		}
	}
}
