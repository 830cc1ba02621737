package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linanwx/chatwidget/client"
	"github.com/linanwx/chatwidget/config"
	"github.com/linanwx/chatwidget/markdown"
)

var sendCmd = &cobra.Command{
	Use:     "send [message]",
	Short:   "Send one message to the chat endpoint and print the reply",
	GroupID: "internal",
	Args:    cobra.ArbitraryArgs,
	RunE:    runSend,
}

var (
	sendText     string
	sendHTML     bool
	sendEndpoint string
	sendEnv      string
)

func init() {
	sendCmd.Flags().StringVar(&sendText, "text", "", "Message text (or pass it as arguments)")
	sendCmd.Flags().BoolVar(&sendHTML, "html", false, "Print the reply rendered as HTML")
	sendCmd.Flags().StringVar(&sendEndpoint, "endpoint", "", "Chat endpoint URL (overrides widget.endpoint)")
	sendCmd.Flags().StringVar(&sendEnv, "env", "", "Environment: auto, development or production")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(sendText)
	if text == "" {
		text = strings.TrimSpace(strings.Join(args, " "))
	}
	if text == "" {
		return fmt.Errorf("message is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyWidgetOverrides(&cfg.Widget, sendEndpoint, sendEnv)

	c := client.New(cfg.Widget.ResolveEndpoint("localhost"), client.WithHTTPClient(client.NewHTTPClient(cfg.Widget.Timeout())))
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Widget.Timeout())
	defer cancel()

	reply, err := c.Ask(ctx, text)
	if err != nil {
		return fmt.Errorf("send to %s: %w", c.Endpoint(), err)
	}
	out := cmd.OutOrStdout()
	if sendHTML {
		fmt.Fprintln(out, markdown.Render(reply))
		return nil
	}
	fmt.Fprintln(out, reply)
	return nil
}
