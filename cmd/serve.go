package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/linanwx/chatwidget/channel"
	"github.com/linanwx/chatwidget/config"
	"github.com/linanwx/chatwidget/logger"
	"github.com/linanwx/chatwidget/provider"
	"github.com/linanwx/chatwidget/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat backend and the web widget",
	Long: `Start the /chat backend. Unless disabled in config, the widget page is
served on / and its websocket on /ws.

Examples:
  chatwidget serve                          # Backend + widget
  chatwidget serve --addr 0.0.0.0:8080      # Listen on all interfaces
  chatwidget serve --provider echo          # No model needed
  chatwidget serve --cli                    # Also chat in this terminal`,
	RunE: runServe,
}

var (
	serveAddr     string
	serveProvider string
	serveModel    string
	serveCLI      bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveProvider, "provider", "", "Override provider ("+strings.Join(provider.SupportedProviders(), ", ")+")")
	serveCmd.Flags().StringVar(&serveModel, "model", "", "Override model name")
	serveCmd.Flags().BoolVar(&serveCLI, "cli", false, "Also chat with the widget session in this terminal")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveProvider != "" {
		cfg.Responder.Provider = serveProvider
		cfg.Responder.ModelName = serveModel
	} else if serveModel != "" {
		cfg.Responder.ModelName = serveModel
	}

	responder, err := buildResponder(cfg.Responder)
	if err != nil {
		return err
	}
	srv := server.New(cfg.Server, responder)

	manager := channel.NewManager()
	sessions := channel.NewSessions(cfg.Widget)
	if cfg.Server.WidgetEnabled() {
		web := channel.NewWebChannel(sessions,
			channel.WithAllowedOrigins(cfg.Server.AllowedOrigins),
			channel.WithSessionObserver(srv),
		)
		srv.Mount("GET /{$}", web.PageHandler())
		srv.Mount("GET /index.html", web.PageHandler())
		srv.Mount("GET /ws", web.SocketHandler())
		manager.Register(web)
	}
	var term channel.TerminalChannel
	if serveCLI {
		term = channel.NewCLIChannel(sessions)
		manager.Register(term)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if term != nil {
		// Leaving the terminal chat stops the service.
		var cancel context.CancelFunc
		ctx, cancel = context.WithCancel(ctx)
		defer cancel()
		go func() {
			select {
			case <-term.Done():
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	if err := manager.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start channels: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		if err := manager.StopAll(); err != nil {
			logger.Error("error stopping channels", "err", err)
		}
		return nil
	})

	logger.Info("chatwidget service started", "addr", cfg.Server.Addr, "provider", cfg.Responder.Provider)
	if term == nil {
		fmt.Printf("chatwidget is listening on http://%s. Press Ctrl+C to stop.\n", cfg.Server.Addr)
	}
	err = g.Wait()
	logger.Info("chatwidget service stopped")
	return err
}

func buildResponder(rc config.ResponderConfig) (*server.Responder, error) {
	p, err := provider.New(rc.Provider, provider.Settings{
		APIKey:      rc.APIKey,
		APIBase:     rc.APIBase,
		ModelName:   rc.ModelName,
		MaxTokens:   rc.MaxTokens,
		Temperature: rc.Temperature,
	})
	if err != nil {
		return nil, err
	}
	history, err := server.LoadHistory(resolveConfigPath(rc.HistoryFile))
	if err != nil {
		return nil, err
	}
	if len(history) > 0 {
		logger.Info("seed history loaded", "messages", len(history))
	}
	return server.NewResponder(p, server.ResponderOptions{
		ProviderName:   rc.Provider,
		ModelName:      rc.ModelName,
		SystemPrompt:   rc.SystemPrompt,
		History:        history,
		MaxInputTokens: rc.MaxInputTokens,
		Timeout:        time.Duration(rc.Timeout) * time.Second,
	})
}

// resolveConfigPath makes a relative path relative to the config dir.
func resolveConfigPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	dir, err := config.ConfigDir()
	if err != nil {
		return path
	}
	return filepath.Join(dir, path)
}
