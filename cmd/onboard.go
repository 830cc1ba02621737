package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/linanwx/chatwidget/config"
	"github.com/linanwx/chatwidget/provider"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize chatwidget configuration",
	Long:  `Create the chatwidget configuration directory and config file.`,
	RunE:  runOnboard,
}

func init() {
	rootCmd.AddCommand(onboardCmd)
}

// providerURLs maps provider names to their API key portal URLs.
var providerURLs = map[string]string{
	"gemini":     "https://aistudio.google.com/apikey",
	"openai":     "https://platform.openai.com/api-keys",
	"deepseek":   "https://platform.deepseek.com",
	"openrouter": "https://openrouter.ai/keys",
	"anthropic":  "https://console.anthropic.com",
}

func runOnboard(_ *cobra.Command, _ []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(configPath); err == nil {
		fmt.Println("Config already exists at:", configPath)
		fmt.Println("To reconfigure, edit the file directly or delete it first.")
		return nil
	}

	// --- interactive wizard ---

	var (
		selectedProvider string
		selectedModel    string
		apiKey           string
		environment      = config.EnvAuto
		prodEndpoint     string
	)

	// Step 1: select provider
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose the model provider that answers /chat").
				Description("echo needs no API key and is handy for trying the widget.").
				Options(buildProviderOptions()...).
				Value(&selectedProvider),
		),
	).Run()
	if err != nil {
		return err
	}

	// Step 2: select model (dynamic based on provider)
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Choose model for "+selectedProvider).
				Description("The first option is the recommended default.").
				Options(buildModelOptions(selectedProvider)...).
				Value(&selectedModel),
		),
	).Run()
	if err != nil {
		return err
	}

	// Step 3: API key
	if envKey := provider.EnvKeyForProvider(selectedProvider); envKey != "" {
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Enter your "+selectedProvider+" API key").
					Description("Create one at "+providerURLs[selectedProvider]+". Leave empty to use $"+envKey+".").
					EchoMode(huh.EchoModePassword).
					Value(&apiKey),
			),
		).Run()
		if err != nil {
			return err
		}
	}

	// Step 4: widget endpoint
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Widget environment").
				Description("auto uses the development endpoint when the page is served from localhost.").
				Options(
					huh.NewOption("auto", config.EnvAuto),
					huh.NewOption("development", config.EnvDevelopment),
					huh.NewOption("production", config.EnvProduction),
				).
				Value(&environment),
			huh.NewInput().
				Title("Production endpoint").
				Description("Leave empty to keep the default.").
				Validate(validateEndpoint).
				Value(&prodEndpoint),
		),
	).Run()
	if err != nil {
		return err
	}

	// --- apply config ---

	cfg := config.DefaultConfig()
	cfg.Responder.Provider = selectedProvider
	cfg.Responder.ModelName = selectedModel
	cfg.Responder.APIKey = strings.TrimSpace(apiKey)
	cfg.Widget.Environment = environment
	if ep := strings.TrimSpace(prodEndpoint); ep != "" {
		cfg.Widget.Endpoints.Production = ep
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("chatwidget initialized successfully!")
	fmt.Println()
	fmt.Println("  Config:", configPath)
	fmt.Println("  Provider:", selectedProvider)
	fmt.Println("  Model:", selectedModel)
	fmt.Println("  Environment:", environment)
	fmt.Println()
	fmt.Println("Run 'chatwidget serve' to start.")
	return nil
}

func buildProviderOptions() []huh.Option[string] {
	names := provider.SupportedProviders()
	// Put gemini first.
	sorted := make([]string, 0, len(names))
	for _, n := range names {
		if n == "gemini" {
			sorted = append([]string{n}, sorted...)
		} else {
			sorted = append(sorted, n)
		}
	}
	options := make([]huh.Option[string], 0, len(sorted))
	for _, name := range sorted {
		models := provider.SupportedModelsForProvider(name)
		label := name + " (" + strings.Join(models, ", ") + ")"
		if name == "gemini" {
			label += " [Recommended]"
		}
		options = append(options, huh.NewOption(label, name))
	}
	return options
}

func buildModelOptions(providerName string) []huh.Option[string] {
	models := provider.SupportedModelsForProvider(providerName)
	options := make([]huh.Option[string], 0, len(models))
	for _, m := range models {
		options = append(options, huh.NewOption(m, m))
	}
	return options
}

func validateEndpoint(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter an http(s) URL")
	}
	return nil
}
