package config

import "time"

const (
	defaultEnvironment      = EnvAuto
	defaultDevEndpoint      = "http://127.0.0.1:8000/chat"
	defaultProdEndpoint     = "https://your-production-api.com/api/chat"
	defaultRevealIntervalMs = 50
	defaultMinTypingMs      = 2000
	defaultRequestTimeout   = 30
	defaultGreeting         = "Hello! I'm CICR Assistant. How can I help you today?"

	defaultAddr      = "127.0.0.1:8000"
	defaultRateRPS   = 2
	defaultRateBurst = 5

	defaultProvider        = "gemini"
	defaultModelName       = "gemini-2.0-flash-lite"
	defaultMaxTokens       = 1024
	defaultTemperature     = 0.7
	defaultMaxInputTokens  = 2000
	defaultProviderTimeout = 60
	defaultSystemPrompt    = "You are CICR Assistant, the helpful chat assistant of the CICR website. " +
		"Answer briefly. You may use markdown: **bold**, *italic*, lists, tables and `code`."
)

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Widget: WidgetConfig{
			Environment: defaultEnvironment,
			Endpoints: EndpointsConfig{
				Development: defaultDevEndpoint,
				Production:  defaultProdEndpoint,
			},
			RevealIntervalMs: defaultRevealIntervalMs,
			MinTypingMs:      defaultMinTypingMs,
			RequestTimeout:   defaultRequestTimeout,
			Greeting:         defaultGreeting,
		},
		Server: ServerConfig{
			Addr:           defaultAddr,
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				RPS:   defaultRateRPS,
				Burst: defaultRateBurst,
			},
		},
		Responder: ResponderConfig{
			Provider:       defaultProvider,
			ModelName:      defaultModelName,
			MaxTokens:      defaultMaxTokens,
			Temperature:    defaultTemperature,
			SystemPrompt:   defaultSystemPrompt,
			MaxInputTokens: defaultMaxInputTokens,
			Timeout:        defaultProviderTimeout,
		},
		Logging: defaultLoggingConfig(),
	}
}

func defaultLoggingConfig() LoggingConfig {
	enabled := true
	return LoggingConfig{
		Enabled:    &enabled,
		Level:      "info",
		File:       "logs/chatwidget.log",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 14,
	}
}

func (c *Config) applyDefaults() {
	w := &c.Widget
	if w.Environment == "" {
		w.Environment = defaultEnvironment
	}
	if w.Endpoints.Development == "" {
		w.Endpoints.Development = defaultDevEndpoint
	}
	if w.Endpoints.Production == "" {
		w.Endpoints.Production = defaultProdEndpoint
	}
	if w.RevealIntervalMs <= 0 {
		w.RevealIntervalMs = defaultRevealIntervalMs
	}
	if w.MinTypingMs <= 0 {
		w.MinTypingMs = defaultMinTypingMs
	}
	if w.RequestTimeout <= 0 {
		w.RequestTimeout = defaultRequestTimeout
	}

	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Server.RateLimit.RPS <= 0 {
		c.Server.RateLimit.RPS = defaultRateRPS
	}
	if c.Server.RateLimit.Burst <= 0 {
		c.Server.RateLimit.Burst = defaultRateBurst
	}

	r := &c.Responder
	if r.Provider == "" {
		r.Provider = defaultProvider
	}
	if r.MaxTokens <= 0 {
		r.MaxTokens = defaultMaxTokens
	}
	if r.Temperature == 0 {
		r.Temperature = defaultTemperature
	}
	if r.SystemPrompt == "" {
		r.SystemPrompt = defaultSystemPrompt
	}
	if r.MaxInputTokens <= 0 {
		r.MaxInputTokens = defaultMaxInputTokens
	}
	if r.Timeout <= 0 {
		r.Timeout = defaultProviderTimeout
	}

	def := defaultLoggingConfig()
	if c.Logging == (LoggingConfig{}) {
		c.Logging = def
		return
	}
	hasAny := c.Logging.Level != "" || c.Logging.File != "" || c.Logging.Stdout
	if c.Logging.Enabled == nil && hasAny {
		enabled := true
		c.Logging.Enabled = &enabled
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Level
	}
	if c.Logging.File == "" && !c.Logging.Stdout {
		c.Logging.File = def.File
	}
	if c.Logging.Enabled == nil {
		c.Logging.Enabled = def.Enabled
	}
}

// RevealInterval returns the per-character reveal delay.
func (w WidgetConfig) RevealInterval() time.Duration {
	return time.Duration(w.RevealIntervalMs) * time.Millisecond
}

// MinTyping returns the minimum typing indicator duration.
func (w WidgetConfig) MinTyping() time.Duration {
	return time.Duration(w.MinTypingMs) * time.Millisecond
}

// Timeout returns the endpoint request timeout.
func (w WidgetConfig) Timeout() time.Duration {
	return time.Duration(w.RequestTimeout) * time.Second
}
