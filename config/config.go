// Package config handles configuration loading and saving.
package config

import (
	"strings"
)

const (
	configFileName = "config.yaml"
	configDirName  = ".chatwidget"
)

var configDirOverride string

// SetConfigDir overrides the config directory for the current process.
// Empty value clears the override.
func SetConfigDir(dir string) {
	configDirOverride = strings.TrimSpace(dir)
}

// Config is the root configuration structure.
type Config struct {
	Widget    WidgetConfig    `json:"widget" yaml:"widget"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Responder ResponderConfig `json:"responder" yaml:"responder"`
	Logging   LoggingConfig   `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// WidgetConfig drives the chat sessions of every display surface.
type WidgetConfig struct {
	// Environment is auto, development or production. Auto picks
	// development for loopback hosts.
	Environment string `json:"environment,omitempty" yaml:"environment,omitempty" env:"CHATWIDGET_ENV"`
	// Endpoint, when set, wins over Environment.
	Endpoint  string          `json:"endpoint,omitempty" yaml:"endpoint,omitempty" env:"CHATWIDGET_ENDPOINT"`
	Endpoints EndpointsConfig `json:"endpoints" yaml:"endpoints"`

	RevealIntervalMs int    `json:"revealIntervalMs,omitempty" yaml:"revealIntervalMs,omitempty" env:"CHATWIDGET_REVEAL_INTERVAL_MS"` // defaults to 50
	MinTypingMs      int    `json:"minTypingMs,omitempty" yaml:"minTypingMs,omitempty" env:"CHATWIDGET_MIN_TYPING_MS"`                // defaults to 2000
	RequestTimeout   int    `json:"requestTimeout,omitempty" yaml:"requestTimeout,omitempty" env:"CHATWIDGET_REQUEST_TIMEOUT"`        // seconds, defaults to 30
	Greeting         string `json:"greeting,omitempty" yaml:"greeting,omitempty"`
}

// EndpointsConfig holds the endpoint of each environment.
type EndpointsConfig struct {
	Development string `json:"development" yaml:"development" env:"CHATWIDGET_ENDPOINT_DEVELOPMENT"`
	Production  string `json:"production" yaml:"production" env:"CHATWIDGET_ENDPOINT_PRODUCTION"`
}

// ServerConfig configures the chat backend and the widget page.
type ServerConfig struct {
	Addr           string          `json:"addr,omitempty" yaml:"addr,omitempty" env:"CHATWIDGET_ADDR"` // default: 127.0.0.1:8000
	AllowedOrigins []string        `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty" env:"CHATWIDGET_ALLOWED_ORIGINS" envSeparator:","`
	RateLimit      RateLimitConfig `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
	Metrics        *bool           `json:"metrics,omitempty" yaml:"metrics,omitempty"` // expose /metrics, default true
	Widget         *bool           `json:"widget,omitempty" yaml:"widget,omitempty"`   // serve the widget page and /ws, default true
}

// RateLimitConfig limits /chat requests per client address.
type RateLimitConfig struct {
	RPS   float64 `json:"rps,omitempty" yaml:"rps,omitempty" env:"CHATWIDGET_RATE_RPS"`
	Burst int     `json:"burst,omitempty" yaml:"burst,omitempty" env:"CHATWIDGET_RATE_BURST"`
}

// ResponderConfig selects the model that answers /chat requests.
type ResponderConfig struct {
	Provider       string  `json:"provider" yaml:"provider" env:"CHATWIDGET_PROVIDER"` // gemini, openai, deepseek, anthropic, echo
	ModelName      string  `json:"modelName,omitempty" yaml:"modelName,omitempty" env:"CHATWIDGET_MODEL"`
	APIKey         string  `json:"apiKey,omitempty" yaml:"apiKey,omitempty" env:"CHATWIDGET_API_KEY"`
	APIBase        string  `json:"apiBase,omitempty" yaml:"apiBase,omitempty" env:"CHATWIDGET_API_BASE"` // optional custom base URL
	MaxTokens      int     `json:"maxTokens,omitempty" yaml:"maxTokens,omitempty"`                     // defaults to 1024
	Temperature    float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`                 // defaults to 0.7
	SystemPrompt   string  `json:"systemPrompt,omitempty" yaml:"systemPrompt,omitempty"`
	HistoryFile    string  `json:"historyFile,omitempty" yaml:"historyFile,omitempty" env:"CHATWIDGET_HISTORY_FILE"` // seed conversation, JSON
	MaxInputTokens int     `json:"maxInputTokens,omitempty" yaml:"maxInputTokens,omitempty"`                         // defaults to 2000
	Timeout        int     `json:"timeout,omitempty" yaml:"timeout,omitempty"`                                       // seconds, defaults to 60
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Enabled    *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Level      string `json:"level,omitempty" yaml:"level,omitempty" env:"CHATWIDGET_LOG_LEVEL"` // debug, info, warn, error
	Stdout     bool   `json:"stdout,omitempty" yaml:"stdout,omitempty"`                          // log to stdout
	File       string `json:"file,omitempty" yaml:"file,omitempty"`                              // log file path
	MaxSizeMB  int    `json:"maxSizeMB,omitempty" yaml:"maxSizeMB,omitempty"`
	MaxBackups int    `json:"maxBackups,omitempty" yaml:"maxBackups,omitempty"`
	MaxAgeDays int    `json:"maxAgeDays,omitempty" yaml:"maxAgeDays,omitempty"`
}

// MetricsEnabled reports whether /metrics is served.
func (s ServerConfig) MetricsEnabled() bool {
	return s.Metrics == nil || *s.Metrics
}

// WidgetEnabled reports whether the widget page and websocket are served.
func (s ServerConfig) WidgetEnabled() bool {
	return s.Widget == nil || *s.Widget
}
