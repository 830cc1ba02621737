package config

import "github.com/linanwx/chatwidget/logger"

// BuildLoggerConfig converts the logging section into logger settings.
func (c *Config) BuildLoggerConfig() logger.Config {
	l := c.Logging
	enabled := l.Enabled == nil || *l.Enabled
	return logger.Config{
		Enabled:    enabled,
		Level:      l.Level,
		Stdout:     l.Stdout,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
	}
}
