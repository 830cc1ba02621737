package config

import (
	"net"
	"strings"
)

// Widget environments.
const (
	EnvAuto        = "auto"
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// ResolveEndpoint picks the chat endpoint for a widget served on host.
// An explicit endpoint wins, then an explicit environment; in auto mode
// loopback hosts use the development endpoint.
func (w WidgetConfig) ResolveEndpoint(host string) string {
	if ep := strings.TrimSpace(w.Endpoint); ep != "" {
		return ep
	}
	switch strings.ToLower(strings.TrimSpace(w.Environment)) {
	case EnvDevelopment, "dev":
		return w.Endpoints.Development
	case EnvProduction, "prod":
		return w.Endpoints.Production
	}
	if IsLocalHost(host) {
		return w.Endpoints.Development
	}
	return w.Endpoints.Production
}

// IsLocalHost reports whether host (optionally with a port) names the
// local machine.
func IsLocalHost(host string) bool {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
