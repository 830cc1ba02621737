// Package client posts user messages to a chat endpoint and extracts the
// reply text.
//
// Wire format:
//
//	request:  {"message": "...", "timestamp": "2024-01-02T15:04:05.000Z"}
//	response: {"response": "..."} or {"message": "..."}
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DefaultReply is used when a well-formed response carries no reply text.
const DefaultReply = "Sorry, I didn't understand that."

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// ErrMalformedResponse is returned when the response body is not JSON.
var ErrMalformedResponse = errors.New("malformed response body")

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("endpoint returned HTTP %d", e.Code)
	}
	return fmt.Sprintf("endpoint returned HTTP %d: %s", e.Code, e.Body)
}

// ClientHeader names the end user a relayed request is made for. Servers
// trust it only from loopback peers.
const ClientHeader = "X-Chatwidget-Client"

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithNow replaces the timestamp source.
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithHeader adds a header to every request.
func WithHeader(name, value string) Option {
	return func(c *Client) { c.header.Set(name, value) }
}

// Client talks to one chat endpoint. The endpoint may be changed at runtime.
type Client struct {
	mu       sync.RWMutex
	endpoint string
	http     *http.Client
	header   http.Header
	now      func() time.Time
}

// New creates a Client for endpoint.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     NewHTTPClient(0),
		header:   make(http.Header),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient creates an HTTP client with pooled connections. A zero
// timeout leaves deadlines to the request context.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Endpoint returns the current endpoint URL.
func (c *Client) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoint
}

// SetEndpoint changes the endpoint used by subsequent requests.
func (c *Client) SetEndpoint(url string) {
	c.mu.Lock()
	c.endpoint = strings.TrimSpace(url)
	c.mu.Unlock()
}

// Ask sends message and returns the reply text.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	endpoint := c.Endpoint()
	if endpoint == "" {
		return "", errors.New("no endpoint configured")
	}

	body, err := EncodeRequest(message, c.now())
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for name, values := range c.header {
		req.Header[name] = values
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode, Body: snippet(data)}
	}
	if !gjson.ValidBytes(data) {
		return "", ErrMalformedResponse
	}
	return ParseReply(data), nil
}

// EncodeRequest builds the request body for message sent at ts.
func EncodeRequest(message string, ts time.Time) ([]byte, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "message", message)
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(body, "timestamp", Timestamp(ts))
}

// Timestamp formats t as an ISO-8601 UTC instant with milliseconds.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// ParseReply extracts the reply text from a JSON response body, falling
// back from "response" to "message" to DefaultReply.
func ParseReply(body []byte) string {
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return DefaultReply
	}
	for _, key := range []string{"response", "message"} {
		v := root.Get(key)
		switch v.Type {
		case gjson.String:
			if v.Str != "" {
				return v.Str
			}
		case gjson.Number:
			return v.Raw
		}
	}
	return DefaultReply
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
