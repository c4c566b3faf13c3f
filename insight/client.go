// Package insight turns a system snapshot into a natural-language diagnosis
// by calling the Gemini generateContent API.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"gitlab.com/tinyland/lab/sysinsight/collectors"
)

const (
	// DefaultEndpoint is the base URL of the Gemini models API.
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-1.5-flash"

	// DefaultTimeout bounds a whole Explain call.
	DefaultTimeout = 60 * time.Second

	// connectTimeout bounds TCP connect and TLS handshake.
	connectTimeout = 10 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20 // 1 MiB

	// textPath locates the generated text in a generateContent response.
	textPath = "candidates.0.content.parts.0.text"

	userAgent = "sysinsight/0.1.0"
)

// Options configures a Client.
type Options struct {
	// Endpoint is the models base URL; the request goes to
	// {Endpoint}/{Model}:generateContent.
	Endpoint string
	Model    string

	// APIKey is sent as the "key" query parameter. Required.
	APIKey string

	// Timeout bounds each Explain call end to end. Zero means DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the default client. Its Timeout is left as is.
	HTTPClient *http.Client
}

// Validate fills defaults and checks required fields.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if o.Endpoint == "" {
		o.Endpoint = DefaultEndpoint
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}

	u, err := url.Parse(o.Endpoint)
	if err != nil {
		return fmt.Errorf("insight: invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("insight: invalid endpoint %q: scheme must be http or https", o.Endpoint)
	}
	return nil
}

// Result is the outcome of one Explain call. Exactly one of Text and Err is
// meaningful.
type Result struct {
	RequestID string
	Text      string
	Err       error
	Elapsed   time.Duration
}

// Client calls the generateContent API. It makes exactly one attempt per
// request. A Client is safe for concurrent use.
type Client struct {
	url        string // without the key
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient validates opts and creates a Client.
// If logger is nil, a no-op logger is used.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		dialer := &net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: connectTimeout,
				ForceAttemptHTTP2:   true,
			},
			Timeout: opts.Timeout,
		}
	}

	return &Client{
		url:        strings.TrimRight(opts.Endpoint, "/") + "/" + opts.Model + ":generateContent",
		apiKey:     opts.APIKey,
		model:      opts.Model,
		timeout:    opts.Timeout,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// generateRequest is the request body for generateContent.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// Generate sends prompt and returns the model's text. It blocks until the
// response is read or ctx is done.
//
// Errors are *TransportError, *StatusError or *ParseError.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"?key="+url.QueryEscape(c.apiKey), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: c.redact(err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("reading response: %w", c.redact(err))}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}

	return parseResponse(raw)
}

// parseResponse extracts the generated text from a 200 response body.
func parseResponse(raw []byte) (string, error) {
	if !gjson.ValidBytes(raw) {
		return "", &ParseError{Reason: "body is not valid JSON", Body: string(raw)}
	}

	text := gjson.GetBytes(raw, textPath)
	if !text.Exists() {
		reason := "missing " + textPath
		if fr := gjson.GetBytes(raw, "promptFeedback.blockReason"); fr.Exists() {
			reason += " (blocked: " + fr.String() + ")"
		}
		return "", &ParseError{Reason: reason, Body: string(raw)}
	}
	if text.Type != gjson.String {
		return "", &ParseError{Reason: textPath + " is not a string", Body: string(raw)}
	}
	return text.String(), nil
}

// redact strips the API key from the URL embedded in net/http errors.
func (c *Client) redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = c.url
	}
	return err
}

// Explain runs Generate on its own goroutine and returns a channel that
// receives exactly one Result and is then closed. The call is bounded by the
// configured timeout; cancelling ctx ends it early.
func (c *Client) Explain(ctx context.Context, prompt string) <-chan Result {
	out := make(chan Result, 1)
	id := uuid.NewString()

	go func() {
		defer close(out)

		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		c.logger.Info("insight request started", "request_id", id, "model", c.model, "prompt_bytes", len(prompt))
		start := time.Now()

		text, err := c.Generate(ctx, prompt)
		elapsed := time.Since(start)

		if err != nil {
			c.logger.Warn("insight request failed", "request_id", id, "elapsed", elapsed, "error", err)
		} else {
			c.logger.Info("insight request completed", "request_id", id, "elapsed", elapsed, "text_bytes", len(text))
		}

		out <- Result{RequestID: id, Text: text, Err: err, Elapsed: elapsed}
	}()

	return out
}

// ExplainSnapshot builds the prompt for snap and calls Explain. A snapshot
// that fails validation is reported through the channel without a request.
func (c *Client) ExplainSnapshot(ctx context.Context, snap collectors.SystemSnapshot) <-chan Result {
	prompt, err := BuildPrompt(snap)
	if err != nil {
		out := make(chan Result, 1)
		out <- Result{RequestID: uuid.NewString(), Err: err}
		close(out)
		return out
	}
	return c.Explain(ctx, prompt)
}
