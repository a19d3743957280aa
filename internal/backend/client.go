// Package backend provides the HTTP client for the tenant concierge
// API: chat exchanges, widget branding, and lead submission.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/oakandvine/concierge-widget/internal/config"
	"github.com/oakandvine/concierge-widget/internal/conversation"
	"github.com/oakandvine/concierge-widget/internal/leads"
	"github.com/oakandvine/concierge-widget/pkg/logging"
)

// APIKeyHeader carries the tenant credential on chat and lead requests.
const APIKeyHeader = "X-API-Key"

type chatRequest struct {
	Message             string               `json:"message"`
	ConversationHistory conversation.History `json:"conversation_history"`
	SessionID           string               `json:"session_id,omitempty"`
}

type chatResponse struct {
	Response            string               `json:"response"`
	ConversationHistory conversation.History `json:"conversation_history"`
	SessionID           string               `json:"session_id,omitempty"`
}

// Client is an HTTP client for the tenant concierge API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
	tracer     trace.Tracer
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTracer sets a custom tracer.
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// NewClient creates a tenant API client. baseURL is the API origin
// (e.g. "https://api.example.com"); apiKey is the tenant credential.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logging.Default(),
		tracer: otel.Tracer("concierge.internal.backend"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Chat performs one chat exchange. The returned history is the full
// authoritative sequence and replaces the caller's copy.
func (c *Client) Chat(ctx context.Context, message string, history conversation.History, sessionID string) (*conversation.ChatResult, error) {
	ctx, span := c.tracer.Start(ctx, "backend.chat")
	defer span.End()

	if history == nil {
		history = conversation.History{}
	}
	body, err := json.Marshal(chatRequest{
		Message:             message,
		ConversationHistory: history,
		SessionID:           sessionID,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("backend: marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("backend: create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("backend: chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("backend: chat failed with status %d: %s", resp.StatusCode, string(snippet))
		span.RecordError(err)
		return nil, err
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("backend: decode chat response: %w", err)
	}

	c.logger.Debug("backend: chat exchange complete",
		"session_id", sessionID,
		"history_len", len(decoded.ConversationHistory),
	)

	return &conversation.ChatResult{
		Reply:     decoded.Response,
		History:   decoded.ConversationHistory,
		SessionID: decoded.SessionID,
	}, nil
}

// FetchWidgetConfig retrieves tenant branding. The credential rides as
// a query parameter on this read.
func (c *Client) FetchWidgetConfig(ctx context.Context) (*config.Remote, error) {
	ctx, span := c.tracer.Start(ctx, "backend.fetch_widget_config")
	defer span.End()

	endpoint := c.baseURL + "/api/widget-config?api_key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("backend: create config request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("backend: config request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("backend: config fetch failed with status %d", resp.StatusCode)
		span.RecordError(err)
		return nil, err
	}

	var remote config.Remote
	if err := json.NewDecoder(resp.Body).Decode(&remote); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("backend: decode config response: %w", err)
	}
	return &remote, nil
}

// SubmitLead delivers a captured lead. Only the response status
// matters; there is no meaningful body contract.
func (c *Client) SubmitLead(ctx context.Context, sub leads.Submission) error {
	ctx, span := c.tracer.Start(ctx, "backend.submit_lead")
	defer span.End()

	body, err := json.Marshal(sub)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("backend: marshal lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/leads", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("backend: create lead request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("backend: lead request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("backend: lead submission failed with status %d: %s", resp.StatusCode, string(snippet))
		span.RecordError(err)
		return err
	}

	c.logger.Info("backend: lead submitted", "session_id", sub.SessionID)
	return nil
}
