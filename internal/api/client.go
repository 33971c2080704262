// Package api provides the HTTP client for the local OpenAI-compatible chat API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/localchat/internal/errors"
	"github.com/diogo/localchat/internal/logger"
	"github.com/diogo/localchat/internal/models"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Client talks to the local chat API
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        *slog.Logger
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithBaseURL sets the API base address, e.g. http://127.0.0.1:8000/v1
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sets the bearer credential sent with chat requests
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new Client
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		// No client-wide timeout: replies stream for as long as the
		// request context allows.
		httpClient: &http.Client{},
		baseURL:    models.DefaultBaseURL,
		token:      models.PlaceholderToken,
		log:        logger.Discard(),
	}

	for _, opt := range opts {
		opt(client)
	}

	baseURL, err := normalizeBaseURL(client.baseURL)
	if err != nil {
		return nil, err
	}
	client.baseURL = baseURL

	if client.httpClient == nil {
		client.httpClient = &http.Client{}
	}
	if client.log == nil {
		client.log = logger.Discard()
	}

	return client, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// BaseURL returns the API base address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat sends a single-turn streaming chat request and returns the reply
// stream. The caller must Close the stream.
func (c *Client) Chat(ctx context.Context, modelID, message string) (*Stream, error) {
	modelID = strings.TrimSpace(modelID)
	message = strings.TrimSpace(message)
	if modelID == "" {
		return nil, apierrors.NewValidationError("model", apierrors.ErrNoModel)
	}
	if message == "" {
		return nil, apierrors.NewValidationError("message", apierrors.ErrEmptyMessage)
	}

	body, err := json.Marshal(models.NewChatRequest(modelID, message))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := c.baseURL + models.EndpointChatCompletions
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range models.DefaultHeaders(c.token) {
		req.Header.Set(k, v)
	}

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	log := c.log.With(logger.REQUEST, requestID, logger.MODEL, modelID)
	log.Debug("sending chat request", logger.URL, endpoint, "chars", len(message))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Error("chat request failed", logger.ERROR, errors.WithStack(err))
		return nil, apierrors.NewTransportError(models.EndpointChatCompletions, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		reqErr := apierrors.NewRequestError(resp.StatusCode, models.EndpointChatCompletions, readErrorMessage(resp.Body))
		log.Warn("chat request rejected", logger.STATUS, resp.StatusCode, logger.ERROR, reqErr)
		return nil, reqErr
	}

	log.Debug("chat stream opened", logger.STATUS, resp.StatusCode)
	return newStream(ctx, resp.Body, log), nil
}

// readErrorMessage returns error.message from a JSON error body, or "" when
// the body is not JSON or carries no usable message.
func readErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || !gjson.ValidBytes(data) {
		return ""
	}

	msg := gjson.GetBytes(data, models.PathErrorMessage)
	if msg.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(msg.Str)
}
