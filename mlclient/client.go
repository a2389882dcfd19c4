// Package mlclient is the boundary client for the external curriculum
// generation service. It owns the request/response translation, the request
// timeout, and the bounded retry loop around rate-limited responses.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrServiceUnavailable means the service could not be reached at all.
	ErrServiceUnavailable = errors.New("ml service is not available")
	// ErrServiceBusy means the service kept rate-limiting past the retry cap.
	ErrServiceBusy = errors.New("ml service is busy, please try again in a few minutes")
	// ErrTimeout means the request exceeded the configured deadline.
	ErrTimeout = errors.New("ml service request timed out")
)

// GenerationError is a failure reported by the service's own payload, as
// opposed to a transport problem.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	if e.Message == "" {
		return "ml service failed to generate path"
	}
	return e.Message
}

// GenerateRequest is the normalized plan-parameters payload the service
// expects.
type GenerateRequest struct {
	Title                string   `json:"title"`
	Description          string   `json:"description,omitempty"`
	Goals                []string `json:"goals,omitempty"`
	PreferredDifficulty  string   `json:"preferredDifficulty"`
	AvailableTimePerWeek int      `json:"availableTimePerWeek"`
	DurationWeeks        int      `json:"durationWeeks"`
	PreferredTopics      []string `json:"preferredTopics,omitempty"`
}

// GenerateResponse carries the generated curriculum as an opaque document;
// nothing in this backend interprets its internals.
type GenerateResponse struct {
	Success       bool                   `json:"success"`
	Message       string                 `json:"message,omitempty"`
	LearningPath  json.RawMessage        `json:"learning_path,omitempty"`
	ResourceCount map[string]interface{} `json:"resource_count,omitempty"`
}

// Client is an explicitly constructed ML service client; handlers share one
// instance rather than a package-level singleton.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.SugaredLogger
}

func New(baseURL string, timeout time.Duration, maxRetries int, logger *zap.SugaredLogger) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		MaxRetries: maxRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logger,
	}
}

// GeneratePath posts the plan parameters to the service. Rate-limited
// responses are retried with linearly increasing delays up to MaxRetries;
// every other failure is surfaced immediately.
func (c *Client) GeneratePath(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	requestID := uuid.NewString()

	for attempt := 0; ; attempt++ {
		resp, err := c.post(ctx, "/generate-path", body, requestID)
		if err != nil {
			return nil, classifyTransportError(err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			if attempt >= c.MaxRetries {
				c.Logger.Warnw("ml service still rate limiting, giving up",
					"request_id", requestID, "attempts", attempt+1)
				return nil, ErrServiceBusy
			}

			delay := c.RetryDelay * time.Duration(attempt+1)
			c.Logger.Infow("ml service rate limited, retrying",
				"request_id", requestID, "attempt", attempt+1, "delay", delay)

			select {
			case <-ctx.Done():
				return nil, classifyTransportError(ctx.Err())
			case <-time.After(delay):
			}
			continue
		}

		return decodeResponse(resp)
	}
}

// HealthCheck probes the service's /health endpoint.
func (c *Client) HealthCheck(ctx context.Context) (map[string]interface{}, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	var health map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("decoding health response: %w", err)
	}
	return health, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte, requestID string) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	return c.HTTPClient.Do(httpReq)
}

func decodeResponse(resp *http.Response) (*GenerateResponse, error) {
	defer resp.Body.Close()

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &GenerationError{Message: fmt.Sprintf("ml service returned HTTP %d", resp.StatusCode)}
		}
		return nil, fmt.Errorf("decoding ml service response: %w", err)
	}

	if resp.StatusCode >= 400 || !out.Success {
		return nil, &GenerationError{Message: out.Message}
	}

	return &out, nil
}

func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrServiceUnavailable
}
