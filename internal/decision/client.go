// Remote decision client: POSTs the snapshot to the decision service and
// parses the returned action list.
package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/curo-sh/curo/internal/config"
	"github.com/curo-sh/curo/internal/models"
)

const (
	// breakerTripAfter is the number of consecutive failures after which the
	// circuit opens and Decide fails fast instead of waiting out the request
	// timeout every cycle.
	breakerTripAfter = 3

	// breakerCooldown is how long the circuit stays open before letting one
	// probe request through.
	breakerCooldown = 5 * time.Minute

	// maxResponseBytes caps how much of the response body is read. The
	// decision service is outside the trust boundary.
	maxResponseBytes = 1 << 20
)

// requestBody is the decision-service request: a free-text instruction plus
// the snapshot it applies to.
type requestBody struct {
	Input string                 `json:"input"`
	Data  models.MetricsSnapshot `json:"data"`
}

// responseBody is the only response shape the client accepts. The pointer
// distinguishes a missing or null "actions" key (malformed, unavailable)
// from a present-but-empty list (a valid "do nothing" decision).
type responseBody struct {
	Actions *[]models.ActionRequest `json:"actions"`
}

// Client is the remote Decider. A request is never retried within a cycle;
// the next cycle simply asks again. The circuit breaker only short-circuits
// calls that are already known to fail.
type Client struct {
	baseURL string
	prompt  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewClient builds a remote client for the configured decision service.
func NewClient(cfg config.DecisionConfig, logger *zap.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "decision-service",
		Timeout: breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Decision breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		prompt:  cfg.Prompt,
		client: &http.Client{
			Timeout: cfg.RequestTimeout.Duration,
		},
		breaker: breaker,
		logger:  logger,
	}
}

// Name returns "remote".
func (c *Client) Name() string { return "remote" }

// Decide POSTs the snapshot to the decision service and parses the response.
// Every failure, including an open breaker, wraps ErrDecisionUnavailable.
// The call is bounded by the configured request timeout and by ctx, so
// shutdown aborts an in-flight request.
func (c *Client) Decide(ctx context.Context, snapshot models.MetricsSnapshot) (models.Decision, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.query(ctx, snapshot)
	})
	if err != nil {
		return models.Decision{}, fmt.Errorf("%w: %v", ErrDecisionUnavailable, err)
	}
	return result.(models.Decision), nil
}

// query performs the single HTTP round-trip.
func (c *Client) query(ctx context.Context, snapshot models.MetricsSnapshot) (models.Decision, error) {
	payload, err := json.Marshal(requestBody{
		Input: c.prompt,
		Data:  snapshot,
	})
	if err != nil {
		return models.Decision{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/optimize", bytes.NewReader(payload))
	if err != nil {
		return models.Decision{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Decision{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return models.Decision{}, fmt.Errorf("read response: %w", err)
	}

	// Any non-2xx status is a failed decision, 405 included. The service
	// only speaks POST; there is no alternate method to fall back to.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Decision{}, fmt.Errorf("server returned %d", resp.StatusCode)
	}

	var parsed responseBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.Decision{}, fmt.Errorf("parse response: %w", err)
	}
	if parsed.Actions == nil {
		return models.Decision{}, fmt.Errorf("response has no actions list")
	}

	c.logger.Debug("Decision received", zap.Int("actions", len(*parsed.Actions)))

	return models.Decision{
		Actions: *parsed.Actions,
		Raw:     body,
	}, nil
}
