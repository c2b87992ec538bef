// Startup readiness probe for the remote decision service.
package decision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v5"
	"go.uber.org/zap"
)

const (
	probeAttempts       = 5
	probeRequestTimeout = 5 * time.Second
)

// WaitReady polls the decision service's health endpoint until it answers
// 2xx, the attempts run out, or the timeout elapses. Attempts back off
// exponentially. The result is advisory: the caller starts the loop either
// way, since the loop already tolerates an unavailable decision service.
func WaitReady(ctx context.Context, baseURL string, timeout time.Duration, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{Timeout: probeRequestTimeout}
	url := strings.TrimRight(baseURL, "/") + "/healthz"

	r := retry.New(
		retry.Context(ctx),
		retry.Attempts(probeAttempts),
	)

	return r.Do(func() error {
		if err := probe(ctx, client, url); err != nil {
			logger.Debug("Decision service not ready", zap.Error(err))
			return err
		}
		logger.Info("Decision service ready", zap.String("url", url))
		return nil
	})
}

// probe performs one health check round-trip.
func probe(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("health endpoint returned %d", resp.StatusCode)
	}
	return nil
}
