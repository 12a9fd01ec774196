// Package remote implements the HTTP client for pushing syncable records
// to the remote store. Pushes are best-effort: any failure simply leaves
// the record dirty locally, so this client never needs to guarantee
// delivery, only to report honestly whether a push landed.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/halcyonfit/halcyon-engine/internal/config"
	"github.com/halcyonfit/halcyon-engine/internal/domain"
	"github.com/halcyonfit/halcyon-engine/internal/syncer"
)

// Client pushes records to the remote store over HTTP. Transient failures
// (network errors, 5xx, 429) are retried with exponential backoff within
// the configured attempt budget; rejections (other 4xx) are not, since
// resending the same payload cannot succeed.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	maxAttempts uint64
	backoff     retry.Backoff
	logger      *slog.Logger
}

// NewClient creates a remote store client from configuration. If logger is
// nil, the default logger is used.
func NewClient(cfg config.RemoteConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	// Config validation requires at least one attempt, but direct
	// construction can bypass it and an attempt count of zero would
	// underflow the retry budget.
	maxAttempts := cfg.RetryMaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		maxAttempts: uint64(maxAttempts),
		backoff:     retry.NewExponential(cfg.RetryInitialBackoff),
		logger:      logger.With(slog.String("component", "remote_client")),
	}
}

// Ensure Client implements syncer.RemoteClient
var _ syncer.RemoteClient = (*Client)(nil)

// pushPayload is the wire format for a record push.
type pushPayload struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	UpdatedAt string          `json:"updated_at"`
}

// Push implements syncer.RemoteClient.Push
// It PUTs the record to BaseURL/records/{id}; the remote applies its own
// last-write-wins on the updated timestamp, so replays are harmless.
func (c *Client) Push(ctx context.Context, record *domain.Record) error {
	body, err := json.Marshal(pushPayload{
		ID:        record.ID.String(),
		UserID:    record.UserID.String(),
		Kind:      string(record.Kind),
		Payload:   record.Payload,
		UpdatedAt: record.UpdatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("%w: encoding record: %v", syncer.ErrRemoteRejected, err)
	}

	url := fmt.Sprintf("%s/records/%s", c.baseURL, record.ID)

	backoff := retry.WithMaxRetries(c.maxAttempts-1, c.backoff)
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptErr := c.pushOnce(ctx, url, body)
		if isTransient(attemptErr) {
			c.logger.Debug("transient push failure, will retry",
				slog.String("record_id", record.ID.String()),
				slog.String("error", attemptErr.Error()))
			return retry.RetryableError(attemptErr)
		}
		return attemptErr
	})
	if err != nil {
		c.logger.Warn("push failed",
			slog.String("record_id", record.ID.String()),
			slog.String("error", err.Error()))
		return err
	}

	c.logger.Debug("record pushed", slog.String("record_id", record.ID.String()))
	return nil
}

// pushOnce performs one push attempt.
func (c *Client) pushOnce(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: building request: %v", syncer.ErrRemoteRejected, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", syncer.ErrRemoteUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("%w: remote returned %d", syncer.ErrRemoteUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("%w: remote returned %d", syncer.ErrRemoteRejected, resp.StatusCode)
	}
}

// isTransient reports whether a push attempt failed in a way that a retry
// could fix.
func isTransient(err error) bool {
	return err != nil && !errors.Is(err, syncer.ErrRemoteRejected)
}
