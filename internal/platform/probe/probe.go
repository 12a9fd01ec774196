// Package probe provides HTTP reachability probing of the remote store.
// It is the engine's single connectivity signal: before the first probe
// completes, connectivity is genuinely unknown, and the rest of the engine
// treats that state as distinct from offline.
package probe

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
	"github.com/halcyonfit/halcyon-engine/internal/syncer"
)

// Prober checks the remote store's health endpoint on a fixed interval and
// fans out state transitions to observers. The reported state starts as
// Unknown and only becomes Online/Offline once a probe has actually
// completed.
type Prober struct {
	healthURL  string
	interval   time.Duration
	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.Mutex
	state       domain.OnlineState
	subscribers map[int]chan domain.OnlineState
	nextSubID   int
}

// NewProber creates a connectivity prober for the remote store at baseURL.
// If logger is nil, the default logger is used.
func NewProber(baseURL string, interval time.Duration, timeout time.Duration, logger *slog.Logger) *Prober {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Prober{
		healthURL:   strings.TrimRight(baseURL, "/") + "/healthz",
		interval:    interval,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger.With(slog.String("component", "connectivity_probe")),
		state:       domain.OnlineStateUnknown,
		subscribers: make(map[int]chan domain.OnlineState),
	}
}

// Ensure Prober implements syncer.ConnectivityObserver
var _ syncer.ConnectivityObserver = (*Prober)(nil)

// IsOnline implements syncer.ConnectivityObserver.IsOnline
// It returns the state established by the most recent probe, or Unknown if
// no probe has completed yet.
func (p *Prober) IsOnline(_ context.Context) domain.OnlineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Observe implements syncer.ConnectivityObserver.Observe
// The returned channel receives every state transition. It is closed when
// ctx is cancelled. Multiple observers each get their own channel.
func (p *Prober) Observe(ctx context.Context) <-chan domain.OnlineState {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	ch := make(chan domain.OnlineState, 4)
	p.subscribers[id] = ch
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		defer p.mu.Unlock()
		if sub, ok := p.subscribers[id]; ok {
			delete(p.subscribers, id)
			close(sub)
		}
	}()

	return ch
}

// Run probes immediately and then on every interval tick until ctx is
// cancelled.
func (p *Prober) Run(ctx context.Context) {
	p.probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

// probe performs one health check and publishes the state if it changed.
func (p *Prober) probe(ctx context.Context) {
	state := domain.OnlineStateOffline
	if p.check(ctx) {
		state = domain.OnlineStateOnline
	}
	p.setState(state)
}

// check reports whether the health endpoint answered successfully.
func (p *Prober) check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.healthURL, nil)
	if err != nil {
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// setState records the probed state and notifies observers of transitions.
func (p *Prober) setState(state domain.OnlineState) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if state == p.state {
		return
	}
	p.logger.Info("connectivity changed",
		slog.String("from", p.state.String()),
		slog.String("to", state.String()))
	p.state = state

	for _, ch := range p.subscribers {
		select {
		case ch <- state:
		default:
			// A full observer already has pending transitions to process;
			// it will learn the latest state through IsOnline.
		}
	}
}
