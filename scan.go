package rainmachine

import (
	"context"
	"time"

	"github.com/openirrigation/go-rainmachine/internal/discovery"
)

// ScanOption configures a discovery sweep
type ScanOption func(*scanConfig)

type scanConfig struct {
	timeout          time.Duration
	maxResults       int
	mdns             bool
	broadcast        bool
	broadcastAddress string
	clientOptions    []Option
}

// WithScanTimeout bounds the scan window
func WithScanTimeout(timeout time.Duration) ScanOption {
	return func(cfg *scanConfig) { cfg.timeout = timeout }
}

// WithScanMaxResults stops the sweep early after this many controllers
func WithScanMaxResults(limit int) ScanOption {
	return func(cfg *scanConfig) { cfg.maxResults = limit }
}

// WithScanMDNS toggles the mDNS/DNS-SD lookup path
func WithScanMDNS(enabled bool) ScanOption {
	return func(cfg *scanConfig) { cfg.mdns = enabled }
}

// WithScanBroadcast toggles the UDP probe lookup path
func WithScanBroadcast(enabled bool) ScanOption {
	return func(cfg *scanConfig) { cfg.broadcast = enabled }
}

// WithScanBroadcastAddress overrides the UDP probe target, for routed
// subnets with a directed broadcast address (and for tests)
func WithScanBroadcastAddress(addr string) ScanOption {
	return func(cfg *scanConfig) { cfg.broadcastAddress = addr }
}

// WithScanClientOptions applies client options (TLS, timeout, logger) to
// every Client the sweep constructs
func WithScanClientOptions(opts ...Option) ScanOption {
	return func(cfg *scanConfig) { cfg.clientOptions = append(cfg.clientOptions, opts...) }
}

func newScanner(opts []ScanOption) (*discovery.Scanner, *scanConfig) {
	cfg := &scanConfig{
		timeout:   discovery.DefaultScanTimeout,
		mdns:      true,
		broadcast: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &discovery.Scanner{
		Timeout:          cfg.timeout,
		MaxResults:       cfg.maxResults,
		EnableMDNS:       cfg.mdns,
		EnableBroadcast:  cfg.broadcast,
		BroadcastAddress: cfg.broadcastAddress,
	}, cfg
}

func (cfg *scanConfig) newClient(candidate discovery.Candidate) *Client {
	opts := cfg.clientOptions
	if candidate.Port != 0 && candidate.Port != DefaultPort {
		opts = append(append([]Option{}, opts...), WithPort(candidate.Port))
	}
	return New(candidate.Host, opts...)
}

// Scan sweeps the local network and returns an unauthenticated Client for
// every controller that answered. All responders are returned; choosing
// among multiple controllers is the caller's decision. A sweep that finds
// nothing yields a discovery error.
func Scan(ctx context.Context, opts ...ScanOption) ([]*Client, error) {
	scanner, cfg := newScanner(opts)

	candidates, err := scanner.ScanAll(ctx)
	if err != nil {
		return nil, newDiscoveryError("discovery sweep failed", err)
	}
	if len(candidates) == 0 {
		return nil, newDiscoveryError("no controllers responded within the scan window", nil)
	}

	clients := make([]*Client, 0, len(candidates))
	for _, candidate := range candidates {
		clients = append(clients, cfg.newClient(candidate))
	}
	return clients, nil
}

// ScanFirst returns a Client for the first controller that answers and
// stops the sweep immediately
func ScanFirst(ctx context.Context, opts ...ScanOption) (*Client, error) {
	scanner, cfg := newScanner(append(opts, WithScanMaxResults(1)))

	stream, err := scanner.Scan(ctx)
	if err != nil {
		return nil, newDiscoveryError("discovery sweep failed", err)
	}

	for candidate := range stream {
		return cfg.newClient(candidate), nil
	}
	return nil, newDiscoveryError("no controllers responded within the scan window", nil)
}

// ScanStream sweeps lazily: controllers are delivered as they answer and
// the channel closes when the scan window elapses. The stream is finite
// and not restartable. An empty sweep is observable as a channel that
// closes without ever yielding; callers needing an error should use Scan.
func ScanStream(ctx context.Context, opts ...ScanOption) (<-chan *Client, error) {
	scanner, cfg := newScanner(opts)

	candidates, err := scanner.Scan(ctx)
	if err != nil {
		return nil, newDiscoveryError("discovery sweep failed", err)
	}

	out := make(chan *Client)
	go func() {
		defer close(out)
		for candidate := range candidates {
			select {
			case out <- cfg.newClient(candidate):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
