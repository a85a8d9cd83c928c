package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultScanTimeout is the default scan window
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the controller API port assumed when a discovery
	// response does not carry one
	DefaultPort = 8080
)

// Scanner sweeps the local network for controllers
type Scanner struct {
	// Timeout is the maximum time to wait for responses
	Timeout time.Duration

	// MaxResults stops the scan early once this many candidates have
	// been found. Zero means no limit.
	MaxResults int

	// EnableMDNS controls the mDNS/DNS-SD browse path
	EnableMDNS bool

	// EnableBroadcast controls the UDP probe path
	EnableBroadcast bool

	// BroadcastAddress overrides the UDP probe target. Defaults to the
	// limited broadcast address on the controller discovery port; tests
	// and routed subnets point it elsewhere.
	BroadcastAddress string
}

// NewScanner creates a scanner with default settings (both lookup paths,
// 10 second window)
func NewScanner() *Scanner {
	return &Scanner{
		Timeout:         DefaultScanTimeout,
		EnableMDNS:      true,
		EnableBroadcast: true,
	}
}

// Scan sweeps the network and streams candidates as they answer. The
// returned channel is closed when the scan window elapses, the context is
// cancelled, or MaxResults candidates have been yielded. Each candidate is
// yielded exactly once; the stream is not restartable.
func (s *Scanner) Scan(ctx context.Context) (<-chan Candidate, error) {
	if !s.EnableMDNS && !s.EnableBroadcast {
		return nil, fmt.Errorf("no discovery method enabled")
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)

	out := make(chan Candidate)
	found := make(chan Candidate)

	var wg sync.WaitGroup
	if s.EnableMDNS {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.browseMDNS(ctx, found)
		}()
	}
	if s.EnableBroadcast {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.probeBroadcast(ctx, found)
		}()
	}

	go func() {
		wg.Wait()
		close(found)
	}()

	// Deduplicate across lookup paths and enforce MaxResults. Runs until
	// both paths finish so their goroutines never block on found.
	go func() {
		defer cancel()
		defer close(out)

		seen := make(map[string]bool)
		yielded := 0
		for candidate := range found {
			if seen[candidate.key()] {
				continue
			}
			seen[candidate.key()] = true

			if s.MaxResults > 0 && yielded >= s.MaxResults {
				cancel()
				continue
			}

			select {
			case out <- candidate:
				yielded++
				if s.MaxResults > 0 && yielded >= s.MaxResults {
					cancel()
				}
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}

// ScanAll is a convenience wrapper that collects every candidate the scan
// window produces
func (s *Scanner) ScanAll(ctx context.Context) ([]Candidate, error) {
	stream, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for candidate := range stream {
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}
