package discovery

import (
	"context"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the DNS-SD service RainMachine controllers advertise
	ServiceType = "_rainmachine._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."
)

// browseMDNS runs a DNS-SD browse until the context is done, feeding every
// matching service entry into found
func (s *Scanner) browseMDNS(ctx context.Context, found chan<- Candidate) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		// mDNS may be unavailable (no multicast route); the broadcast
		// path still runs
		return
	}

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entries {
			candidate, ok := parseServiceEntry(entry)
			if !ok {
				continue
			}
			select {
			case found <- candidate:
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return
	}

	<-ctx.Done()
	<-done
}

// parseServiceEntry converts a DNS-SD entry into a Candidate. Entries
// without a resolvable address are skipped.
func parseServiceEntry(entry *zeroconf.ServiceEntry) (Candidate, bool) {
	var host string
	for _, addr := range entry.AddrIPv4 {
		host = addr.String()
		break
	}
	if host == "" && len(entry.AddrIPv6) > 0 {
		host = entry.AddrIPv6[0].String()
	}
	if host == "" {
		return Candidate{}, false
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	candidate := Candidate{
		Host:         host,
		Port:         port,
		Name:         entry.Instance,
		Source:       "mdns",
		DiscoveredAt: time.Now(),
	}

	// TXT records are "key=value" pairs; the mac record carries the
	// hardware address
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch strings.ToLower(parts[0]) {
		case "mac":
			candidate.MAC = parts[1]
		case "name":
			if candidate.Name == "" {
				candidate.Name = parts[1]
			}
		}
	}

	return candidate, true
}
