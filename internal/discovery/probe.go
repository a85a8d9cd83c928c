package discovery

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// ProbePort is the UDP port controllers answer discovery probes on
	ProbePort = 15800

	// probePayload is the datagram the firmware recognizes as a
	// discovery request
	probePayload = "probe"

	// probeReadBuffer is sized well above the largest known response
	probeReadBuffer = 1024
)

// probeBroadcast sends the firmware's UDP discovery probe and collects
// answers until the context is done. Responses are newline-separated
// records of the form "name||mac||url".
func (s *Scanner) probeBroadcast(ctx context.Context, found chan<- Candidate) {
	target := s.BroadcastAddress
	if target == "" {
		target = net.JoinHostPort("255.255.255.255", strconv.Itoa(ProbePort))
	}

	raddr, err := net.ResolveUDPAddr("udp4", target)
	if err != nil {
		return
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	// Release the socket as soon as the scan window closes, whatever
	// the exit path
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if _, err := conn.WriteToUDP([]byte(probePayload), raddr); err != nil {
		return
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}

	buf := make([]byte, probeReadBuffer)
	for {
		n, sender, err := conn.ReadFromUDP(buf)
		if err != nil {
			// Deadline reached or socket closed by cancellation
			return
		}

		candidate, ok := parseProbeResponse(buf[:n], sender)
		if !ok {
			continue
		}

		select {
		case found <- candidate:
		case <-ctx.Done():
			return
		}
	}
}

// parseProbeResponse decodes a "name||mac||url" discovery answer. The URL
// is authoritative for host and port when present; the sender address is
// the fallback.
func parseProbeResponse(data []byte, sender *net.UDPAddr) (Candidate, bool) {
	fields := strings.Split(strings.TrimSpace(string(data)), "||")
	if len(fields) < 3 {
		return Candidate{}, false
	}

	candidate := Candidate{
		Name:         strings.TrimSpace(fields[0]),
		MAC:          strings.TrimSpace(fields[1]),
		Host:         sender.IP.String(),
		Port:         DefaultPort,
		Source:       "broadcast",
		DiscoveredAt: time.Now(),
	}

	if parsed, err := url.Parse(strings.TrimSpace(fields[2])); err == nil && parsed.Hostname() != "" {
		candidate.Host = parsed.Hostname()
		if portText := parsed.Port(); portText != "" {
			if port, err := strconv.Atoi(portText); err == nil {
				candidate.Port = port
			}
		}
	}

	if candidate.Host == "" {
		return Candidate{}, false
	}
	return candidate, true
}
