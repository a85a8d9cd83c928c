package simulator

import (
	"fmt"
	"net"
	"time"
)

// ProbeResponder answers the UDP discovery probe the way controller
// firmware does, on an ephemeral localhost port.
type ProbeResponder struct {
	// Delay is how long to wait before answering a probe. Useful for
	// exercising scan timeouts.
	Delay time.Duration

	// Name and MAC are reported in the probe answer
	Name string
	MAC  string

	// APIURL is the url field of the probe answer; its host and port
	// are what clients connect to
	APIURL string

	conn *net.UDPConn
	done chan struct{}
}

// NewProbeResponder creates a responder advertising the given controller.
// Pass the simulator's URL() so discovered candidates point at it.
func NewProbeResponder(name, mac, apiURL string) *ProbeResponder {
	return &ProbeResponder{Name: name, MAC: mac, APIURL: apiURL}
}

// Start binds a UDP socket on 127.0.0.1 and begins answering probes.
// The bound address is returned for use as the scan broadcast override.
func (p *ProbeResponder) Start() (string, error) {
	return p.StartOn(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
}

// StartOn binds the given UDP address and begins answering probes. The
// standalone simulator binary uses this to listen on the firmware's real
// discovery port.
func (p *ProbeResponder) StartOn(addr *net.UDPAddr) (string, error) {
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return "", fmt.Errorf("probe responder listen: %w", err)
	}
	p.conn = conn
	p.done = make(chan struct{})

	go p.serve()
	return conn.LocalAddr().String(), nil
}

// Close stops the responder
func (p *ProbeResponder) Close() {
	if p.conn != nil {
		_ = p.conn.Close()
	}
	if p.done != nil {
		<-p.done
	}
}

func (p *ProbeResponder) serve() {
	defer close(p.done)

	buf := make([]byte, 64)
	for {
		n, sender, err := p.conn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		if string(buf[:n]) != "probe" {
			continue
		}

		if p.Delay > 0 {
			time.Sleep(p.Delay)
		}

		answer := fmt.Sprintf("%s||%s||%s", p.Name, p.MAC, p.APIURL)
		_, _ = p.conn.WriteToUDP([]byte(answer), sender)
	}
}
