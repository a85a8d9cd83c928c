package discovery

import (
	"fmt"
	"time"
)

// Candidate is a controller that answered a discovery sweep. It carries
// whatever identity the controller advertises before authentication; the
// authoritative identity comes from authenticating against it.
type Candidate struct {
	// Host is the IPv4 address the controller answered from
	Host string

	// Port is the HTTPS API port (typically 8080)
	Port int

	// Name is the advertised controller name, if any
	Name string

	// MAC is the advertised hardware address, if any
	MAC string

	// Source records which lookup path produced the candidate
	// ("mdns" or "broadcast")
	Source string

	// DiscoveredAt is when the response arrived
	DiscoveredAt time.Time
}

// String returns a human-readable description of the candidate
func (c Candidate) String() string {
	if c.Name != "" {
		return fmt.Sprintf("RainMachine %q at %s:%d", c.Name, c.Host, c.Port)
	}
	return fmt.Sprintf("RainMachine at %s:%d", c.Host, c.Port)
}

// key identifies a candidate for deduplication across lookup paths
func (c Candidate) key() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
