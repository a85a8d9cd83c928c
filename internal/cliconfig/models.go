package cliconfig

import "time"

// Registry represents the entire user configuration file.
type Registry struct {
	Version     int                    `yaml:"version"`
	Controllers map[string]*Controller `yaml:"controllers,omitempty"` // Keyed by controller MAC address
	Preferences *Preferences           `yaml:"preferences,omitempty"`
}

// Controller is the user-defined metadata for a single controller,
// keyed by MAC address in the Registry.
type Controller struct {
	Nickname string         `yaml:"nickname,omitempty"`  // User-friendly name
	LastHost string         `yaml:"last_host,omitempty"` // Last known address
	LastPort int            `yaml:"last_port,omitempty"` // Last known API port
	LastSeen time.Time      `yaml:"last_seen,omitempty"` // Last discovery/connection time
	Zones    map[int]string `yaml:"zones,omitempty"`     // Zone labels keyed by zone uid
}

// Preferences are application-wide user preferences.
type Preferences struct {
	AutoDiscover bool `yaml:"auto_discover"` // Scan the network when no host is given
	ScanTimeout  int  `yaml:"scan_timeout"`  // Discovery timeout in seconds
	DefaultPort  int  `yaml:"default_port"`  // API port assumed for manual hosts
}

// NewRegistry creates a Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Controllers: make(map[string]*Controller),
		Preferences: &Preferences{
			AutoDiscover: true,
			ScanTimeout:  10,
			DefaultPort:  8080,
		},
	}
}

// GetController retrieves controller metadata by MAC address.
// Returns nil if the controller is not in the registry.
func (r *Registry) GetController(mac string) *Controller {
	return r.Controllers[mac]
}

// EnsureController returns the entry for mac, creating it if needed.
func (r *Registry) EnsureController(mac string) *Controller {
	if r.Controllers == nil {
		r.Controllers = make(map[string]*Controller)
	}

	if controller, exists := r.Controllers[mac]; exists {
		return controller
	}

	controller := &Controller{Zones: make(map[int]string)}
	r.Controllers[mac] = controller
	return controller
}

// UpdateLastSeen records where and when a controller was last reached.
func (r *Registry) UpdateLastSeen(mac, host string, port int) {
	controller := r.EnsureController(mac)
	controller.LastSeen = time.Now()
	controller.LastHost = host
	controller.LastPort = port
}

// SetZoneLabel sets or updates a zone label for a controller.
func (r *Registry) SetZoneLabel(mac string, zoneID int, label string) {
	controller := r.EnsureController(mac)
	if controller.Zones == nil {
		controller.Zones = make(map[int]string)
	}
	controller.Zones[zoneID] = label
}

// SetNickname sets a user-friendly nickname for a controller.
func (r *Registry) SetNickname(mac, nickname string) {
	controller := r.EnsureController(mac)
	controller.Nickname = nickname
}
