// Package rainmachine is a client for the local REST API exposed by
// RainMachine irrigation controllers.
//
// A Client is created for one controller (found by Scan or addressed
// manually), authenticated with the controller password, and then used
// through its resource services:
//
//	client := rainmachine.New("192.168.1.100", rainmachine.WithInsecureSkipVerify())
//	if _, err := client.Authenticate(ctx, password); err != nil {
//		return err
//	}
//	zones, err := client.Zones.All(ctx, false)
//
// Controllers serve HTTPS with a self-signed certificate, so most callers
// will want WithInsecureSkipVerify.
package rainmachine

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// DefaultPort is the HTTPS port the controller's local API listens on
	DefaultPort = 8080

	// DefaultTimeout is the default per-request timeout
	DefaultTimeout = 10 * time.Second

	// apiBasePath is the versioned prefix for every API endpoint
	apiBasePath = "/api/4/"
)

// Identity describes a controller after successful authentication.
// It is immutable for the lifetime of the session.
type Identity struct {
	Name            string
	Host            string
	Port            int
	MAC             string
	APIVersion      string
	HardwareVersion string
	SoftwareVersion string
}

// Client talks to a single RainMachine controller. It owns the session
// state (token, identity) and routes every resource operation through one
// request pipeline. Resource calls fail with ErrNotAuthenticated until
// Authenticate has succeeded at least once.
//
// A Client is safe for concurrent use. Multiple controllers are handled as
// independent Client instances; there is no shared state between them.
type Client struct {
	host       string
	port       int
	scheme     string
	httpClient *http.Client
	timeout    time.Duration
	insecure   bool
	logger     *zap.Logger
	limiter    *rate.Limiter

	// session state, guarded by mu
	mu         sync.RWMutex
	password   string
	token      sessionToken
	identity   Identity
	authState  authState
	reauthOnce singleflight.Group

	// Resource services
	Programs     *ProgramService
	Zones        *ZoneService
	Watering     *WateringService
	Restrictions *RestrictionService
	Stats        *StatsService
	Provisioning *ProvisionService
	Diagnostics  *DiagnosticsService
	Parsers      *ParserService
}

// Option configures a Client
type Option func(*Client)

// WithPort sets a non-default API port
func WithPort(port int) Option {
	return func(c *Client) { c.port = port }
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.timeout = timeout }
}

// WithInsecureSkipVerify disables TLS certificate verification. RainMachine
// controllers ship a self-signed certificate, so local use needs this
// unless the certificate has been replaced.
func WithInsecureSkipVerify() Option {
	return func(c *Client) { c.insecure = true }
}

// WithoutTLS switches the client to plain HTTP. Only early firmware (and
// test doubles) serve the API without TLS.
func WithoutTLS() Option {
	return func(c *Client) { c.scheme = "http" }
}

// WithHTTPClient injects the HTTP client used for all requests. The caller
// keeps responsibility for its TLS and timeout configuration.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger sets a structured logger. The default discards everything so
// the library never writes output the application did not ask for.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit caps outgoing requests per minute. Useful when polling an
// embedded controller that serves its UI from the same small CPU.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perMinute)/60.0, 1)
		}
	}
}

// New creates a client for the controller at host. The client is unusable
// for resource calls until Authenticate succeeds.
func New(host string, opts ...Option) *Client {
	c := &Client{
		host:    host,
		port:    DefaultPort,
		scheme:  "https",
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if c.insecure {
			transport.TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true, //nolint:gosec // Controllers use self-signed certificates
			}
		}
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: transport,
		}
	}

	c.Programs = &ProgramService{client: c}
	c.Zones = &ZoneService{client: c}
	c.Watering = &WateringService{client: c}
	c.Restrictions = &RestrictionService{client: c}
	c.Stats = &StatsService{client: c}
	c.Provisioning = &ProvisionService{client: c}
	c.Diagnostics = &DiagnosticsService{client: c}
	c.Parsers = &ParserService{client: c}

	return c
}

// baseURL returns the scheme://host:port prefix for API requests
func (c *Client) baseURL() string {
	return fmt.Sprintf("%s://%s:%d", c.scheme, c.host, c.port)
}

// Host returns the controller host the client was created with
func (c *Client) Host() string {
	return c.host
}

// Port returns the controller API port
func (c *Client) Port() int {
	return c.port
}

// Name returns the controller name. Empty until Authenticate has succeeded.
func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity.Name
}

// MAC returns the controller MAC address. Empty until Authenticate has
// succeeded.
func (c *Client) MAC() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity.MAC
}

// APIVersion returns the controller API version. Empty until Authenticate
// has succeeded.
func (c *Client) APIVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity.APIVersion
}

// HardwareVersion returns the controller hardware revision
func (c *Client) HardwareVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity.HardwareVersion
}

// SoftwareVersion returns the controller firmware version
func (c *Client) SoftwareVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity.SoftwareVersion
}

// Identity returns a copy of the full controller identity. The zero value
// is returned until Authenticate has succeeded.
func (c *Client) Identity() Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity
}
