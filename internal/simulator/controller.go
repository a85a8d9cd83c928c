package simulator

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Defaults advertised by a freshly started simulated controller
const (
	DefaultPassword        = "the_password_123"
	DefaultName            = "My House"
	DefaultMAC             = "ab:cd:ef:12:34:56"
	DefaultAPIVersion      = "4.5.0"
	DefaultHardwareVersion = "3"
	DefaultFirmwareVersion = "4.0.925"
	DefaultTokenTTL        = 157680000 // seconds; matches real firmware
)

// programState is the mutable device-side state of one program
type programState struct {
	Name      string
	Active    bool
	Running   bool
	StartTime string
	NextRun   string
}

// zoneState is the mutable device-side state of one zone
type zoneState struct {
	Name      string
	Active    bool
	Watering  bool
	Remaining int
}

// Controller simulates one RainMachine device. All exported mutators are
// safe for concurrent use with in-flight requests.
type Controller struct {
	Password        string
	Name            string
	MAC             string
	APIVersion      string
	HardwareVersion string
	FirmwareVersion string

	// TokenTTL is the expires_in value issued on login
	TokenTTL int

	mu            sync.Mutex
	tokens        map[string]bool
	tokenSeq      int
	loginCount    int
	requestCount  int
	programs      map[int]*programState
	zones         map[int]*zoneState
	rainDelay     int
	malformed     map[string]bool
	rejectActions bool
	rejectAuth    bool

	server *httptest.Server
}

// New creates a simulated controller with two programs and four zones
func New() *Controller {
	return &Controller{
		Password:        DefaultPassword,
		Name:            DefaultName,
		MAC:             DefaultMAC,
		APIVersion:      DefaultAPIVersion,
		HardwareVersion: DefaultHardwareVersion,
		FirmwareVersion: DefaultFirmwareVersion,
		TokenTTL:        DefaultTokenTTL,
		tokens:          make(map[string]bool),
		malformed:       make(map[string]bool),
		programs: map[int]*programState{
			1: {Name: "Morning", Active: true, StartTime: "06:00", NextRun: "2026-08-24"},
			2: {Name: "Evening", Active: true, StartTime: "19:30", NextRun: "2026-08-24"},
		},
		zones: map[int]*zoneState{
			1: {Name: "Front Lawn", Active: true},
			2: {Name: "Back Lawn", Active: true},
			3: {Name: "Flower Beds", Active: true},
			4: {Name: "Drip Line", Active: false},
		},
	}
}

// Start serves the API over TLS with a self-signed certificate, the same
// trust situation a real controller presents
func (c *Controller) Start() {
	c.server = httptest.NewTLSServer(http.HandlerFunc(c.handle))
}

// StartHTTP serves the API over plain HTTP, matching early firmware
func (c *Controller) StartHTTP() {
	c.server = httptest.NewServer(http.HandlerFunc(c.handle))
}

// Handler exposes the API handler for serving outside httptest, e.g.
// from the standalone simulator binary
func (c *Controller) Handler() http.Handler {
	return http.HandlerFunc(c.handle)
}

// Close shuts the simulated controller down
func (c *Controller) Close() {
	if c.server != nil {
		c.server.Close()
	}
}

// URL returns the base URL of the running simulator
func (c *Controller) URL() string {
	return c.server.URL
}

// Host returns the address the simulator listens on
func (c *Controller) Host() string {
	host, _, _ := net.SplitHostPort(strings.TrimPrefix(strings.TrimPrefix(c.server.URL, "https://"), "http://"))
	return host
}

// Port returns the port the simulator listens on
func (c *Controller) Port() int {
	_, portText, _ := net.SplitHostPort(strings.TrimPrefix(strings.TrimPrefix(c.server.URL, "https://"), "http://"))
	port, _ := strconv.Atoi(portText)
	return port
}

// LoginCount reports how many times auth/login was called
func (c *Controller) LoginCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginCount
}

// RequestCount reports how many API requests arrived (login included)
func (c *Controller) RequestCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requestCount
}

// ExpireTokens invalidates every issued token so the next authorized
// request is rejected with 401
func (c *Controller) ExpireTokens() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for token := range c.tokens {
		c.tokens[token] = false
	}
}

// SetMalformed makes the given endpoint (path relative to /api/4/) return
// a body that is not valid JSON
func (c *Controller) SetMalformed(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.malformed[path] = true
}

// RejectActions makes every POST action answer with a device-level
// rejection (HTTP 200, non-zero statusCode)
func (c *Controller) RejectActions(reject bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejectActions = reject
}

// RejectAuthorized makes every resource request answer 401 regardless of
// how fresh its token is; auth/login itself keeps succeeding. Models a
// device that keeps invalidating sessions right after issuing them.
func (c *Controller) RejectAuthorized(reject bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejectAuth = reject
}

// ZoneWatering reports whether the simulator considers a zone running
func (c *Controller) ZoneWatering(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	zone, ok := c.zones[id]
	return ok && zone.Watering
}

// ProgramRunning reports whether the simulator considers a program running
func (c *Controller) ProgramRunning(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	program, ok := c.programs[id]
	return ok && program.Running
}

func (c *Controller) issueToken() string {
	c.tokenSeq++
	token := fmt.Sprintf("token-%d-%d", c.tokenSeq, time.Now().UnixNano())
	c.tokens[token] = true
	return token
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{"statusCode": 0, "message": "OK"})
}

// handle routes /api/4/* requests
func (c *Controller) handle(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	c.requestCount++
	c.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/api/4/")
	if path == r.URL.Path {
		http.NotFound(w, r)
		return
	}

	if path == "auth/login" {
		c.handleLogin(w, r)
		return
	}

	// Every other endpoint requires a live token
	token := r.URL.Query().Get("access_token")
	c.mu.Lock()
	live := c.tokens[token] && !c.rejectAuth
	malformed := c.malformed[path]
	c.mu.Unlock()
	if !live {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"statusCode": 2, "message": "Not Authenticated !"})
		return
	}

	if malformed {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("this is not json{{{"))
		return
	}

	c.route(w, r, path)
}

func (c *Controller) handleLogin(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	c.loginCount++
	c.mu.Unlock()

	var payload struct {
		Pwd string `json:"pwd"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Pwd != c.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"statusCode": 2, "message": "Not Authenticated !"})
		return
	}

	c.mu.Lock()
	token := c.issueToken()
	c.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"checkAccess":  true,
		"expires_in":   c.TokenTTL,
		"expiration":   time.Now().Add(time.Duration(c.TokenTTL) * time.Second).UTC().Format(time.RFC1123),
		"statusCode":   0,
	})
}
