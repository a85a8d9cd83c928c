package rainmachine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// tokenExpiryMargin is subtracted from the reported token lifetime so a
// token is refreshed before the controller starts rejecting it.
const tokenExpiryMargin = 30 * time.Second

// authState tracks the session lifecycle:
// unauthenticated -> authenticated -> (reauth failure) failed.
// failed is terminal for the stored credentials; only a fresh Authenticate
// call recovers from it.
type authState int

const (
	authStateUnauthenticated authState = iota
	authStateAuthenticated
	authStateFailed
)

// sessionToken is the bearer-style credential issued by the controller.
// Exactly one live token exists per Client.
type sessionToken struct {
	value   string
	expires time.Time
}

func (t sessionToken) expired(now time.Time) bool {
	return !t.expires.IsZero() && now.After(t.expires.Add(-tokenExpiryMargin))
}

// authLoginResponse is the wire shape of POST auth/login
type authLoginResponse struct {
	AccessToken *string `json:"access_token"`
	ExpiresIn   int     `json:"expires_in"`
	StatusCode  int     `json:"statusCode"`
}

// Authenticate sends the controller password to the login endpoint and, on
// success, stores the issued session token and populates the controller
// identity (name, MAC, API/hardware/software versions). The identity is
// returned and remains readable through the accessor methods.
//
// A wrong password or a device-reported login failure yields an
// authentication error; an unreachable controller yields a network error.
// On any failure the client remains unauthenticated.
func (c *Client) Authenticate(ctx context.Context, password string) (Identity, error) {
	token, err := c.login(ctx, password)
	if err != nil {
		return Identity{}, err
	}

	c.mu.Lock()
	c.password = password
	c.token = token
	c.authState = authStateAuthenticated
	c.identity = Identity{Host: c.host, Port: c.port}
	c.mu.Unlock()

	identity, err := c.fetchIdentity(ctx)
	if err != nil {
		// Authenticate either fully succeeds or leaves the client
		// unauthenticated; a session with unknown identity is not kept
		c.mu.Lock()
		c.password = ""
		c.token = sessionToken{}
		c.authState = authStateUnauthenticated
		c.identity = Identity{}
		c.mu.Unlock()
		return Identity{}, err
	}

	c.mu.Lock()
	c.identity = identity
	c.mu.Unlock()

	c.logger.Info("authenticated with controller",
		zap.String("host", c.host),
		zap.String("name", identity.Name),
		zap.String("mac", identity.MAC),
		zap.String("api_version", identity.APIVersion),
	)

	return identity, nil
}

// login performs the raw credential exchange. It bypasses request() because
// the login endpoint is the one call that must work without a token.
func (c *Client) login(ctx context.Context, password string) (sessionToken, error) {
	payload := map[string]any{"pwd": password, "remember": 1}

	status, body, err := c.perform(ctx, http.MethodPost, "auth/login", "", payload)
	if err != nil {
		return sessionToken{}, err
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return sessionToken{}, newAuthenticationError("controller rejected the password", nil)
	case status < 200 || status > 299:
		return sessionToken{}, newRequestError(status, deviceMessage(body, status))
	}

	var resp authLoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return sessionToken{}, newResponseError("failed to parse login response", err)
	}
	if resp.StatusCode != 0 {
		return sessionToken{}, newAuthenticationError(
			fmt.Sprintf("controller reported login failure (statusCode %d)", resp.StatusCode), nil)
	}
	if resp.AccessToken == nil || *resp.AccessToken == "" {
		return sessionToken{}, newResponseError("login response missing access_token", nil)
	}

	token := sessionToken{value: *resp.AccessToken}
	if resp.ExpiresIn > 0 {
		token.expires = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}

	return token, nil
}

// fetchIdentity reads the provisioning and version endpoints that describe
// the controller. Requires an authenticated session.
func (c *Client) fetchIdentity(ctx context.Context) (Identity, error) {
	identity := Identity{Host: c.host, Port: c.port}

	name, err := c.Provisioning.Name(ctx)
	if err != nil {
		return Identity{}, err
	}
	identity.Name = name

	wifi, err := c.Provisioning.Wifi(ctx)
	if err != nil {
		return Identity{}, err
	}
	identity.MAC = wifi.MACAddress

	version, err := c.Provisioning.APIVersion(ctx)
	if err != nil {
		return Identity{}, err
	}
	identity.APIVersion = version.APIVersion
	identity.HardwareVersion = version.HardwareVersion
	identity.SoftwareVersion = version.SoftwareVersion

	return identity, nil
}

// reauthenticate re-runs the credential exchange with the stored password.
// Concurrent callers that observe an expired or rejected token coalesce
// into exactly one in-flight login; all of them proceed once it resolves.
func (c *Client) reauthenticate(ctx context.Context) (sessionToken, error) {
	result, err, _ := c.reauthOnce.Do("reauth", func() (any, error) {
		c.mu.RLock()
		password := c.password
		c.mu.RUnlock()

		c.logger.Debug("re-authenticating with controller", zap.String("host", c.host))

		token, err := c.login(ctx, password)
		if err != nil {
			if IsAuthenticationError(err) {
				c.mu.Lock()
				c.token = sessionToken{}
				c.authState = authStateFailed
				c.mu.Unlock()
			}
			return sessionToken{}, err
		}

		c.mu.Lock()
		c.token = token
		c.authState = authStateAuthenticated
		c.mu.Unlock()

		return token, nil
	})
	if err != nil {
		return sessionToken{}, err
	}

	return result.(sessionToken), nil
}

// request is the single chokepoint every resource service calls through.
// It attaches the current token, refreshes it when it is expired or
// rejected (at most one re-authentication followed by one retry of the
// original call), and maps failures onto the error taxonomy.
func (c *Client) request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	c.mu.RLock()
	state := c.authState
	token := c.token
	c.mu.RUnlock()

	switch state {
	case authStateUnauthenticated:
		return nil, &ControllerError{
			Type:    ErrTypeAuthentication,
			Message: "not authenticated",
			Err:     ErrNotAuthenticated,
			Host:    c.host,
		}
	case authStateFailed:
		return nil, newAuthenticationError(
			"stored credentials were rejected; call Authenticate again", nil)
	}

	if token.expired(time.Now()) {
		refreshed, err := c.reauthenticate(ctx)
		if err != nil {
			return nil, err
		}
		token = refreshed
	}

	status, respBody, err := c.perform(ctx, method, path, token.value, body)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		refreshed, err := c.reauthenticate(ctx)
		if err != nil {
			return nil, err
		}

		// Retry the original call once with the fresh token. A second
		// rejection is surfaced, never retried again.
		status, respBody, err = c.perform(ctx, method, path, refreshed.value, body)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			c.mu.Lock()
			c.authState = authStateFailed
			c.mu.Unlock()
			return nil, newAuthenticationError(
				"controller rejected authorization after re-authentication", nil)
		}
	}

	if status < 200 || status > 299 {
		return nil, newRequestError(status, deviceMessage(respBody, status))
	}

	return respBody, nil
}

// perform executes one HTTP exchange against the controller. token may be
// empty (login). The response body is fully read and the connection
// released on every exit path.
func (c *Client) perform(ctx context.Context, method, path, token string, body any) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, classifyNetworkError(err, c.host)
		}
	}

	endpoint := c.baseURL() + apiBasePath + path
	if token != "" {
		query := url.Values{"access_token": {token}}
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, nil, newValidationError(fmt.Sprintf("cannot encode request body: %v", err))
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, newValidationError(fmt.Sprintf("cannot build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("controller request",
		zap.String("method", method),
		zap.String("path", path),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, classifyNetworkError(err, c.host)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, classifyNetworkError(err, c.host)
	}

	c.logger.Debug("controller response",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
	)

	return resp.StatusCode, data, nil
}

// action executes a POST endpoint whose only meaningful result is the
// controller's acknowledgement. The controller reports a rejected action
// with HTTP 200 and a non-zero statusCode in the body; that is mapped to a
// request error so callers can tell "device rejected the action" apart
// from transport problems.
func (c *Client) action(ctx context.Context, path string, body any) error {
	respBody, err := c.request(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}

	var resp statusResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return newResponseError(fmt.Sprintf("failed to parse %s acknowledgement", path), err)
	}
	if resp.StatusCode != 0 {
		return &ControllerError{
			Type:       ErrTypeRequest,
			Message:    fmt.Sprintf("controller rejected %s: %s (statusCode %d)", path, resp.Message, resp.StatusCode),
			StatusCode: resp.StatusCode,
			Host:       c.host,
		}
	}
	return nil
}

// statusResponse is the generic action acknowledgement shape the
// controller returns for POST endpoints
type statusResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// deviceMessage extracts the controller-provided message from an error
// body, falling back to the HTTP status.
func deviceMessage(body []byte, status int) string {
	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Message != "" {
		return fmt.Sprintf("controller returned %d: %s", status, resp.Message)
	}
	return fmt.Sprintf("controller returned unexpected status %d", status)
}

// decodeJSON unmarshals a response body, mapping failures onto the
// response-error kind so callers never see partially populated objects.
func decodeJSON(data []byte, target any, what string) error {
	if err := json.Unmarshal(data, target); err != nil {
		return newResponseError(fmt.Sprintf("failed to parse %s response", what), err)
	}
	return nil
}

// validateID rejects non-positive entity ids before any network call
func validateID(id int, what string) error {
	if id <= 0 {
		return newValidationError(fmt.Sprintf("%s id must be a positive integer, got %d", what, id))
	}
	return nil
}
