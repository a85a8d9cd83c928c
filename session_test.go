package rainmachine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/openirrigation/go-rainmachine/internal/simulator"
)

// newSimClient starts a plain-HTTP simulated controller and returns a
// client pointed at it
func newSimClient(t *testing.T) (*Client, *simulator.Controller) {
	t.Helper()

	sim := simulator.New()
	sim.StartHTTP()
	t.Cleanup(sim.Close)

	client := New(sim.Host(), WithPort(sim.Port()), WithoutTLS())
	return client, sim
}

func authenticate(t *testing.T, client *Client) Identity {
	t.Helper()

	identity, err := client.Authenticate(context.Background(), simulator.DefaultPassword)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	return identity
}

func TestAuthenticatePopulatesIdentity(t *testing.T) {
	client, _ := newSimClient(t)

	identity := authenticate(t, client)

	if identity.Name != simulator.DefaultName {
		t.Errorf("identity.Name = %q, want %q", identity.Name, simulator.DefaultName)
	}
	if identity.MAC != simulator.DefaultMAC {
		t.Errorf("identity.MAC = %q, want %q", identity.MAC, simulator.DefaultMAC)
	}
	if identity.APIVersion != simulator.DefaultAPIVersion {
		t.Errorf("identity.APIVersion = %q, want %q", identity.APIVersion, simulator.DefaultAPIVersion)
	}
	if identity.HardwareVersion != simulator.DefaultHardwareVersion {
		t.Errorf("identity.HardwareVersion = %q, want %q", identity.HardwareVersion, simulator.DefaultHardwareVersion)
	}
	if identity.SoftwareVersion != simulator.DefaultFirmwareVersion {
		t.Errorf("identity.SoftwareVersion = %q, want %q", identity.SoftwareVersion, simulator.DefaultFirmwareVersion)
	}

	// Accessors expose the same identity
	if client.Name() != identity.Name {
		t.Errorf("client.Name() = %q, want %q", client.Name(), identity.Name)
	}
	if client.MAC() != identity.MAC {
		t.Errorf("client.MAC() = %q, want %q", client.MAC(), identity.MAC)
	}
}

func TestAuthenticateOverTLS(t *testing.T) {
	sim := simulator.New()
	sim.Start()
	t.Cleanup(sim.Close)

	client := New(sim.Host(), WithPort(sim.Port()), WithInsecureSkipVerify())
	authenticate(t, client)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	client, sim := newSimClient(t)

	_, err := client.Authenticate(context.Background(), "not-the-password")
	if !IsAuthenticationError(err) {
		t.Fatalf("Authenticate() error = %v, want authentication error", err)
	}

	if sim.LoginCount() != 1 {
		t.Errorf("LoginCount = %d, want 1", sim.LoginCount())
	}
}

func TestResourceCallBeforeAuthenticateFailsFast(t *testing.T) {
	client, sim := newSimClient(t)

	_, err := client.Zones.All(context.Background(), false)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Zones.All() error = %v, want ErrNotAuthenticated", err)
	}
	if !IsAuthenticationError(err) {
		t.Errorf("error should classify as authentication error, got %v", err)
	}

	// No network traffic may happen before authentication
	if sim.RequestCount() != 0 {
		t.Errorf("RequestCount = %d, want 0", sim.RequestCount())
	}
}

func TestExpiredTokenReauthenticatesOnce(t *testing.T) {
	client, sim := newSimClient(t)
	authenticate(t, client)

	sim.ExpireTokens()

	zones, err := client.Zones.All(context.Background(), false)
	if err != nil {
		t.Fatalf("Zones.All() after token expiry error = %v", err)
	}
	if len(zones) == 0 {
		t.Error("Zones.All() returned no zones")
	}

	// Initial login plus exactly one re-authentication
	if sim.LoginCount() != 2 {
		t.Errorf("LoginCount = %d, want 2", sim.LoginCount())
	}
}

func TestReauthFailureEntersFailedState(t *testing.T) {
	client, sim := newSimClient(t)
	authenticate(t, client)

	// Password change on the device invalidates the stored credentials
	sim.Password = "rotated"
	sim.ExpireTokens()

	_, err := client.Zones.All(context.Background(), false)
	if !IsAuthenticationError(err) {
		t.Fatalf("Zones.All() error = %v, want authentication error", err)
	}

	logins := sim.LoginCount()

	// Subsequent calls fail fast without hitting the network again
	requests := sim.RequestCount()
	_, err = client.Zones.All(context.Background(), false)
	if !IsAuthenticationError(err) {
		t.Fatalf("Zones.All() in failed state error = %v, want authentication error", err)
	}
	if sim.RequestCount() != requests {
		t.Errorf("RequestCount grew from %d to %d in failed state", requests, sim.RequestCount())
	}
	if sim.LoginCount() != logins {
		t.Errorf("LoginCount grew from %d to %d in failed state", logins, sim.LoginCount())
	}

	// A fresh Authenticate with the new password recovers the session
	sim.Password = simulator.DefaultPassword
	authenticate(t, client)
	if _, err := client.Zones.All(context.Background(), false); err != nil {
		t.Fatalf("Zones.All() after recovery error = %v", err)
	}
}

func TestRetriedCallRejectedAfterReauth(t *testing.T) {
	client, sim := newSimClient(t)
	authenticate(t, client)

	// The device keeps rejecting authorized requests even though re-login
	// succeeds and issues fresh tokens
	sim.RejectAuthorized(true)
	requests := sim.RequestCount()

	_, err := client.Zones.All(context.Background(), false)
	if !IsAuthenticationError(err) {
		t.Fatalf("Zones.All() error = %v, want authentication error", err)
	}

	// Exactly one re-login and exactly two attempts at the resource call
	if sim.LoginCount() != 2 {
		t.Errorf("LoginCount = %d, want 2", sim.LoginCount())
	}
	if got := sim.RequestCount() - requests; got != 3 {
		t.Errorf("saw %d requests, want 3 (attempt, re-login, retry)", got)
	}

	// The session is failed now: no further network traffic
	requests = sim.RequestCount()
	_, err = client.Zones.All(context.Background(), false)
	if !IsAuthenticationError(err) {
		t.Fatalf("Zones.All() in failed state error = %v, want authentication error", err)
	}
	if sim.RequestCount() != requests {
		t.Errorf("RequestCount grew from %d to %d in failed state", requests, sim.RequestCount())
	}

	// A fresh Authenticate recovers once the device behaves again
	sim.RejectAuthorized(false)
	authenticate(t, client)
	if _, err := client.Zones.All(context.Background(), false); err != nil {
		t.Fatalf("Zones.All() after recovery error = %v", err)
	}
}

func TestIdentityFetchFailureLeavesClientUnauthenticated(t *testing.T) {
	client, sim := newSimClient(t)

	// Login succeeds but the first identity endpoint returns garbage
	sim.SetMalformed("provision/name")

	_, err := client.Authenticate(context.Background(), simulator.DefaultPassword)
	if !IsResponseError(err) {
		t.Fatalf("Authenticate() error = %v, want response error", err)
	}

	// The half-opened session must not let resource calls through
	requests := sim.RequestCount()
	_, err = client.Zones.All(context.Background(), false)
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("Zones.All() error = %v, want ErrNotAuthenticated", err)
	}
	if sim.RequestCount() != requests {
		t.Errorf("RequestCount grew from %d to %d while unauthenticated", requests, sim.RequestCount())
	}
	if client.Name() != "" {
		t.Errorf("client.Name() = %q, want empty on failed authentication", client.Name())
	}
}

func TestConcurrentCallsCoalesceReauthentication(t *testing.T) {
	client, sim := newSimClient(t)
	authenticate(t, client)

	sim.ExpireTokens()

	const callers = 8
	start := make(chan struct{})
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = client.Zones.All(context.Background(), false)
		}(i)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d error = %v", i, err)
		}
	}

	// Concurrent rejections coalesce into (almost always exactly) one
	// re-login; allow minimal scheduling skew but never one per caller
	if got := sim.LoginCount(); got < 2 || got > 3 {
		t.Errorf("LoginCount = %d, want coalesced re-authentication (2)", got)
	}
}

func TestMalformedResponseBody(t *testing.T) {
	client, sim := newSimClient(t)
	authenticate(t, client)

	sim.SetMalformed("zone")

	_, err := client.Zones.All(context.Background(), false)
	if !IsResponseError(err) {
		t.Fatalf("Zones.All() error = %v, want response error", err)
	}
}

func TestUnexpectedStatusIsRequestError(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	_, err := client.Programs.Get(context.Background(), 99)
	if !IsRequestError(err) {
		t.Fatalf("Programs.Get(99) error = %v, want request error", err)
	}

	var ctrlErr *ControllerError
	if !errors.As(err, &ctrlErr) {
		t.Fatalf("error is not a *ControllerError: %v", err)
	}
	if ctrlErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", ctrlErr.StatusCode)
	}
}

func TestUnreachableControllerIsNetworkError(t *testing.T) {
	// Reserved TEST-NET-1 address, nothing listens there
	client := New("192.0.2.1", WithoutTLS(), WithTimeout(500*time.Millisecond))

	_, err := client.Authenticate(context.Background(), "pwd")
	if !IsNetworkError(err) {
		t.Fatalf("Authenticate() error = %v, want network error", err)
	}
}

func TestDeviceRejectedActionIsRequestError(t *testing.T) {
	client, sim := newSimClient(t)
	authenticate(t, client)

	sim.RejectActions(true)

	err := client.Zones.Start(context.Background(), 1, time.Minute)
	if !IsRequestError(err) {
		t.Fatalf("Zones.Start() error = %v, want request error", err)
	}
	if sim.ZoneWatering(1) {
		t.Error("zone 1 should not be watering after rejected action")
	}
}
