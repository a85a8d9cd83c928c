package rainmachine

import (
	"context"
	"strings"
	"testing"
)

func TestDiagnosticsCurrent(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	diag, err := client.Diagnostics.Current(context.Background())
	if err != nil {
		t.Fatalf("Diagnostics.Current() error = %v", err)
	}
	if diag.UptimeSeconds != 259200 {
		t.Errorf("UptimeSeconds = %d, want 259200", diag.UptimeSeconds)
	}
	if diag.Uptime != "3 days" {
		t.Errorf("Uptime = %q, want %q", diag.Uptime, "3 days")
	}
	if !diag.HasWifi {
		t.Error("HasWifi = false, want true")
	}
}

func TestDiagnosticsLog(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	log, err := client.Diagnostics.Log(context.Background())
	if err != nil {
		t.Fatalf("Diagnostics.Log() error = %v", err)
	}
	if !strings.Contains(log, "sprinkler daemon started") {
		t.Errorf("Log() = %q, want daemon start line", log)
	}
}
