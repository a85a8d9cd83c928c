package rainmachine

import (
	"context"
	"net/http"
)

// Diagnostics is the controller's self-reported health snapshot
type Diagnostics struct {
	HasWifi            bool    `json:"hasWifi"`
	NetworkStatus      bool    `json:"networkStatus"`
	CloudStatus        int     `json:"cloudStatus"`
	Uptime             string  `json:"uptime"`
	UptimeSeconds      int64   `json:"uptimeSeconds"`
	MemUsageKB         int64   `json:"memUsage"`
	CPUUsage           float64 `json:"cpuUsage"`
	LastCheckTimestamp int64   `json:"lastCheckTimestamp"`
	WizardHasRun       bool    `json:"wizardHasRun"`
}

// DiagnosticsService reads controller health data
type DiagnosticsService struct {
	client *Client
}

// Current returns the controller's health snapshot
func (s *DiagnosticsService) Current(ctx context.Context) (Diagnostics, error) {
	body, err := s.client.request(ctx, http.MethodGet, "diag", nil)
	if err != nil {
		return Diagnostics{}, err
	}

	var wire struct {
		UptimeSeconds *int64 `json:"uptimeSeconds"`
		Diagnostics
	}
	if err := decodeJSON(body, &wire, "diagnostics"); err != nil {
		return Diagnostics{}, err
	}
	if wire.UptimeSeconds == nil {
		return Diagnostics{}, newResponseError("diagnostics response missing uptimeSeconds", nil)
	}

	diag := wire.Diagnostics
	diag.UptimeSeconds = *wire.UptimeSeconds
	return diag, nil
}

// Log returns the controller's diagnostic log as raw text
func (s *DiagnosticsService) Log(ctx context.Context) (string, error) {
	body, err := s.client.request(ctx, http.MethodGet, "diag/log", nil)
	if err != nil {
		return "", err
	}

	var envelope struct {
		Log *string `json:"log"`
	}
	if err := decodeJSON(body, &envelope, "diagnostics log"); err != nil {
		return "", err
	}
	if envelope.Log == nil {
		return "", newResponseError("diagnostics log response missing log", nil)
	}
	return *envelope.Log, nil
}
