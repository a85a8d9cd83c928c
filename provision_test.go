package rainmachine

import (
	"context"
	"encoding/json"
	"testing"
)

func TestFlexStringDecoding(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"string", `"My House"`, "My House", false},
		{"integer", `3`, "3", false},
		{"float", `4.5`, "4.5", false},
		{"numeric string", `"4.0.925"`, "4.0.925", false},
		{"object", `{"a":1}`, "", true},
		{"array", `[1]`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f flexString
			err := json.Unmarshal([]byte(tt.input), &f)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && string(f) != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, f, tt.want)
			}
		})
	}
}

func TestProvisionSettings(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	settings, err := client.Provisioning.Settings(context.Background())
	if err != nil {
		t.Fatalf("Provisioning.Settings() error = %v", err)
	}

	if string(settings.System.DeviceName) != "My House" {
		t.Errorf("System.DeviceName = %q, want %q", settings.System.DeviceName, "My House")
	}
	if settings.Location.Timezone != "Europe/Stockholm" {
		t.Errorf("Location.Timezone = %q, want Europe/Stockholm", settings.Location.Timezone)
	}
	if settings.System.MaxWateringCoefficient != 2.0 {
		t.Errorf("MaxWateringCoefficient = %v, want 2.0", settings.System.MaxWateringCoefficient)
	}
}

func TestProvisionWifi(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	wifi, err := client.Provisioning.Wifi(context.Background())
	if err != nil {
		t.Fatalf("Provisioning.Wifi() error = %v", err)
	}
	if wifi.MACAddress == "" {
		t.Error("MACAddress is empty")
	}
	if wifi.SSID != "garden-net" {
		t.Errorf("SSID = %q, want garden-net", wifi.SSID)
	}
}

func TestProvisionAPIVersionHandlesNumericRevision(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	// The simulator reports hwVer as a bare number, matching real firmware
	info, err := client.Provisioning.APIVersion(context.Background())
	if err != nil {
		t.Fatalf("Provisioning.APIVersion() error = %v", err)
	}
	if info.APIVersion == "" {
		t.Error("APIVersion is empty")
	}
	if info.HardwareVersion != "3" {
		t.Errorf("HardwareVersion = %q, want %q", info.HardwareVersion, "3")
	}
}
