package rainmachine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// flexString decodes a JSON value that some firmware revisions emit as a
// string and others as a bare number (device names, hardware revisions).
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}

	return fmt.Errorf("value %s is neither a string nor a number", strings.TrimSpace(string(data)))
}

// WifiSettings describes the controller's network interface
type WifiSettings struct {
	MACAddress     string `json:"macAddress"`
	SSID           string `json:"ssid"`
	IPAddress      string `json:"ipAddress"`
	NetmaskAddress string `json:"netmaskAddress"`
	Interface      string `json:"interface"`
	Mode           string `json:"mode"`
	HasClientLink  bool   `json:"hasClientLink"`
}

// VersionInfo carries the controller's API, hardware and firmware versions
type VersionInfo struct {
	APIVersion      string
	HardwareVersion string
	SoftwareVersion string
}

// SystemSettings is the system half of the provisioning blob
type SystemSettings struct {
	DeviceName               flexString `json:"netName"`
	HTTPEnabled              bool       `json:"httpEnabled"`
	UseRainSensor            bool       `json:"useRainSensor"`
	RainSensorSnoozeDuration int        `json:"rainSensorSnoozeDuration"`
	MaxWateringCoefficient   float64    `json:"maxWateringCoef"`
	ZoneDuration             []int      `json:"zoneDuration"`
	MasterValveBefore        int        `json:"masterValveBefore"`
	MasterValveAfter         int        `json:"masterValveAfter"`
}

// LocationSettings is the location half of the provisioning blob
type LocationSettings struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
	Timezone  string  `json:"timezone"`
}

// ProvisionSettings is the full provisioning snapshot
type ProvisionSettings struct {
	System   SystemSettings
	Location LocationSettings
}

// ProvisionService reads the controller's provisioning data
type ProvisionService struct {
	client *Client
}

// Settings returns the full system and location provisioning snapshot
func (s *ProvisionService) Settings(ctx context.Context) (ProvisionSettings, error) {
	body, err := s.client.request(ctx, http.MethodGet, "provision", nil)
	if err != nil {
		return ProvisionSettings{}, err
	}

	var envelope struct {
		System   *SystemSettings   `json:"system"`
		Location *LocationSettings `json:"location"`
	}
	if err := decodeJSON(body, &envelope, "provision settings"); err != nil {
		return ProvisionSettings{}, err
	}
	if envelope.System == nil || envelope.Location == nil {
		return ProvisionSettings{}, newResponseError("provision settings response missing system or location", nil)
	}

	return ProvisionSettings{
		System:   *envelope.System,
		Location: *envelope.Location,
	}, nil
}

// Name returns the controller's configured name. Some firmware returns the
// name as a number; it is always surfaced as a string.
func (s *ProvisionService) Name(ctx context.Context) (string, error) {
	body, err := s.client.request(ctx, http.MethodGet, "provision/name", nil)
	if err != nil {
		return "", err
	}

	var envelope struct {
		Name *flexString `json:"name"`
	}
	if err := decodeJSON(body, &envelope, "provision name"); err != nil {
		return "", err
	}
	if envelope.Name == nil {
		return "", newResponseError("provision name response missing name", nil)
	}
	return string(*envelope.Name), nil
}

// Wifi returns the controller's network settings
func (s *ProvisionService) Wifi(ctx context.Context) (WifiSettings, error) {
	body, err := s.client.request(ctx, http.MethodGet, "provision/wifi", nil)
	if err != nil {
		return WifiSettings{}, err
	}

	var wire struct {
		MACAddress *string `json:"macAddress"`
		WifiSettings
	}
	if err := decodeJSON(body, &wire, "provision wifi"); err != nil {
		return WifiSettings{}, err
	}
	if wire.MACAddress == nil || *wire.MACAddress == "" {
		return WifiSettings{}, newResponseError("provision wifi response missing macAddress", nil)
	}

	settings := wire.WifiSettings
	settings.MACAddress = *wire.MACAddress
	return settings, nil
}

// APIVersion returns the controller's API, hardware and firmware versions
func (s *ProvisionService) APIVersion(ctx context.Context) (VersionInfo, error) {
	body, err := s.client.request(ctx, http.MethodGet, "apiVer", nil)
	if err != nil {
		return VersionInfo{}, err
	}

	var wire struct {
		APIVer *flexString `json:"apiVer"`
		HWVer  *flexString `json:"hwVer"`
		SWVer  *flexString `json:"swVer"`
	}
	if err := decodeJSON(body, &wire, "api version"); err != nil {
		return VersionInfo{}, err
	}
	if wire.APIVer == nil {
		return VersionInfo{}, newResponseError("api version response missing apiVer", nil)
	}

	info := VersionInfo{APIVersion: string(*wire.APIVer)}
	if wire.HWVer != nil {
		info.HardwareVersion = string(*wire.HWVer)
	}
	if wire.SWVer != nil {
		info.SoftwareVersion = string(*wire.SWVer)
	}
	return info, nil
}
