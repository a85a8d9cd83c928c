package cliconfig

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestGetConfigDir(t *testing.T) {
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if configDir == "" {
		t.Error("GetConfigDir() returned empty string")
	}

	if !strings.Contains(configDir, "rainctl") {
		t.Errorf("GetConfigDir() = %v, should contain 'rainctl'", configDir)
	}

	switch runtime.GOOS {
	case "windows":
		if !strings.Contains(configDir, "AppData") && !strings.Contains(configDir, "Local") {
			t.Errorf("Windows config dir should contain 'AppData' or 'Local', got: %v", configDir)
		}
	case "darwin", "linux":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}

	if reg.Controllers == nil {
		t.Error("NewRegistry().Controllers should not be nil")
	}

	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}

	if !reg.Preferences.AutoDiscover {
		t.Error("NewRegistry().Preferences.AutoDiscover should be true by default")
	}

	if reg.Preferences.ScanTimeout != 10 {
		t.Errorf("NewRegistry().Preferences.ScanTimeout = %v, want 10", reg.Preferences.ScanTimeout)
	}

	if reg.Preferences.DefaultPort != 8080 {
		t.Errorf("NewRegistry().Preferences.DefaultPort = %v, want 8080", reg.Preferences.DefaultPort)
	}
}

func TestRegistryEnsureController(t *testing.T) {
	reg := NewRegistry()

	// First call should create the entry
	first := reg.EnsureController("ab:cd:ef:12:34:56")
	if first == nil {
		t.Fatal("EnsureController() returned nil")
	}

	// Second call should return the same entry
	second := reg.EnsureController("ab:cd:ef:12:34:56")
	if first != second {
		t.Error("EnsureController() should return same instance for same MAC")
	}

	other := reg.EnsureController("11:22:33:44:55:66")
	if first == other {
		t.Error("EnsureController() should create new instance for different MAC")
	}
}

func TestRegistryUpdateLastSeen(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateLastSeen("ab:cd:ef:12:34:56", "192.168.1.100", 8080)
	after := time.Now()

	controller := reg.GetController("ab:cd:ef:12:34:56")
	if controller == nil {
		t.Fatal("Controller should exist after UpdateLastSeen()")
	}

	if controller.LastHost != "192.168.1.100" {
		t.Errorf("LastHost = %v, want 192.168.1.100", controller.LastHost)
	}

	if controller.LastPort != 8080 {
		t.Errorf("LastPort = %v, want 8080", controller.LastPort)
	}

	if controller.LastSeen.Before(before) || controller.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", controller.LastSeen, before, after)
	}
}

func TestRegistrySetZoneLabel(t *testing.T) {
	reg := NewRegistry()

	reg.SetZoneLabel("ab:cd:ef:12:34:56", 1, "Front Lawn")

	controller := reg.GetController("ab:cd:ef:12:34:56")
	if controller == nil {
		t.Fatal("Controller should exist after SetZoneLabel()")
	}

	if controller.Zones[1] != "Front Lawn" {
		t.Errorf("Zones[1] = %v, want 'Front Lawn'", controller.Zones[1])
	}
}

func TestRegistrySetNickname(t *testing.T) {
	reg := NewRegistry()

	reg.SetNickname("ab:cd:ef:12:34:56", "Garden")

	controller := reg.GetController("ab:cd:ef:12:34:56")
	if controller == nil {
		t.Fatal("Controller should exist after SetNickname()")
	}

	if controller.Nickname != "Garden" {
		t.Errorf("Nickname = %v, want 'Garden'", controller.Nickname)
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "rainctl-config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	reg := NewRegistry()
	reg.SetNickname("ab:cd:ef:12:34:56", "Garden")
	reg.SetZoneLabel("ab:cd:ef:12:34:56", 1, "Front Lawn")
	reg.UpdateLastSeen("ab:cd:ef:12:34:56", "192.168.1.100", 8080)

	data, err := yaml.Marshal(reg)
	if err != nil {
		t.Fatalf("Failed to marshal registry: %v", err)
	}

	testConfigPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(testConfigPath, data, 0600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	raw, err := os.ReadFile(testConfigPath)
	if err != nil {
		t.Fatalf("Failed to read test config: %v", err)
	}

	var loaded Registry
	if err := yaml.Unmarshal(raw, &loaded); err != nil {
		t.Fatalf("Failed to parse test config: %v", err)
	}

	controller := loaded.GetController("ab:cd:ef:12:34:56")
	if controller == nil {
		t.Fatal("Controller should exist in loaded registry")
	}

	if controller.Nickname != "Garden" {
		t.Errorf("Loaded nickname = %v, want 'Garden'", controller.Nickname)
	}

	if controller.Zones[1] != "Front Lawn" {
		t.Errorf("Loaded zone label = %v, want 'Front Lawn'", controller.Zones[1])
	}

	if controller.LastHost != "192.168.1.100" {
		t.Errorf("Loaded LastHost = %v, want 192.168.1.100", controller.LastHost)
	}
}
