package rainmachine

import (
	"context"
	"testing"
)

func TestParsersCurrent(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	parsers, err := client.Parsers.Current(context.Background())
	if err != nil {
		t.Fatalf("Parsers.Current() error = %v", err)
	}
	if len(parsers) != 1 {
		t.Fatalf("Parsers.Current() returned %d parsers, want 1", len(parsers))
	}

	parser := parsers[0]
	if parser.UID != 1 || parser.Name != "NOAA Parser" {
		t.Errorf("parser = %+v, want uid 1 NOAA Parser", parser)
	}
	if !parser.Enabled {
		t.Error("parser.Enabled = false, want true")
	}
	if !parser.HasForecast {
		t.Error("parser.HasForecast = false, want true")
	}
}
