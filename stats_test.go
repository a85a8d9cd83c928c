package rainmachine

import (
	"context"
	"testing"
	"time"
)

func TestStatsUpcoming(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	stats, err := client.Stats.Upcoming(context.Background())
	if err != nil {
		t.Fatalf("Stats.Upcoming() error = %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("Stats.Upcoming() returned %d entries, want 1", len(stats))
	}
	if stats[0].MinTemp != 12.0 || stats[0].MaxTemp != 24.5 {
		t.Errorf("stats[0] = %+v, want mint 12.0 maxt 24.5", stats[0])
	}
}

func TestStatsOnDate(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	date := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	stats, err := client.Stats.OnDate(context.Background(), date)
	if err != nil {
		t.Fatalf("Stats.OnDate() error = %v", err)
	}
	if stats.Day != "2026-08-23" {
		t.Errorf("stats.Day = %q, want 2026-08-23", stats.Day)
	}

	if _, err := client.Stats.OnDate(context.Background(), time.Time{}); !IsValidationError(err) {
		t.Errorf("Stats.OnDate(zero) error = %v, want validation error", err)
	}
}

func TestStatsUpcomingDetails(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	details, err := client.Stats.UpcomingDetails(context.Background())
	if err != nil {
		t.Fatalf("Stats.UpcomingDetails() error = %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("UpcomingDetails() returned %d days, want 1", len(details))
	}
	if len(details[0].Programs) != 1 {
		t.Fatalf("details[0].Programs = %+v, want one program", details[0].Programs)
	}
	zone := details[0].Programs[0].Zones[0]
	if zone.ZoneID != 1 || zone.ComputedWateringTime != 280 {
		t.Errorf("zone day stats = %+v, want zone 1 computed 280", zone)
	}
}
