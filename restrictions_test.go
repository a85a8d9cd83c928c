package rainmachine

import (
	"context"
	"testing"
)

func TestRestrictionsCurrent(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	current, err := client.Restrictions.Current(context.Background())
	if err != nil {
		t.Fatalf("Restrictions.Current() error = %v", err)
	}
	if current.RainDelay {
		t.Error("RainDelay = true, want false on a fresh controller")
	}
	if current.Freeze {
		t.Error("Freeze = true, want false")
	}
}

func TestRainDelayRoundTrip(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)
	ctx := context.Background()

	delay, err := client.Restrictions.RainDelay(ctx)
	if err != nil {
		t.Fatalf("Restrictions.RainDelay() error = %v", err)
	}
	if delay.DelayCounter != 0 {
		t.Fatalf("DelayCounter = %d, want 0", delay.DelayCounter)
	}

	if err := client.Restrictions.SetRainDelay(ctx, 2); err != nil {
		t.Fatalf("Restrictions.SetRainDelay(2) error = %v", err)
	}

	delay, err = client.Restrictions.RainDelay(ctx)
	if err != nil {
		t.Fatalf("Restrictions.RainDelay() error = %v", err)
	}
	if delay.DelayCounter != 2*86400 {
		t.Errorf("DelayCounter = %d, want %d", delay.DelayCounter, 2*86400)
	}

	current, err := client.Restrictions.Current(ctx)
	if err != nil {
		t.Fatalf("Restrictions.Current() error = %v", err)
	}
	if !current.RainDelay {
		t.Error("Current().RainDelay = false after setting a delay")
	}

	// Zero clears the delay
	if err := client.Restrictions.SetRainDelay(ctx, 0); err != nil {
		t.Fatalf("Restrictions.SetRainDelay(0) error = %v", err)
	}
	delay, err = client.Restrictions.RainDelay(ctx)
	if err != nil {
		t.Fatalf("Restrictions.RainDelay() error = %v", err)
	}
	if delay.DelayCounter != 0 {
		t.Errorf("DelayCounter = %d after clearing, want 0", delay.DelayCounter)
	}
}

func TestSetRainDelayValidation(t *testing.T) {
	client, sim := newSimClient(t)
	authenticate(t, client)
	requests := sim.RequestCount()

	err := client.Restrictions.SetRainDelay(context.Background(), -1)
	if !IsValidationError(err) {
		t.Fatalf("SetRainDelay(-1) error = %v, want validation error", err)
	}
	if sim.RequestCount() != requests {
		t.Error("RequestCount grew on validation failure")
	}
}

func TestRestrictionsHourlyAndUniversal(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)
	ctx := context.Background()

	hourly, err := client.Restrictions.Hourly(ctx)
	if err != nil {
		t.Fatalf("Restrictions.Hourly() error = %v", err)
	}
	if len(hourly) != 0 {
		t.Errorf("Hourly() = %+v, want empty", hourly)
	}

	universal, err := client.Restrictions.Universal(ctx)
	if err != nil {
		t.Fatalf("Restrictions.Universal() error = %v", err)
	}
	if !universal.FreezeProtectEnabled {
		t.Error("FreezeProtectEnabled = false, want true")
	}
	if universal.FreezeProtectTemp != 2.0 {
		t.Errorf("FreezeProtectTemp = %v, want 2.0", universal.FreezeProtectTemp)
	}
}
