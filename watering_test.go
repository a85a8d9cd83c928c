package rainmachine

import (
	"context"
	"testing"
	"time"
)

func TestWateringLog(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	days, err := client.Watering.Log(context.Background(), time.Time{}, 0, false)
	if err != nil {
		t.Fatalf("Watering.Log() error = %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("Watering.Log() returned %d days, want 1", len(days))
	}

	day := days[0]
	if day.Date != "2026-08-22" {
		t.Errorf("day.Date = %q, want 2026-08-22", day.Date)
	}
	if len(day.Programs) != 1 || len(day.Programs[0].Zones) != 1 {
		t.Fatalf("day.Programs = %+v, want one program with one zone run", day.Programs)
	}

	run := day.Programs[0].Zones[0]
	if run.ZoneID != 1 || run.UserDuration != 300 || run.RealDuration != 280 {
		t.Errorf("zone run = %+v, want zone 1, 300s scheduled, 280s real", run)
	}
}

func TestWateringLogWindowValidation(t *testing.T) {
	client, sim := newSimClient(t)
	authenticate(t, client)
	requests := sim.RequestCount()

	_, err := client.Watering.Log(context.Background(), time.Now(), 0, false)
	if !IsValidationError(err) {
		t.Fatalf("Watering.Log(date, 0) error = %v, want validation error", err)
	}
	_, err = client.Watering.Log(context.Background(), time.Now(), -2, true)
	if !IsValidationError(err) {
		t.Fatalf("Watering.Log(date, -2) error = %v, want validation error", err)
	}

	if sim.RequestCount() != requests {
		t.Errorf("RequestCount grew on validation failures")
	}
}

func TestWateringQueueTracksZoneStart(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)
	ctx := context.Background()

	queue, err := client.Watering.Queue(ctx)
	if err != nil {
		t.Fatalf("Watering.Queue() error = %v", err)
	}
	if len(queue) != 0 {
		t.Fatalf("Watering.Queue() = %+v, want empty before start", queue)
	}

	if err := client.Zones.Start(ctx, 1, 2*time.Minute); err != nil {
		t.Fatalf("Zones.Start() error = %v", err)
	}

	queue, err = client.Watering.Queue(ctx)
	if err != nil {
		t.Fatalf("Watering.Queue() error = %v", err)
	}
	if len(queue) != 1 || queue[0].ZoneID != 1 {
		t.Fatalf("Watering.Queue() = %+v, want zone 1 queued", queue)
	}
	if !queue[0].Manual {
		t.Error("queue entry should be marked manual")
	}
	if queue[0].Remaining != 120 {
		t.Errorf("queue remaining = %d, want 120", queue[0].Remaining)
	}
}

func TestWateringRuns(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	runs, err := client.Watering.Runs(context.Background(), time.Time{}, 0)
	if err != nil {
		t.Fatalf("Watering.Runs() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Watering.Runs() returned %d runs, want 1", len(runs))
	}
	if runs[0].ProgramID != 1 || runs[0].Used != 12.5 {
		t.Errorf("runs[0] = %+v, want pid 1 used 12.5", runs[0])
	}
}

func TestStopAllStopsEverything(t *testing.T) {
	client, sim := newSimClient(t)
	authenticate(t, client)
	ctx := context.Background()

	if err := client.Zones.Start(ctx, 1, time.Minute); err != nil {
		t.Fatalf("Zones.Start() error = %v", err)
	}
	if err := client.Programs.Start(ctx, 2); err != nil {
		t.Fatalf("Programs.Start() error = %v", err)
	}

	if err := client.Watering.StopAll(ctx); err != nil {
		t.Fatalf("Watering.StopAll() error = %v", err)
	}

	if sim.ZoneWatering(1) {
		t.Error("zone 1 still watering after StopAll")
	}
	if sim.ProgramRunning(2) {
		t.Error("program 2 still running after StopAll")
	}
}
