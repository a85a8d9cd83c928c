package rainmachine

import (
	"context"
	"testing"
)

func TestProgramsAll(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	programs, err := client.Programs.All(context.Background())
	if err != nil {
		t.Fatalf("Programs.All() error = %v", err)
	}
	if len(programs) != 2 {
		t.Fatalf("Programs.All() returned %d programs, want 2", len(programs))
	}

	if programs[0].UID != 1 || programs[0].Name != "Morning" {
		t.Errorf("programs[0] = %+v, want uid 1 %q", programs[0], "Morning")
	}
	if programs[0].Status != ProgramStatusIdle {
		t.Errorf("programs[0].Status = %d, want idle", programs[0].Status)
	}
}

func TestProgramGet(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	program, err := client.Programs.Get(context.Background(), 2)
	if err != nil {
		t.Fatalf("Programs.Get() error = %v", err)
	}
	if program.Name != "Evening" || program.StartTime != "19:30" {
		t.Errorf("Programs.Get(2) = %+v, want Evening at 19:30", program)
	}

	if _, err := client.Programs.Get(context.Background(), 0); !IsValidationError(err) {
		t.Errorf("Programs.Get(0) error = %v, want validation error", err)
	}
}

func TestProgramNext(t *testing.T) {
	client, _ := newSimClient(t)
	authenticate(t, client)

	runs, err := client.Programs.Next(context.Background())
	if err != nil {
		t.Fatalf("Programs.Next() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Programs.Next() returned %d entries, want 2", len(runs))
	}
	if runs[0].ProgramID != 1 || runs[0].StartTime != "06:00" {
		t.Errorf("runs[0] = %+v, want pid 1 at 06:00", runs[0])
	}
}

func TestProgramStartRunningStop(t *testing.T) {
	client, sim := newSimClient(t)
	authenticate(t, client)
	ctx := context.Background()

	running, err := client.Programs.Running(ctx)
	if err != nil {
		t.Fatalf("Programs.Running() error = %v", err)
	}
	if len(running) != 0 {
		t.Fatalf("Programs.Running() = %+v, want none before start", running)
	}

	if err := client.Programs.Start(ctx, 1); err != nil {
		t.Fatalf("Programs.Start() error = %v", err)
	}
	if !sim.ProgramRunning(1) {
		t.Fatal("program 1 should be running after Start")
	}

	running, err = client.Programs.Running(ctx)
	if err != nil {
		t.Fatalf("Programs.Running() error = %v", err)
	}
	if len(running) != 1 || running[0].UID != 1 {
		t.Fatalf("Programs.Running() = %+v, want only program 1", running)
	}
	if running[0].Status != ProgramStatusRunning {
		t.Errorf("running program status = %d, want %d", running[0].Status, ProgramStatusRunning)
	}

	if err := client.Programs.Stop(ctx, 1); err != nil {
		t.Fatalf("Programs.Stop() error = %v", err)
	}
	if sim.ProgramRunning(1) {
		t.Error("program 1 should be idle after Stop")
	}
}

func TestProgramActionRejected(t *testing.T) {
	client, sim := newSimClient(t)
	authenticate(t, client)

	sim.RejectActions(true)

	err := client.Programs.Start(context.Background(), 1)
	if !IsRequestError(err) {
		t.Fatalf("Programs.Start() error = %v, want request error", err)
	}
	if sim.ProgramRunning(1) {
		t.Error("program 1 should not run after rejected action")
	}
}
