package rainmachine

import (
	"context"
	"fmt"
	"net/http"
)

// Program status values as reported by the controller
const (
	ProgramStatusIdle    = 0
	ProgramStatusRunning = 1
	ProgramStatusPending = 2
)

// Program is a schedulable watering configuration on the controller
type Program struct {
	UID       int    `json:"uid"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	Status    int    `json:"status"`
	StartTime string `json:"startTime"`
	NextRun   string `json:"nextRun"`
}

// ProgramNextRun pairs a program id with its next scheduled start
type ProgramNextRun struct {
	ProgramID int    `json:"pid"`
	StartTime string `json:"startTime"`
}

// programRecord is the wire shape of a program; required fields are
// pointers so an incomplete record is rejected instead of silently zeroed
type programRecord struct {
	UID       *int    `json:"uid"`
	Name      *string `json:"name"`
	Active    bool    `json:"active"`
	Status    int     `json:"status"`
	StartTime string  `json:"startTime"`
	NextRun   string  `json:"nextRun"`
}

func (r programRecord) toProgram() (Program, error) {
	if r.UID == nil || r.Name == nil {
		return Program{}, newResponseError("program record is missing uid or name", nil)
	}
	return Program{
		UID:       *r.UID,
		Name:      *r.Name,
		Active:    r.Active,
		Status:    r.Status,
		StartTime: r.StartTime,
		NextRun:   r.NextRun,
	}, nil
}

type programListEnvelope struct {
	Programs *[]programRecord `json:"programs"`
}

// ProgramService reads and controls watering programs
type ProgramService struct {
	client *Client
}

// All returns every program configured on the controller
func (s *ProgramService) All(ctx context.Context) ([]Program, error) {
	body, err := s.client.request(ctx, http.MethodGet, "program", nil)
	if err != nil {
		return nil, err
	}
	return decodeProgramList(body, "program list")
}

// Get returns a single program by id
func (s *ProgramService) Get(ctx context.Context, id int) (Program, error) {
	if err := validateID(id, "program"); err != nil {
		return Program{}, err
	}

	body, err := s.client.request(ctx, http.MethodGet, fmt.Sprintf("program/%d", id), nil)
	if err != nil {
		return Program{}, err
	}

	var record programRecord
	if err := decodeJSON(body, &record, "program"); err != nil {
		return Program{}, err
	}
	return record.toProgram()
}

// Next returns the next scheduled run for each enabled program
func (s *ProgramService) Next(ctx context.Context) ([]ProgramNextRun, error) {
	body, err := s.client.request(ctx, http.MethodGet, "program/nextrun", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		NextRuns *[]ProgramNextRun `json:"nextRuns"`
	}
	if err := decodeJSON(body, &envelope, "program next-run"); err != nil {
		return nil, err
	}
	if envelope.NextRuns == nil {
		return nil, newResponseError("program next-run response missing nextRuns", nil)
	}
	return *envelope.NextRuns, nil
}

// Running returns the programs that are currently watering
func (s *ProgramService) Running(ctx context.Context) ([]Program, error) {
	body, err := s.client.request(ctx, http.MethodGet, "watering/program", nil)
	if err != nil {
		return nil, err
	}
	return decodeProgramList(body, "running program")
}

// Start runs a program immediately
func (s *ProgramService) Start(ctx context.Context, id int) error {
	if err := validateID(id, "program"); err != nil {
		return err
	}
	return s.client.action(ctx, fmt.Sprintf("program/%d/start", id), map[string]any{"pid": id})
}

// Stop stops a running program
func (s *ProgramService) Stop(ctx context.Context, id int) error {
	if err := validateID(id, "program"); err != nil {
		return err
	}
	return s.client.action(ctx, fmt.Sprintf("program/%d/stop", id), map[string]any{"pid": id})
}

func decodeProgramList(body []byte, what string) ([]Program, error) {
	var envelope programListEnvelope
	if err := decodeJSON(body, &envelope, what); err != nil {
		return nil, err
	}
	if envelope.Programs == nil {
		return nil, newResponseError(fmt.Sprintf("%s response missing programs", what), nil)
	}

	programs := make([]Program, 0, len(*envelope.Programs))
	for _, record := range *envelope.Programs {
		program, err := record.toProgram()
		if err != nil {
			return nil, err
		}
		programs = append(programs, program)
	}
	return programs, nil
}
