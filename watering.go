package rainmachine

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// dateFormat is the date layout the controller uses in URLs and payloads
const dateFormat = "2006-01-02"

// WaterLogDay is one day of watering history
type WaterLogDay struct {
	Date     string          `json:"date"`
	DayTime  int64           `json:"dayTimestamp"`
	Programs []WaterLogEntry `json:"programs"`
}

// WaterLogEntry records one program run within a logged day
type WaterLogEntry struct {
	ProgramID int               `json:"id"`
	Zones     []WaterLogZoneRun `json:"zones"`
}

// WaterLogZoneRun records how long one zone actually watered
type WaterLogZoneRun struct {
	ZoneID          int `json:"uid"`
	UserDuration    int `json:"userDuration"`
	MachineDuration int `json:"machineDuration"`
	RealDuration    int `json:"realDuration"`
}

// QueueEntry is one pending or active item in the watering queue
type QueueEntry struct {
	ProgramID       int  `json:"pid"`
	ZoneID          int  `json:"zid"`
	UserDuration    int  `json:"userDuration"`
	MachineDuration int  `json:"machineDuration"`
	Remaining       int  `json:"remaining"`
	Manual          bool `json:"manual"`
}

// PastRun is a completed program run
type PastRun struct {
	ProgramID int     `json:"pid"`
	DateTime  string  `json:"dateTime"`
	Used      float64 `json:"used"`
	ETo       float64 `json:"et0"`
	QPF       float64 `json:"qpf"`
}

// WateringService covers watering history and the global queue
type WateringService struct {
	client *Client
}

// Log returns the watering history. A zero date returns the controller's
// default window; otherwise days of history starting at date are returned.
// details selects the per-zone breakdown variant.
func (s *WateringService) Log(ctx context.Context, date time.Time, days int, details bool) ([]WaterLogDay, error) {
	endpoint := "watering/log"
	if details {
		endpoint += "/details"
	}

	if !date.IsZero() {
		if days <= 0 {
			return nil, newValidationError(fmt.Sprintf("watering log days must be a positive integer, got %d", days))
		}
		endpoint = fmt.Sprintf("%s/%s/%d", endpoint, date.Format(dateFormat), days)
	}

	body, err := s.client.request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		WaterLog *struct {
			Days *[]WaterLogDay `json:"days"`
		} `json:"waterLog"`
	}
	if err := decodeJSON(body, &envelope, "watering log"); err != nil {
		return nil, err
	}
	if envelope.WaterLog == nil || envelope.WaterLog.Days == nil {
		return nil, newResponseError("watering log response missing waterLog.days", nil)
	}
	return *envelope.WaterLog.Days, nil
}

// Queue returns the active watering queue
func (s *WateringService) Queue(ctx context.Context) ([]QueueEntry, error) {
	body, err := s.client.request(ctx, http.MethodGet, "watering/queue", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Queue *[]QueueEntry `json:"queue"`
	}
	if err := decodeJSON(body, &envelope, "watering queue"); err != nil {
		return nil, err
	}
	if envelope.Queue == nil {
		return nil, newResponseError("watering queue response missing queue", nil)
	}
	return *envelope.Queue, nil
}

// Runs returns completed program runs, optionally windowed by date/days
func (s *WateringService) Runs(ctx context.Context, date time.Time, days int) ([]PastRun, error) {
	endpoint := "watering/past"
	if !date.IsZero() {
		if days <= 0 {
			return nil, newValidationError(fmt.Sprintf("past runs days must be a positive integer, got %d", days))
		}
		endpoint = fmt.Sprintf("%s/%s/%d", endpoint, date.Format(dateFormat), days)
	}

	body, err := s.client.request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		PastValues *[]PastRun `json:"pastValues"`
	}
	if err := decodeJSON(body, &envelope, "past runs"); err != nil {
		return nil, err
	}
	if envelope.PastValues == nil {
		return nil, newResponseError("past runs response missing pastValues", nil)
	}
	return *envelope.PastValues, nil
}

// StopAll stops every running program and zone
func (s *WateringService) StopAll(ctx context.Context) error {
	return s.client.action(ctx, "watering/stopall", map[string]any{"all": true})
}
