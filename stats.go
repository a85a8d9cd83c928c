package rainmachine

import (
	"context"
	"net/http"
	"time"
)

// DailyStats is the weather and watering summary for one day
type DailyStats struct {
	ID           int     `json:"id"`
	Day          string  `json:"day"`
	MinTemp      float64 `json:"mint"`
	MaxTemp      float64 `json:"maxt"`
	Icon         int     `json:"icon"`
	Percentage   float64 `json:"percentage"`
	WateringFlag int     `json:"wateringFlag"`
}

// DailyStatsDetail breaks a day's forecast down per program
type DailyStatsDetail struct {
	Day      string            `json:"day"`
	DayTime  int64             `json:"dayTimestamp"`
	Programs []ProgramDayStats `json:"programs"`
}

// ProgramDayStats is the per-program share of a detailed daily forecast
type ProgramDayStats struct {
	ProgramID int            `json:"id"`
	Zones     []ZoneDayStats `json:"zones"`
}

// ZoneDayStats is the computed watering need for one zone on one day
type ZoneDayStats struct {
	ZoneID                int `json:"id"`
	ScheduledWateringTime int `json:"scheduledWateringTime"`
	ComputedWateringTime  int `json:"computedWateringTime"`
	AvailableWater        int `json:"availableWater"`
}

// StatsService reads daily watering statistics and forecasts
type StatsService struct {
	client *Client
}

// OnDate returns the statistics for a single day
func (s *StatsService) OnDate(ctx context.Context, date time.Time) (DailyStats, error) {
	if date.IsZero() {
		return DailyStats{}, newValidationError("stats date is required")
	}

	body, err := s.client.request(ctx, http.MethodGet, "dailystats/"+date.Format(dateFormat), nil)
	if err != nil {
		return DailyStats{}, err
	}

	var stats DailyStats
	if err := decodeJSON(body, &stats, "daily stats"); err != nil {
		return DailyStats{}, err
	}
	return stats, nil
}

// Upcoming returns the daily summaries for the forecast window
func (s *StatsService) Upcoming(ctx context.Context) ([]DailyStats, error) {
	body, err := s.client.request(ctx, http.MethodGet, "dailystats", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		DailyStats *[]DailyStats `json:"DailyStats"`
	}
	if err := decodeJSON(body, &envelope, "upcoming stats"); err != nil {
		return nil, err
	}
	if envelope.DailyStats == nil {
		return nil, newResponseError("upcoming stats response missing DailyStats", nil)
	}
	return *envelope.DailyStats, nil
}

// UpcomingDetails returns the forecast window broken down per program
func (s *StatsService) UpcomingDetails(ctx context.Context) ([]DailyStatsDetail, error) {
	body, err := s.client.request(ctx, http.MethodGet, "dailystats/details", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		DailyStatsDetails *[]DailyStatsDetail `json:"DailyStatsDetails"`
	}
	if err := decodeJSON(body, &envelope, "upcoming stats details"); err != nil {
		return nil, err
	}
	if envelope.DailyStatsDetails == nil {
		return nil, newResponseError("upcoming stats details response missing DailyStatsDetails", nil)
	}
	return *envelope.DailyStatsDetails, nil
}
