package rainmachine

import (
	"context"
	"fmt"
	"net/http"
)

// CurrentRestrictions is the snapshot of restrictions in effect right now
type CurrentRestrictions struct {
	Hourly           bool `json:"hourly"`
	Freeze           bool `json:"freeze"`
	Month            bool `json:"month"`
	WeekDay          bool `json:"weekDay"`
	RainDelay        bool `json:"rainDelay"`
	RainDelayCounter int  `json:"rainDelayCounter"`
	RainSensor       bool `json:"rainSensor"`
}

// HourlyRestriction is a restriction window active over the next hour
type HourlyRestriction struct {
	UID      int    `json:"uid"`
	Name     string `json:"name"`
	DayStart int    `json:"dayStartMinute"`
	Minutes  int    `json:"minuteDuration"`
	WeekDays string `json:"weekDays"`
	Interval bool   `json:"interval"`
}

// RainDelay reports the remaining rain-delay counter in seconds
type RainDelay struct {
	DelayCounter int `json:"delayCounter"`
}

// UniversalRestrictions are the always-active global restrictions
type UniversalRestrictions struct {
	HotDaysExtraWatering bool    `json:"hotDaysExtraWatering"`
	FreezeProtectEnabled bool    `json:"freezeProtectEnabled"`
	FreezeProtectTemp    float64 `json:"freezeProtectTemp"`
	NoWaterInWeekDays    string  `json:"noWaterInWeekDays"`
	NoWaterInMonths      string  `json:"noWaterInMonths"`
	RainDelayStartTime   int64   `json:"rainDelayStartTime"`
	RainDelayDuration    int64   `json:"rainDelayDuration"`
}

// RestrictionService reads watering restrictions and manages rain delays
type RestrictionService struct {
	client *Client
}

// Current returns the restrictions active at this moment
func (s *RestrictionService) Current(ctx context.Context) (CurrentRestrictions, error) {
	body, err := s.client.request(ctx, http.MethodGet, "restrictions/currently", nil)
	if err != nil {
		return CurrentRestrictions{}, err
	}

	var current CurrentRestrictions
	if err := decodeJSON(body, &current, "current restrictions"); err != nil {
		return CurrentRestrictions{}, err
	}
	return current, nil
}

// Hourly returns the restrictions active over the next hour
func (s *RestrictionService) Hourly(ctx context.Context) ([]HourlyRestriction, error) {
	body, err := s.client.request(ctx, http.MethodGet, "restrictions/hourly", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		HourlyRestrictions *[]HourlyRestriction `json:"hourlyRestrictions"`
	}
	if err := decodeJSON(body, &envelope, "hourly restrictions"); err != nil {
		return nil, err
	}
	if envelope.HourlyRestrictions == nil {
		return nil, newResponseError("hourly restrictions response missing hourlyRestrictions", nil)
	}
	return *envelope.HourlyRestrictions, nil
}

// RainDelay returns the current rain-delay state
func (s *RestrictionService) RainDelay(ctx context.Context) (RainDelay, error) {
	body, err := s.client.request(ctx, http.MethodGet, "restrictions/raindelay", nil)
	if err != nil {
		return RainDelay{}, err
	}

	var envelope struct {
		DelayCounter *int `json:"delayCounter"`
	}
	if err := decodeJSON(body, &envelope, "rain delay"); err != nil {
		return RainDelay{}, err
	}
	if envelope.DelayCounter == nil {
		return RainDelay{}, newResponseError("rain delay response missing delayCounter", nil)
	}
	return RainDelay{DelayCounter: *envelope.DelayCounter}, nil
}

// Universal returns the global, always-active restrictions
func (s *RestrictionService) Universal(ctx context.Context) (UniversalRestrictions, error) {
	body, err := s.client.request(ctx, http.MethodGet, "restrictions/global", nil)
	if err != nil {
		return UniversalRestrictions{}, err
	}

	var universal UniversalRestrictions
	if err := decodeJSON(body, &universal, "universal restrictions"); err != nil {
		return UniversalRestrictions{}, err
	}
	return universal, nil
}

// SetRainDelay pauses all watering for the given number of days.
// Zero clears an active delay.
func (s *RestrictionService) SetRainDelay(ctx context.Context, days int) error {
	if days < 0 {
		return newValidationError(fmt.Sprintf("rain delay days cannot be negative, got %d", days))
	}
	return s.client.action(ctx, "restrictions/raindelay", map[string]any{"rainDelay": days})
}
