package rainmachine

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Zone state values as reported by the controller
const (
	ZoneStateIdle     = 0
	ZoneStateWatering = 1
	ZoneStateQueued   = 2
)

// Zone is an individually controllable watering output
type Zone struct {
	UID             int    `json:"uid"`
	Name            string `json:"name"`
	State           int    `json:"state"`
	Active          bool   `json:"active"`
	UserDuration    int    `json:"userDuration"`
	MachineDuration int    `json:"machineDuration"`
	Remaining       int    `json:"remaining"`
	Master          bool   `json:"master"`

	// Details holds advanced properties and is populated only when a
	// read was issued with details enabled
	Details *ZoneDetails `json:"-"`
}

// ZoneDetails are the advanced per-zone properties from zone/properties
type ZoneDetails struct {
	Type          int     `json:"type"`
	SunExposure   int     `json:"sun"`
	Slope         int     `json:"slope"`
	SoilType      int     `json:"group_id"`
	SprinklerHead int     `json:"sprinklerHead"`
	SavingsLevel  float64 `json:"savings"`
}

// zoneRecord is the wire shape of a zone entry
type zoneRecord struct {
	UID             *int    `json:"uid"`
	Name            *string `json:"name"`
	State           int     `json:"state"`
	Active          *bool   `json:"active"`
	UserDuration    int     `json:"userDuration"`
	MachineDuration int     `json:"machineDuration"`
	Remaining       int     `json:"remaining"`
	Master          bool    `json:"master"`
}

func (r zoneRecord) toZone() (Zone, error) {
	if r.UID == nil || r.Name == nil {
		return Zone{}, newResponseError("zone record is missing uid or name", nil)
	}

	zone := Zone{
		UID:             *r.UID,
		Name:            *r.Name,
		State:           r.State,
		UserDuration:    r.UserDuration,
		MachineDuration: r.MachineDuration,
		Remaining:       r.Remaining,
		Master:          r.Master,
	}

	// 1st generation controllers omit the active flag; a zone that is
	// reported at all is active on those units
	if r.Active != nil {
		zone.Active = *r.Active
	} else {
		zone.Active = true
	}

	return zone, nil
}

type zoneListEnvelope struct {
	Zones *[]zoneRecord `json:"zones"`
}

// zonePropertiesRecord pairs a uid with the advanced properties
type zonePropertiesRecord struct {
	UID *int `json:"uid"`
	ZoneDetails
}

// ZoneService reads and controls watering zones
type ZoneService struct {
	client *Client
}

// All returns every zone on the controller. With details enabled the
// advanced zone properties are fetched as well and merged by uid.
func (s *ZoneService) All(ctx context.Context, details bool) ([]Zone, error) {
	body, err := s.client.request(ctx, http.MethodGet, "zone", nil)
	if err != nil {
		return nil, err
	}

	zones, err := decodeZoneList(body, "zone list")
	if err != nil {
		return nil, err
	}

	if details {
		properties, err := s.properties(ctx)
		if err != nil {
			return nil, err
		}
		for i := range zones {
			if detail, ok := properties[zones[i].UID]; ok {
				zones[i].Details = detail
			}
		}
	}

	return zones, nil
}

// Get returns a single zone by id, optionally with advanced properties
func (s *ZoneService) Get(ctx context.Context, id int, details bool) (Zone, error) {
	if err := validateID(id, "zone"); err != nil {
		return Zone{}, err
	}

	body, err := s.client.request(ctx, http.MethodGet, fmt.Sprintf("zone/%d", id), nil)
	if err != nil {
		return Zone{}, err
	}

	var record zoneRecord
	if err := decodeJSON(body, &record, "zone"); err != nil {
		return Zone{}, err
	}
	zone, err := record.toZone()
	if err != nil {
		return Zone{}, err
	}

	if details {
		body, err := s.client.request(ctx, http.MethodGet, fmt.Sprintf("zone/%d/properties", id), nil)
		if err != nil {
			return Zone{}, err
		}
		var detail ZoneDetails
		if err := decodeJSON(body, &detail, "zone properties"); err != nil {
			return Zone{}, err
		}
		zone.Details = &detail
	}

	return zone, nil
}

// Running returns the zones that are currently watering or queued
func (s *ZoneService) Running(ctx context.Context) ([]Zone, error) {
	body, err := s.client.request(ctx, http.MethodGet, "watering/zone", nil)
	if err != nil {
		return nil, err
	}
	return decodeZoneList(body, "running zone")
}

// Start waters a zone for the given duration. The zone id is carried in
// the body as well as the path to accommodate 1st generation controllers.
func (s *ZoneService) Start(ctx context.Context, id int, duration time.Duration) error {
	if err := validateID(id, "zone"); err != nil {
		return err
	}
	seconds := int(duration / time.Second)
	if seconds <= 0 {
		return newValidationError(fmt.Sprintf("zone watering duration must be at least one second, got %s", duration))
	}
	return s.client.action(ctx, fmt.Sprintf("zone/%d/start", id), map[string]any{
		"time": seconds,
		"zid":  id,
	})
}

// Stop stops a running zone
func (s *ZoneService) Stop(ctx context.Context, id int) error {
	if err := validateID(id, "zone"); err != nil {
		return err
	}
	return s.client.action(ctx, fmt.Sprintf("zone/%d/stop", id), map[string]any{"zid": id})
}

// Enable marks a zone active so programs may water it
func (s *ZoneService) Enable(ctx context.Context, id int) error {
	return s.setActive(ctx, id, true)
}

// Disable marks a zone inactive
func (s *ZoneService) Disable(ctx context.Context, id int) error {
	return s.setActive(ctx, id, false)
}

func (s *ZoneService) setActive(ctx context.Context, id int, active bool) error {
	if err := validateID(id, "zone"); err != nil {
		return err
	}
	return s.client.action(ctx, fmt.Sprintf("zone/%d/properties", id), map[string]any{"active": active})
}

// properties fetches the advanced properties for all zones keyed by uid
func (s *ZoneService) properties(ctx context.Context) (map[int]*ZoneDetails, error) {
	body, err := s.client.request(ctx, http.MethodGet, "zone/properties", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Zones *[]zonePropertiesRecord `json:"zones"`
	}
	if err := decodeJSON(body, &envelope, "zone properties"); err != nil {
		return nil, err
	}
	if envelope.Zones == nil {
		return nil, newResponseError("zone properties response missing zones", nil)
	}

	properties := make(map[int]*ZoneDetails, len(*envelope.Zones))
	for _, record := range *envelope.Zones {
		if record.UID == nil {
			return nil, newResponseError("zone properties record is missing uid", nil)
		}
		detail := record.ZoneDetails
		properties[*record.UID] = &detail
	}
	return properties, nil
}

func decodeZoneList(body []byte, what string) ([]Zone, error) {
	var envelope zoneListEnvelope
	if err := decodeJSON(body, &envelope, what); err != nil {
		return nil, err
	}
	if envelope.Zones == nil {
		return nil, newResponseError(fmt.Sprintf("%s response missing zones", what), nil)
	}

	zones := make([]Zone, 0, len(*envelope.Zones))
	for _, record := range *envelope.Zones {
		zone, err := record.toZone()
		if err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	return zones, nil
}
