package rainmachine

import (
	"context"
	"net/http"
)

// Parser is a weather-data parser installed on the controller
type Parser struct {
	UID         int    `json:"uid"`
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	LastRun     string `json:"lastRun"`
	HasForecast bool   `json:"hasForecast"`
	IsRunning   bool   `json:"isRunning"`
}

// parserRecord is the wire shape of a parser entry
type parserRecord struct {
	UID         *int    `json:"uid"`
	Name        *string `json:"name"`
	Enabled     bool    `json:"enabled"`
	LastRun     string  `json:"lastRun"`
	HasForecast bool    `json:"hasForecast"`
	IsRunning   bool    `json:"isRunning"`
}

// ParserService reads the controller's weather parsers
type ParserService struct {
	client *Client
}

// Current returns every weather parser known to the controller
func (s *ParserService) Current(ctx context.Context) ([]Parser, error) {
	body, err := s.client.request(ctx, http.MethodGet, "parser", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Parsers *[]parserRecord `json:"parsers"`
	}
	if err := decodeJSON(body, &envelope, "parser list"); err != nil {
		return nil, err
	}
	if envelope.Parsers == nil {
		return nil, newResponseError("parser list response missing parsers", nil)
	}

	parsers := make([]Parser, 0, len(*envelope.Parsers))
	for _, record := range *envelope.Parsers {
		if record.UID == nil || record.Name == nil {
			return nil, newResponseError("parser record is missing uid or name", nil)
		}
		parsers = append(parsers, Parser{
			UID:         *record.UID,
			Name:        *record.Name,
			Enabled:     record.Enabled,
			LastRun:     record.LastRun,
			HasForecast: record.HasForecast,
			IsRunning:   record.IsRunning,
		})
	}
	return parsers, nil
}
