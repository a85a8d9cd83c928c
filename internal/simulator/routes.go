package simulator

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// route dispatches an authorized /api/4/{path} request
func (c *Controller) route(w http.ResponseWriter, r *http.Request, path string) {
	parts := strings.Split(path, "/")

	switch {
	case path == "provision/name":
		writeJSON(w, http.StatusOK, map[string]any{"name": c.Name})

	case path == "provision/wifi":
		writeJSON(w, http.StatusOK, map[string]any{
			"macAddress":     c.MAC,
			"ssid":           "garden-net",
			"ipAddress":      c.Host(),
			"netmaskAddress": "255.255.255.0",
			"interface":      "wlan0",
			"mode":           "managed",
			"hasClientLink":  true,
		})

	case path == "provision":
		writeJSON(w, http.StatusOK, map[string]any{
			"system": map[string]any{
				"netName":                  c.Name,
				"httpEnabled":              true,
				"useRainSensor":            false,
				"rainSensorSnoozeDuration": 0,
				"maxWateringCoef":          2.0,
				"zoneDuration":             []int{300, 300, 300, 300},
				"masterValveBefore":        0,
				"masterValveAfter":         0,
			},
			"location": map[string]any{
				"name":      "Garden",
				"latitude":  59.33,
				"longitude": 18.07,
				"elevation": 28.0,
				"timezone":  "Europe/Stockholm",
			},
		})

	case path == "apiVer":
		writeJSON(w, http.StatusOK, map[string]any{
			"apiVer": c.APIVersion,
			"hwVer":  json.Number(c.HardwareVersion),
			"swVer":  c.FirmwareVersion,
		})

	case path == "program":
		writeJSON(w, http.StatusOK, map[string]any{"programs": c.programList(false)})

	case path == "program/nextrun":
		c.mu.Lock()
		runs := make([]map[string]any, 0, len(c.programs))
		for _, id := range sortedProgramIDs(c.programs) {
			program := c.programs[id]
			if program.Active {
				runs = append(runs, map[string]any{"pid": id, "startTime": program.StartTime})
			}
		}
		c.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"nextRuns": runs})

	case path == "watering/program":
		writeJSON(w, http.StatusOK, map[string]any{"programs": c.programList(true)})

	case len(parts) == 2 && parts[0] == "program":
		c.handleProgramGet(w, parts[1])

	case len(parts) == 3 && parts[0] == "program":
		c.handleProgramAction(w, r, parts[1], parts[2])

	case path == "zone":
		writeJSON(w, http.StatusOK, map[string]any{"zones": c.zoneList(false)})

	case path == "zone/properties":
		c.mu.Lock()
		records := make([]map[string]any, 0, len(c.zones))
		for _, id := range sortedZoneIDs(c.zones) {
			records = append(records, map[string]any{
				"uid": id, "type": 2, "sun": 1, "slope": 1,
				"group_id": 1, "sprinklerHead": 1, "savings": 50.0,
			})
		}
		c.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"zones": records})

	case path == "watering/zone":
		writeJSON(w, http.StatusOK, map[string]any{"zones": c.zoneList(true)})

	case len(parts) == 2 && parts[0] == "zone":
		c.handleZoneGet(w, parts[1])

	case len(parts) == 3 && parts[0] == "zone":
		c.handleZoneAction(w, r, parts[1], parts[2])

	case path == "watering/stopall":
		c.mu.Lock()
		for _, zone := range c.zones {
			zone.Watering = false
			zone.Remaining = 0
		}
		for _, program := range c.programs {
			program.Running = false
		}
		c.mu.Unlock()
		writeOK(w)

	case path == "watering/queue":
		c.mu.Lock()
		queue := make([]map[string]any, 0)
		for _, id := range sortedZoneIDs(c.zones) {
			zone := c.zones[id]
			if zone.Watering {
				queue = append(queue, map[string]any{
					"pid": 0, "zid": id,
					"userDuration": 300, "machineDuration": 300,
					"remaining": zone.Remaining, "manual": true,
				})
			}
		}
		c.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"queue": queue})

	case strings.HasPrefix(path, "watering/log"):
		writeJSON(w, http.StatusOK, map[string]any{
			"waterLog": map[string]any{
				"days": []map[string]any{
					{
						"date":         "2026-08-22",
						"dayTimestamp": 1787652000,
						"programs": []map[string]any{
							{"id": 1, "zones": []map[string]any{
								{"uid": 1, "userDuration": 300, "machineDuration": 280, "realDuration": 280},
							}},
						},
					},
				},
			},
		})

	case strings.HasPrefix(path, "watering/past"):
		writeJSON(w, http.StatusOK, map[string]any{
			"pastValues": []map[string]any{
				{"pid": 1, "dateTime": "2026-08-22 06:00:00", "used": 12.5, "et0": 3.1, "qpf": 0.0},
			},
		})

	case path == "restrictions/currently":
		c.mu.Lock()
		delay := c.rainDelay
		c.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"hourly": false, "freeze": false, "month": false, "weekDay": false,
			"rainDelay": delay > 0, "rainDelayCounter": delay, "rainSensor": false,
		})

	case path == "restrictions/hourly":
		writeJSON(w, http.StatusOK, map[string]any{"hourlyRestrictions": []map[string]any{}})

	case path == "restrictions/raindelay" && r.Method == http.MethodGet:
		c.mu.Lock()
		delay := c.rainDelay
		c.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"delayCounter": delay})

	case path == "restrictions/raindelay" && r.Method == http.MethodPost:
		var payload struct {
			RainDelay int `json:"rainDelay"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"statusCode": 1, "message": "bad request"})
			return
		}
		c.mu.Lock()
		c.rainDelay = payload.RainDelay * 86400
		c.mu.Unlock()
		writeOK(w)

	case path == "restrictions/global":
		writeJSON(w, http.StatusOK, map[string]any{
			"hotDaysExtraWatering": false,
			"freezeProtectEnabled": true,
			"freezeProtectTemp":    2.0,
			"noWaterInWeekDays":    "0000000",
			"noWaterInMonths":      "000000000000",
			"rainDelayStartTime":   0,
			"rainDelayDuration":    0,
		})

	case path == "dailystats":
		writeJSON(w, http.StatusOK, map[string]any{
			"DailyStats": []map[string]any{
				{"id": 0, "day": "2026-08-23", "mint": 12.0, "maxt": 24.5, "icon": 2, "percentage": 100.0, "wateringFlag": 0},
			},
		})

	case path == "dailystats/details":
		writeJSON(w, http.StatusOK, map[string]any{
			"DailyStatsDetails": []map[string]any{
				{
					"day": "2026-08-23", "dayTimestamp": 1787738400,
					"programs": []map[string]any{
						{"id": 1, "zones": []map[string]any{
							{"id": 1, "scheduledWateringTime": 300, "computedWateringTime": 280, "availableWater": 10},
						}},
					},
				},
			},
		})

	case len(parts) == 2 && parts[0] == "dailystats":
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 0, "day": parts[1], "mint": 12.0, "maxt": 24.5,
			"icon": 2, "percentage": 100.0, "wateringFlag": 0,
		})

	case path == "diag":
		writeJSON(w, http.StatusOK, map[string]any{
			"hasWifi": true, "networkStatus": true, "cloudStatus": 0,
			"uptime": "3 days", "uptimeSeconds": 259200,
			"memUsage": 18632, "cpuUsage": 2.5,
			"lastCheckTimestamp": 1787738400, "wizardHasRun": true,
		})

	case path == "diag/log":
		writeJSON(w, http.StatusOK, map[string]any{"log": "2026-08-23 sprinkler daemon started\n"})

	case path == "parser":
		writeJSON(w, http.StatusOK, map[string]any{
			"parsers": []map[string]any{
				{"uid": 1, "name": "NOAA Parser", "enabled": true, "lastRun": "2026-08-23 04:00:00", "hasForecast": true, "isRunning": false},
			},
		})

	default:
		http.NotFound(w, r)
	}
}

func (c *Controller) programList(runningOnly bool) []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]map[string]any, 0, len(c.programs))
	for _, id := range sortedProgramIDs(c.programs) {
		program := c.programs[id]
		if runningOnly && !program.Running {
			continue
		}
		status := 0
		if program.Running {
			status = 1
		}
		records = append(records, map[string]any{
			"uid": id, "name": program.Name, "active": program.Active,
			"status": status, "startTime": program.StartTime, "nextRun": program.NextRun,
		})
	}
	return records
}

func (c *Controller) zoneList(runningOnly bool) []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]map[string]any, 0, len(c.zones))
	for _, id := range sortedZoneIDs(c.zones) {
		zone := c.zones[id]
		if runningOnly && !zone.Watering {
			continue
		}
		state := 0
		if zone.Watering {
			state = 1
		}
		records = append(records, map[string]any{
			"uid": id, "name": zone.Name, "state": state, "active": zone.Active,
			"userDuration": 300, "machineDuration": 300,
			"remaining": zone.Remaining, "master": false,
		})
	}
	return records
}

func (c *Controller) handleProgramGet(w http.ResponseWriter, idText string) {
	id, err := strconv.Atoi(idText)
	c.mu.Lock()
	program, ok := c.programs[id]
	c.mu.Unlock()
	if err != nil || !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"statusCode": 5, "message": "Not found !"})
		return
	}

	c.mu.Lock()
	status := 0
	if program.Running {
		status = 1
	}
	record := map[string]any{
		"uid": id, "name": program.Name, "active": program.Active,
		"status": status, "startTime": program.StartTime, "nextRun": program.NextRun,
	}
	c.mu.Unlock()
	writeJSON(w, http.StatusOK, record)
}

func (c *Controller) handleProgramAction(w http.ResponseWriter, r *http.Request, idText, verb string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"statusCode": 1, "message": "bad method"})
		return
	}

	id, err := strconv.Atoi(idText)
	c.mu.Lock()
	program, ok := c.programs[id]
	reject := c.rejectActions
	c.mu.Unlock()
	if err != nil || !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"statusCode": 5, "message": "Not found !"})
		return
	}
	if reject {
		writeJSON(w, http.StatusOK, map[string]any{"statusCode": 1, "message": "Program busy"})
		return
	}

	c.mu.Lock()
	switch verb {
	case "start":
		program.Running = true
	case "stop":
		program.Running = false
	default:
		c.mu.Unlock()
		http.NotFound(w, r)
		return
	}
	c.mu.Unlock()
	writeOK(w)
}

func (c *Controller) handleZoneGet(w http.ResponseWriter, idText string) {
	id, err := strconv.Atoi(idText)
	c.mu.Lock()
	zone, ok := c.zones[id]
	c.mu.Unlock()
	if err != nil || !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"statusCode": 5, "message": "Not found !"})
		return
	}

	c.mu.Lock()
	state := 0
	if zone.Watering {
		state = 1
	}
	record := map[string]any{
		"uid": id, "name": zone.Name, "state": state, "active": zone.Active,
		"userDuration": 300, "machineDuration": 300,
		"remaining": zone.Remaining, "master": false,
	}
	c.mu.Unlock()
	writeJSON(w, http.StatusOK, record)
}

func (c *Controller) handleZoneAction(w http.ResponseWriter, r *http.Request, idText, verb string) {
	id, err := strconv.Atoi(idText)
	c.mu.Lock()
	zone, ok := c.zones[id]
	reject := c.rejectActions
	c.mu.Unlock()
	if err != nil || !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"statusCode": 5, "message": "Not found !"})
		return
	}

	if verb == "properties" && r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]any{
			"uid": id, "type": 2, "sun": 1, "slope": 1,
			"group_id": 1, "sprinklerHead": 1, "savings": 50.0,
		})
		return
	}

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"statusCode": 1, "message": "bad method"})
		return
	}
	if reject {
		writeJSON(w, http.StatusOK, map[string]any{"statusCode": 1, "message": "Zone busy"})
		return
	}

	switch verb {
	case "start":
		var payload struct {
			Time int `json:"time"`
			ZID  int `json:"zid"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Time <= 0 || payload.ZID != id {
			writeJSON(w, http.StatusBadRequest, map[string]any{"statusCode": 1, "message": "bad request"})
			return
		}
		c.mu.Lock()
		zone.Watering = true
		zone.Remaining = payload.Time
		c.mu.Unlock()
		writeOK(w)

	case "stop":
		c.mu.Lock()
		zone.Watering = false
		zone.Remaining = 0
		c.mu.Unlock()
		writeOK(w)

	case "properties":
		var payload struct {
			Active *bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Active == nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"statusCode": 1, "message": "bad request"})
			return
		}
		c.mu.Lock()
		zone.Active = *payload.Active
		c.mu.Unlock()
		writeOK(w)

	default:
		http.NotFound(w, r)
	}
}

func sortedProgramIDs(programs map[int]*programState) []int {
	ids := make([]int, 0, len(programs))
	for id := range programs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func sortedZoneIDs(zones map[int]*zoneState) []int {
	ids := make([]int, 0, len(zones))
	for id := range zones {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
