package telemetry

import (
	"context"
	"fmt"
	"strings"
)

// The reports in this file bypass the snapshot cache and call their endpoint on every read.

const timestampLayout = "2006-01-02 15:04:05"

var statusMessages = map[string]string{
	"asleep":            "Vehicle is asleep (low power mode, systems offline)",
	"waiting_for_sleep": "Vehicle is waiting to sleep (systems will shut down soon)",
	"awake":             "Vehicle is awake (systems active and responsive)",
}

// get is Lookup on a flat endpoint response; JSON null reads as def.
func get(data map[string]interface{}, key string, def interface{}) interface{} {
	if v, ok := data[key]; ok && v != nil {
		return v
	}
	return def
}

// BatteryInformation reports the battery endpoint, including how old its reading is.
func (t *Telemetry) BatteryInformation(ctx context.Context) (string, error) {
	data, err := t.gateway.Battery(ctx, t.vin)
	if err != nil {
		return "", err
	}
	timestamp := unixTime(get(data, "timestamp", 0))
	now := t.now()
	level := numberOr(get(data, "battery_level", 0), intNumber(0))
	tempMin := numberOr(get(data, "module_temp_min", 0), intNumber(0))
	tempMax := numberOr(get(data, "module_temp_max", 0), intNumber(0))
	age := now.Sub(timestamp).Minutes()

	lines := []string{
		"Date of the data: " + t.formatTime(timestamp, timestampLayout),
		"Current date: " + t.formatTime(now, timestampLayout),
		fmt.Sprintf("How old is the data (in minutes): %s", fixed(age, 1)),
		fmt.Sprintf("Battery level: %d%%", roundHalfEven(level.f)),
		fmt.Sprintf("Phantom battery drain (battery percentage vehicle consumed while not being used): %s%%",
			text(get(data, "phantom_drain_percent", 0))),
		fmt.Sprintf("Energy used so far (since production): %s kWh", text(get(data, "lifetime_energy_used", 0))),
		fmt.Sprintf("Battery Pack voltage: %s V", text(get(data, "pack_voltage", 0))),
		fmt.Sprintf("Battery Pack current: %s A", text(get(data, "pack_current", 0))),
		fmt.Sprintf("Battery temperature: %s°C", formatFloat((tempMin.f+tempMax.f)/2)),
	}
	return strings.Join(lines, "\n"), nil
}

func (t *Telemetry) BatteryHealthInformation(ctx context.Context) (string, error) {
	data, err := t.gateway.BatteryHealth(ctx, t.vin)
	if err != nil {
		return "", err
	}
	result, _ := data["result"].(map[string]interface{})
	lines := []string{
		"Battery Health Information:",
		fmt.Sprintf("Maximum range: %s miles", fixed(get(result, "max_range", 0), 2)),
		fmt.Sprintf("Maximum ideal range: %s miles", fixed(get(result, "max_ideal_range", 0), 2)),
		fmt.Sprintf("Battery capacity: %s kWh", fixed(get(result, "capacity", 0), 2)),
	}
	return strings.Join(lines, "\n"), nil
}

// LocationInformation reports coordinates with the street address and saved location name.
func (t *Telemetry) LocationInformation(ctx context.Context) (string, error) {
	data, err := t.gateway.Location(ctx, t.vin)
	if err != nil {
		return "", err
	}
	lines := []string{
		"Vehicle Location:",
		fmt.Sprintf("Coordinates: %s, %s", fixed(get(data, "latitude", 0), 6), fixed(get(data, "longitude", 0), 6)),
		"Address: " + stringOr(get(data, "address", nil), "Unknown address"),
	}
	if saved := data["saved_location"]; truthy(saved) {
		lines = append(lines, "Saved location: "+text(saved))
	}
	return strings.Join(lines, "\n"), nil
}

var tires = []struct{ name, key string }{
	{"Front Left", "front_left"},
	{"Front Right", "front_right"},
	{"Rear Left", "rear_left"},
	{"Rear Right", "rear_right"},
}

// TirePressureInformation reports the pressure of each tire in bar.
func (t *Telemetry) TirePressureInformation(ctx context.Context) (string, error) {
	data, err := t.gateway.TirePressure(ctx, t.vin)
	if err != nil {
		return "", err
	}
	timestamp := unixTime(get(data, "timestamp", 0))
	lines := []string{fmt.Sprintf("Tire Pressure (as of %s):", t.formatTime(timestamp, timestampLayout))}
	for _, tire := range tires {
		lines = append(lines, fmt.Sprintf("%s: %s bar (%s)",
			tire.name,
			fixed(get(data, tire.key, 0), 3),
			stringOr(get(data, tire.key+"_status", nil), "unknown")))
	}
	return strings.Join(lines, "\n"), nil
}

// VehicleStatus reports whether the vehicle is asleep, waiting to sleep or awake.
func (t *Telemetry) VehicleStatus(ctx context.Context) (string, error) {
	data, err := t.gateway.Status(ctx, t.vin)
	if err != nil {
		return "", err
	}
	status := stringOr(get(data, "status", nil), "unknown")
	t.logger.Debug("Vehicle status is %s", status)
	if message, ok := statusMessages[status]; ok {
		return message, nil
	}
	return "Vehicle status: " + status, nil
}
