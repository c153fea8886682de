package telemetry

import (
	"context"
	"fmt"
	"strings"
)

var shiftStateNames = map[string]string{
	"P": "Park",
	"R": "Reverse",
	"N": "Neutral",
	"D": "Drive",
}

// Location reports GPS coordinates and the compass heading from the snapshot.
func (t *Telemetry) Location(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	lat := value(s, 0.0, "drive_state", "latitude")
	lon := value(s, 0.0, "drive_state", "longitude")
	heading := value(s, 0, "drive_state", "heading")
	cardinal := CompassDirection(numberOr(heading, intNumber(0)).f)
	return fmt.Sprintf("Vehicle is at %s, %s facing %s (%s°)", fixed(lat, 6), fixed(lon, 6), cardinal, text(heading)), nil
}

// Power reports drive power in kW. Negative values are regeneration.
func (t *Telemetry) Power(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	power := numberOr(value(s, 0, "drive_state", "power"), intNumber(0))
	switch {
	case power.f == 0:
		return "Vehicle is idle (0 kW)", nil
	case power.f > 0:
		return fmt.Sprintf("Vehicle is using %s kW", power), nil
	}
	return fmt.Sprintf("Vehicle is regenerating %s kW", power.abs()), nil
}

// Speed reports speed in mph. A null speed means the vehicle is parked.
func (t *Telemetry) Speed(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	speed := s.Lookup(nil, "drive_state", "speed")
	if n, ok := toNumber(speed); speed == nil || (ok && n.f == 0) {
		return "Vehicle is stationary", nil
	}
	return fmt.Sprintf("Vehicle is moving at %s mph", text(speed)), nil
}

func (t *Telemetry) ShiftState(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	state := s.Lookup("P", "drive_state", "shift_state")
	name := "Unknown"
	if str, ok := state.(string); ok {
		if known, ok := shiftStateNames[str]; ok {
			name = known
		} else if str != "" {
			name = str
		}
	} else if truthy(state) {
		name = text(state)
	}
	return "Vehicle is in " + name, nil
}

// ActiveRoute describes the navigation route in progress, if any.
func (t *Telemetry) ActiveRoute(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	destination := s.Lookup(nil, "drive_state", "active_route_destination")
	if destination == nil {
		return "No active navigation route", nil
	}
	parts := []string{"Navigating to " + text(destination)}
	if miles := s.Lookup(nil, "drive_state", "active_route_miles_to_arrival"); miles != nil {
		parts = append(parts, fixed(miles, 1)+" miles remaining")
	}
	if minutes := s.Lookup(nil, "drive_state", "active_route_minutes_to_arrival"); minutes != nil {
		m := numberOr(minutes, intNumber(0))
		hours := int64(m.floorDiv(60).f)
		mins := int64(m.floorMod(60).f)
		if hours > 0 {
			parts = append(parts, fmt.Sprintf("ETA in %dh %dm", hours, mins))
		} else {
			parts = append(parts, fmt.Sprintf("ETA in %dm", mins))
		}
	}
	if energy := s.Lookup(nil, "drive_state", "active_route_energy_at_arrival"); energy != nil {
		parts = append(parts, text(energy)+"% battery at arrival")
	}
	return strings.Join(parts, ", "), nil
}
