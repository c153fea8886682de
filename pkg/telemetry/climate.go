package telemetry

import (
	"context"
	"fmt"
	"strings"
)

// Seat identifies a heated seat in climate_state.
type Seat struct {
	Name  string
	Field string
}

var (
	SeatDriver     = Seat{"Driver", "seat_heater_left"}
	SeatPassenger  = Seat{"Passenger", "seat_heater_right"}
	SeatRearLeft   = Seat{"Rear left", "seat_heater_rear_left"}
	SeatRearCenter = Seat{"Rear center", "seat_heater_rear_center"}
	SeatRearRight  = Seat{"Rear right", "seat_heater_rear_right"}

	seats = []Seat{SeatDriver, SeatPassenger, SeatRearLeft, SeatRearCenter, SeatRearRight}
)

func (t *Telemetry) climateFlag(ctx context.Context, field, on, off string) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	if truthy(s.Lookup(false, "climate_state", field)) {
		return on, nil
	}
	return off, nil
}

func (t *Telemetry) CabinOverheatProtection(ctx context.Context) (string, error) {
	return t.climateFlag(ctx, "allow_cabin_overheat_protection",
		"Cabin Overheat Protection is enabled",
		"Cabin Overheat Protection is disabled")
}

func (t *Telemetry) OutsideTemp(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	temp := value(s, 0.0, "climate_state", "outside_temp")
	return fmt.Sprintf("Outside temperature is %s°C", text(temp)), nil
}

func (t *Telemetry) ClimateOn(ctx context.Context) (string, error) {
	return t.climateFlag(ctx, "is_climate_on", "Climate control is active", "Climate control is off")
}

func (t *Telemetry) FanOnlyCabinOverheatProtection(ctx context.Context) (string, error) {
	return t.climateFlag(ctx, "supports_fan_only_cabin_overheat_protection",
		"Vehicle supports fan-only Cabin Overheat Protection",
		"Vehicle requires AC for Cabin Overheat Protection")
}

// SeatHeater reports the heater level of one seat.
func (t *Telemetry) SeatHeater(ctx context.Context, seat Seat) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	level := value(s, 0, "climate_state", seat.Field)
	return fmt.Sprintf("%s seat heater is %s", seat.Name, HeaterLevel(level)), nil
}

func (t *Telemetry) SideMirrorHeaters(ctx context.Context) (string, error) {
	return t.climateFlag(ctx, "side_mirror_heaters", "Side mirror heaters are active", "Side mirror heaters are off")
}

func (t *Telemetry) SteeringWheelHeater(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	if !truthy(s.Lookup(false, "climate_state", "steering_wheel_heater")) {
		return "Steering wheel heater is off", nil
	}
	level := value(s, 0, "climate_state", "steering_wheel_heat_level")
	return fmt.Sprintf("Steering wheel heater is on (%s)", HeaterLevel(level)), nil
}

func (t *Telemetry) WiperBladeHeater(ctx context.Context) (string, error) {
	return t.climateFlag(ctx, "wiper_blade_heater", "Wiper blade heater is active", "Wiper blade heater is off")
}

// AllHeaters summarizes every active heating element.
func (t *Telemetry) AllHeaters(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	var active []string
	for _, seat := range seats {
		level := value(s, 0, "climate_state", seat.Field)
		if numberOr(level, intNumber(0)).f > 0 {
			active = append(active, fmt.Sprintf("%s: %s", seat.Name, HeaterLevel(level)))
		}
	}
	if truthy(s.Lookup(false, "climate_state", "steering_wheel_heater")) {
		level := value(s, 0, "climate_state", "steering_wheel_heat_level")
		active = append(active, "Steering wheel: "+HeaterLevel(level))
	}
	if truthy(s.Lookup(false, "climate_state", "side_mirror_heaters")) {
		active = append(active, "Mirrors: on")
	}
	if truthy(s.Lookup(false, "climate_state", "wiper_blade_heater")) {
		active = append(active, "Wipers: on")
	}
	if len(active) == 0 {
		return "All heaters are off", nil
	}
	return "Active heaters: " + strings.Join(active, ", "), nil
}
