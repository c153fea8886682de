package telemetry

import (
	"context"
	"fmt"
	"time"
)

var chargingStateMessages = map[string]string{
	"Charging":     "Vehicle is currently charging",
	"Complete":     "Charging is complete",
	"Disconnected": "Vehicle is not connected to a charger",
	"Stopped":      "Charging has been stopped",
	"Starting":     "Charging is starting",
	"NoPower":      "Charger connected but no power available",
}

func (t *Telemetry) InService(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	if truthy(s.Lookup(false, "in_service")) {
		return "Vehicle is in service mode", nil
	}
	return "Vehicle is not in service mode", nil
}

func (t *Telemetry) BatteryHeaterOn(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	if truthy(s.Lookup(false, "charge_state", "battery_heater_on")) {
		return "Battery heater is active (warming battery for optimal charging)", nil
	}
	return "Battery heater is off", nil
}

func (t *Telemetry) BatteryLevel(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	level := value(s, 0, "charge_state", "battery_level")
	return fmt.Sprintf("Battery is at %s%%", text(level)), nil
}

func (t *Telemetry) ChargeLimitSOC(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	limit := value(s, 80, "charge_state", "charge_limit_soc")
	if n, ok := toNumber(limit); ok && n.f == 100 {
		return "Charge limit is set to 100% (full charge, no limit)", nil
	}
	return fmt.Sprintf("Charge limit is set to %s%%", text(limit)), nil
}

func (t *Telemetry) ChargePortDoorOpen(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	if truthy(s.Lookup(false, "charge_state", "charge_port_door_open")) {
		return "Charge port door is open", nil
	}
	return "Charge port door is closed", nil
}

func chargingState(s map[string]interface{}) string {
	return stringOr(value(s, "Unknown", "charge_state", "charging_state"), "Unknown")
}

func (t *Telemetry) ChargingState(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	state := chargingState(s)
	if message, ok := chargingStateMessages[state]; ok {
		return message, nil
	}
	return "Charging state: " + state, nil
}

func minutesToFull(s map[string]interface{}) number {
	return numberOr(value(s, 0, "charge_state", "minutes_to_full_charge"), intNumber(0))
}

func (t *Telemetry) MinutesToFullCharge(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	minutes := minutesToFull(s)
	if minutes.f == 0 {
		return "Vehicle is not actively charging or is fully charged", nil
	}
	hours := minutes.floorDiv(60)
	if hours.f > 0 {
		return fmt.Sprintf("Charging will complete in %sh %sm", hours, minutes.floorMod(60)), nil
	}
	return fmt.Sprintf("Charging will complete in %s minutes", minutes), nil
}

// ChargingCompleteAt projects minutes_to_full_charge onto the local wall clock.
func (t *Telemetry) ChargingCompleteAt(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	minutes := minutesToFull(s)
	if minutes.f == 0 {
		return "Vehicle is not actively charging", nil
	}
	complete := t.now().Add(time.Duration(minutes.f * float64(time.Minute)))
	return "Charging will complete at " + t.formatTime(complete, "2006-01-02 15:04"), nil
}

func (t *Telemetry) EnergyRemaining(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	energy := value(s, 0.0, "charge_state", "energy_remaining")
	return fmt.Sprintf("Battery has %s kWh remaining", fixed(energy, 2)), nil
}

func (t *Telemetry) LifetimeEnergyUsed(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	energy := value(s, 0.0, "charge_state", "lifetime_energy_used")
	return fmt.Sprintf("Vehicle has consumed %s kWh in its lifetime", fixed(energy, 2)), nil
}
