package telemetry

import (
	"context"
	"fmt"
	"strings"
)

// BatterySummary combines charge level, energy remaining and charging progress in one line.
func (t *Telemetry) BatterySummary(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	level := value(s, 0, "charge_state", "battery_level")
	energy := value(s, 0.0, "charge_state", "energy_remaining")
	limit := value(s, 80, "charge_state", "charge_limit_soc")
	state := chargingState(s)

	parts := []string{fmt.Sprintf("Battery at %s%% (%s kWh)", text(level), fixed(energy, 1))}
	switch state {
	case "Charging":
		minutes := minutesToFull(s)
		hours := minutes.floorDiv(60)
		if hours.f > 0 {
			parts = append(parts, fmt.Sprintf("charging, %sh %sm to %s%%", hours, minutes.floorMod(60), text(limit)))
		} else {
			parts = append(parts, fmt.Sprintf("charging, %sm to %s%%", minutes.floorMod(60), text(limit)))
		}
	case "Complete":
		parts = append(parts, "fully charged")
	default:
		parts = append(parts, strings.ToLower(state))
	}
	return strings.Join(parts, ", "), nil
}
