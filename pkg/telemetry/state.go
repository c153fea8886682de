package telemetry

import "context"

func (t *Telemetry) SentryMode(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	switch {
	case truthy(s.Lookup(false, "vehicle_state", "sentry_mode")):
		return "Sentry Mode is active (cameras monitoring surroundings)", nil
	case truthy(s.Lookup(false, "vehicle_state", "sentry_mode_available")):
		return "Sentry Mode is off but available", nil
	}
	return "Sentry Mode is unavailable", nil
}

func (t *Telemetry) DisplayName(ctx context.Context) (string, error) {
	s, err := t.snapshot(ctx)
	if err != nil {
		return "", err
	}
	return "Vehicle name: " + stringOr(value(s, "Unknown Vehicle", "display_name"), "Unknown Vehicle"), nil
}
