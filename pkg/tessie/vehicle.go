package tessie

import (
	"context"
	"net/url"
	"strconv"
)

// Endpoint path templates, relative to the base URL.
const (
	EndpointVehicles       = "/vehicles"
	EndpointBattery        = "/{vin}/battery"
	EndpointBatteryHealth  = "/{vin}/battery_health"
	EndpointLocation       = "/{vin}/location"
	EndpointTirePressure   = "/{vin}/tire_pressure"
	EndpointStatus         = "/{vin}/status"
	EndpointCommandHonk    = "/{vin}/command/honk"
	EndpointCommandFlash   = "/{vin}/command/flash"
	EndpointCommandLock    = "/{vin}/command/lock"
	EndpointCommandUnlock  = "/{vin}/command/unlock"
	EndpointCommandStartAC = "/{vin}/command/start_climate"
	EndpointCommandStopAC  = "/{vin}/command/stop_climate"
	EndpointCommandSetTemp = "/{vin}/command/set_temperatures"
)

// Vehicle is an entry of the account's vehicle list.
type Vehicle struct {
	VIN         string
	DisplayName string
	// LastState is the full last known state, nested by section (charge_state, climate_state,
	// drive_state, vehicle_state, ...).
	LastState map[string]interface{}
}

// Vehicles lists every vehicle on the account.
func (a *Account) Vehicles(ctx context.Context) ([]Vehicle, error) {
	a.logger.Info("Fetching all vehicles")
	body, err := a.Get(ctx, EndpointVehicles, "")
	if err != nil {
		return nil, err
	}
	results, _ := body["results"].([]interface{})
	vehicles := make([]Vehicle, 0, len(results))
	for _, r := range results {
		entry, ok := r.(map[string]interface{})
		if !ok {
			continue
		}
		v := Vehicle{}
		v.VIN, _ = entry["vin"].(string)
		v.LastState, _ = entry["last_state"].(map[string]interface{})
		v.DisplayName, _ = entry["display_name"].(string)
		if v.DisplayName == "" && v.LastState != nil {
			v.DisplayName, _ = v.LastState["display_name"].(string)
		}
		vehicles = append(vehicles, v)
	}
	a.logger.Info("Found %d vehicle(s)", len(vehicles))
	return vehicles, nil
}

// VehicleState returns the last known state of the vehicle identified by vin.
//
// The returned map is the vehicle's last_state. If last_state lacks a display_name, the one from
// the vehicle list entry is copied in. Returns a *VehicleNotFoundError if the account has no such
// vehicle or the vehicle has no recorded state.
func (a *Account) VehicleState(ctx context.Context, vin string) (map[string]interface{}, error) {
	if !ValidVIN(vin) {
		a.logger.Warning("VIN '%s' appears to have invalid format", SanitizeVIN(vin))
	}
	a.logger.Info("Fetching full vehicle state for VIN %s", SanitizeVIN(vin))
	vehicles, err := a.Vehicles(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range vehicles {
		if v.VIN != vin {
			continue
		}
		if v.LastState == nil {
			break
		}
		if _, ok := v.LastState["display_name"]; !ok && v.DisplayName != "" {
			state := make(map[string]interface{}, len(v.LastState)+1)
			for k, val := range v.LastState {
				state[k] = val
			}
			state["display_name"] = v.DisplayName
			return state, nil
		}
		return v.LastState, nil
	}
	a.logger.Warning("Vehicle with VIN %s not found", SanitizeVIN(vin))
	return nil, &VehicleNotFoundError{VIN: vin}
}

// Battery returns data from the battery endpoint (level, drain, energy, voltage, current and
// module temperatures).
func (a *Account) Battery(ctx context.Context, vin string) (map[string]interface{}, error) {
	a.logger.Info("Fetching battery data for VIN %s", SanitizeVIN(vin))
	return a.Get(ctx, EndpointBattery, vin)
}

// BatteryHealth returns data from the battery_health endpoint. Values are nested under "result".
func (a *Account) BatteryHealth(ctx context.Context, vin string) (map[string]interface{}, error) {
	a.logger.Info("Fetching battery health for VIN %s", SanitizeVIN(vin))
	return a.Get(ctx, EndpointBatteryHealth, vin)
}

func (a *Account) Location(ctx context.Context, vin string) (map[string]interface{}, error) {
	a.logger.Info("Fetching location for VIN %s", SanitizeVIN(vin))
	return a.Get(ctx, EndpointLocation, vin)
}

func (a *Account) TirePressure(ctx context.Context, vin string) (map[string]interface{}, error) {
	a.logger.Info("Fetching tire pressure for VIN %s", SanitizeVIN(vin))
	return a.Get(ctx, EndpointTirePressure, vin)
}

// Status returns the sleep status (asleep, waiting_for_sleep or awake).
func (a *Account) Status(ctx context.Context, vin string) (map[string]interface{}, error) {
	a.logger.Info("Fetching status for VIN %s", SanitizeVIN(vin))
	return a.Get(ctx, EndpointStatus, vin)
}

// Command sends a POST command and returns the raw response, which carries a boolean "result" and
// an optional "reason".
func (a *Account) Command(ctx context.Context, vin, endpoint string, params url.Values) (map[string]interface{}, error) {
	a.logger.Info("Sending %s to VIN %s", endpoint, SanitizeVIN(vin))
	return a.Post(ctx, endpoint, vin, params)
}

// SetTemperatureParams builds the query string for EndpointCommandSetTemp.
func SetTemperatureParams(celsius float64, waitForCompletion bool) url.Values {
	params := url.Values{}
	params.Set("temperature", strconv.FormatFloat(celsius, 'f', -1, 64))
	params.Set("wait_for_completion", strconv.FormatBool(waitForCompletion))
	return params
}
