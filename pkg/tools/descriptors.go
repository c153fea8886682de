package tools

// Tool names exposed to clients.
const (
	GetBatteryInformation                     = "get_battery_information"
	GetBatteryHealthInformation               = "get_battery_health_information"
	GetLocationInformation                    = "get_location_information"
	GetTirePressureInformation                = "get_tire_pressure_information"
	GetVehicleStatus                          = "get_vehicle_status"
	GetInService                              = "get_in_service"
	GetBatteryHeaterOn                        = "get_battery_heater_on"
	GetBatteryLevel                           = "get_battery_level"
	GetChargeLimitSOC                         = "get_charge_limit_soc"
	GetChargePortDoorOpen                     = "get_charge_port_door_open"
	GetChargingState                          = "get_charging_state"
	GetMinutesToFullCharge                    = "get_minutes_to_full_charge"
	GetChargingCompleteAt                     = "get_charging_complete_at"
	GetEnergyRemaining                        = "get_energy_remaining"
	GetLifetimeEnergyUsed                     = "get_lifetime_energy_used"
	GetAllowCabinOverheatProtection           = "get_allow_cabin_overheat_protection"
	GetOutsideTemp                            = "get_outside_temp"
	GetIsClimateOn                            = "get_is_climate_on"
	GetSupportsFanOnlyCabinOverheatProtection = "get_supports_fan_only_cabin_overheat_protection"
	GetSeatHeaterLeft                         = "get_seat_heater_left"
	GetSeatHeaterRight                        = "get_seat_heater_right"
	GetSeatHeaterRearLeft                     = "get_seat_heater_rear_left"
	GetSeatHeaterRearCenter                   = "get_seat_heater_rear_center"
	GetSeatHeaterRearRight                    = "get_seat_heater_rear_right"
	GetSideMirrorHeaters                      = "get_side_mirror_heaters"
	GetSteeringWheelHeater                    = "get_steering_wheel_heater"
	GetWiperBladeHeater                       = "get_wiper_blade_heater"
	GetLocation                               = "get_location"
	GetPower                                  = "get_power"
	GetSpeed                                  = "get_speed"
	GetShiftState                             = "get_shift_state"
	GetActiveRoute                            = "get_active_route"
	GetSentryMode                             = "get_sentry_mode"
	GetDisplayName                            = "get_display_name"
	GetAllHeaterStatus                        = "get_all_heater_status"
	GetBatterySummary                         = "get_battery_summary"

	LockDoors      = "lock_doors"
	UnlockDoors    = "unlock_doors"
	HonkHorn       = "honk_horn"
	FlashLights    = "flash_lights"
	StartClimate   = "start_climate"
	StopClimate    = "stop_climate"
	SetTemperature = "set_temperature"
)

// Arguments of set_temperature.
const (
	ArgTemperature       = "temperature"
	ArgWaitForCompletion = "wait_for_completion"
)

// Property describes one tool argument.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// Schema is the JSON schema of a tool's arguments.
type Schema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required"`
}

// Descriptor is the metadata a client sees for a tool.
type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema Schema `json:"inputSchema"`
}

func noArguments() Schema {
	return Schema{Type: "object", Properties: map[string]Property{}, Required: []string{}}
}

func describe(name, description string) Descriptor {
	return Descriptor{Name: name, Description: description, InputSchema: noArguments()}
}

// TelemetryDescriptors lists the read-only tools. The focused endpoint tools come first.
func TelemetryDescriptors() []Descriptor {
	return []Descriptor{
		describe(GetBatteryInformation, "Get detailed battery information (level, drain, energy, voltage, current, temperature) using efficient /battery endpoint"),
		describe(GetBatteryHealthInformation, "Get battery health information (max range, capacity, degradation) using /battery_health endpoint"),
		describe(GetLocationInformation, "Get vehicle location with address and saved location name using /location endpoint"),
		describe(GetTirePressureInformation, "Get tire pressure for all four tires with status indicators using /tire_pressure endpoint"),
		describe(GetVehicleStatus, "Get vehicle sleep/wake status (asleep, waiting_for_sleep, or awake) using /status endpoint"),
		describe(GetInService, "Check if the vehicle is in service mode (used during maintenance/repairs)"),
		describe(GetBatteryHeaterOn, "Check if the battery heater is active (warms battery for optimal charging in cold weather)"),
		describe(GetBatteryLevel, "Get the current battery level as a percentage"),
		describe(GetChargeLimitSOC, "Get the charging limit percentage (100% means no limit set)"),
		describe(GetChargePortDoorOpen, "Check if the charge port door is open or closed"),
		describe(GetChargingState, "Get the current charging status (Charging, Complete, Disconnected, etc.)"),
		describe(GetMinutesToFullCharge, "Get the estimated time remaining until charging is complete"),
		describe(GetChargingCompleteAt, "Get the estimated date and time when charging will be complete"),
		describe(GetEnergyRemaining, "Get the remaining battery energy in kilowatt-hours (kWh)"),
		describe(GetLifetimeEnergyUsed, "Get the total energy consumed by the vehicle over its lifetime in kWh"),
		describe(GetAllowCabinOverheatProtection, "Check if Cabin Overheat Protection (COP) is enabled"),
		describe(GetOutsideTemp, "Get the outside ambient temperature in Celsius"),
		describe(GetIsClimateOn, "Check if the climate control (HVAC) is currently active"),
		describe(GetSupportsFanOnlyCabinOverheatProtection, "Check if vehicle supports fan-only Cabin Overheat Protection (uses less energy than AC)"),
		describe(GetSeatHeaterLeft, "Get the driver (left front) seat heater status and level"),
		describe(GetSeatHeaterRight, "Get the passenger (right front) seat heater status and level"),
		describe(GetSeatHeaterRearLeft, "Get the rear left seat heater status and level"),
		describe(GetSeatHeaterRearCenter, "Get the rear center seat heater status and level"),
		describe(GetSeatHeaterRearRight, "Get the rear right seat heater status and level"),
		describe(GetSideMirrorHeaters, "Check if the side mirror heaters are active"),
		describe(GetSteeringWheelHeater, "Get the steering wheel heater status and level"),
		describe(GetWiperBladeHeater, "Check if the windshield wiper blade heater is active"),
		describe(GetLocation, "Get the vehicle's current GPS location and heading direction"),
		describe(GetPower, "Get the current power usage or regeneration in kilowatts"),
		describe(GetSpeed, "Get the vehicle's current speed"),
		describe(GetShiftState, "Get the current gear (Park, Reverse, Neutral, Drive)"),
		describe(GetActiveRoute, "Get information about the active navigation route (destination, ETA, distance, battery at arrival)"),
		describe(GetSentryMode, "Check if Sentry Mode is active (security camera monitoring)"),
		describe(GetDisplayName, "Get the vehicle's custom display name"),
		describe(GetAllHeaterStatus, "Get a summary of all heater statuses (seats, steering wheel, mirrors, wipers)"),
		describe(GetBatterySummary, "Get a comprehensive battery and charging summary"),
	}
}

// ControlDescriptors lists the command tools.
func ControlDescriptors() []Descriptor {
	setTemperature := describe(SetTemperature, "Set cabin temperature in Celsius (optionally wait for completion)")
	setTemperature.InputSchema.Properties = map[string]Property{
		ArgTemperature:       {Type: "number", Description: "Target cabin temperature in Celsius"},
		ArgWaitForCompletion: {Type: "boolean", Description: "Wait for command to finish before returning"},
	}
	setTemperature.InputSchema.Required = []string{ArgTemperature}
	return []Descriptor{
		describe(LockDoors, "Lock the vehicle doors"),
		describe(UnlockDoors, "Unlock the vehicle doors"),
		describe(HonkHorn, "Honk the vehicle horn"),
		describe(FlashLights, "Flash the vehicle lights"),
		describe(StartClimate, "Start climate/preconditioning"),
		describe(StopClimate, "Stop climate/preconditioning"),
		setTemperature,
	}
}
