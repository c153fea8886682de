package telemetry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/tessiemcp/tessie-mcp/mocks"
	"github.com/tessiemcp/tessie-mcp/pkg/cache"
	"github.com/tessiemcp/tessie-mcp/pkg/telemetry"
	"github.com/tessiemcp/tessie-mcp/pkg/tessie"
)

const vin = "5YJ3E1EA7KF000001"

// decode parses a payload the way the gateway does, keeping numbers as json.Number.
func decode(payload string) map[string]interface{} {
	var out map[string]interface{}
	d := json.NewDecoder(bytes.NewBufferString(payload))
	d.UseNumber()
	Expect(d.Decode(&out)).To(Succeed())
	return out
}

const vehicleState = `{
	"display_name": "Roadrunner",
	"in_service": false,
	"charge_state": {
		"battery_level": 80,
		"battery_heater_on": true,
		"charge_limit_soc": 90,
		"charge_port_door_open": true,
		"charging_state": "Charging",
		"minutes_to_full_charge": 95,
		"energy_remaining": 54.321,
		"lifetime_energy_used": 12345.678
	},
	"climate_state": {
		"allow_cabin_overheat_protection": true,
		"outside_temp": 21.5,
		"is_climate_on": false,
		"supports_fan_only_cabin_overheat_protection": true,
		"seat_heater_left": 3,
		"seat_heater_right": 0,
		"seat_heater_rear_left": 0,
		"seat_heater_rear_center": 1,
		"seat_heater_rear_right": 9,
		"side_mirror_heaters": true,
		"steering_wheel_heater": true,
		"steering_wheel_heat_level": 2,
		"wiper_blade_heater": false
	},
	"drive_state": {
		"latitude": 37.4925,
		"longitude": -121.9447,
		"heading": 46,
		"power": -12,
		"speed": 65,
		"shift_state": "D",
		"active_route_destination": "Home",
		"active_route_minutes_to_arrival": 75.5,
		"active_route_miles_to_arrival": 12.34,
		"active_route_energy_at_arrival": 64
	},
	"vehicle_state": {
		"sentry_mode": false,
		"sentry_mode_available": true
	}
}`

var _ = Describe("Telemetry", func() {
	var (
		ctrl    *gomock.Controller
		gateway *mocks.TelemetryGateway
		t       *telemetry.Telemetry
		now     time.Time
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		ctrl = gomock.NewController(GinkgoT())
		gateway = mocks.NewTelemetryGateway(ctrl)
		now = time.Date(2024, 3, 18, 15, 15, 50, 0, time.UTC)
		t = telemetry.New(vin, gateway, cache.MinutesPolicy(5))
		t.SetClock(func() time.Time { return now }, time.UTC)
		DeferCleanup(func() {
			ctrl.Finish()
		})
	})

	withState := func(payload string) {
		gateway.EXPECT().VehicleState(gomock.Any(), vin).Return(decode(payload), nil).AnyTimes()
	}

	read := func(f func(context.Context) (string, error)) string {
		out, err := f(ctx)
		Expect(err).NotTo(HaveOccurred())
		return out
	}

	Context("cached reads", func() {
		It("fetches the snapshot once while it is fresh", func() {
			gateway.EXPECT().VehicleState(gomock.Any(), vin).Return(decode(vehicleState), nil).Times(1)
			Expect(read(t.BatteryLevel)).To(Equal("Battery is at 80%"))
			Expect(read(t.DisplayName)).To(Equal("Vehicle name: Roadrunner"))
			now = now.Add(5 * time.Minute)
			Expect(read(t.Location)).To(HavePrefix("Vehicle is at"))
		})

		It("refreshes once the snapshot is older than the interval", func() {
			gateway.EXPECT().VehicleState(gomock.Any(), vin).Return(decode(vehicleState), nil).Times(2)
			read(t.BatteryLevel)
			now = now.Add(5*time.Minute + time.Second)
			read(t.BatteryLevel)
		})

		It("fetches on every read under the realtime policy", func() {
			t = telemetry.New(vin, gateway, cache.Policy{Realtime: true})
			gateway.EXPECT().VehicleState(gomock.Any(), vin).Return(decode(vehicleState), nil).Times(3)
			read(t.BatteryLevel)
			read(t.Location)
			read(t.AllHeaters)
		})

		It("propagates gateway errors when there is no snapshot", func() {
			gateway.EXPECT().VehicleState(gomock.Any(), vin).Return(nil, tessie.ErrAuthentication)
			_, err := t.BatteryLevel(ctx)
			Expect(err).To(MatchError(tessie.ErrAuthentication))
		})

		It("reads arbitrary fields", func() {
			withState(vehicleState)
			level, err := t.Field(ctx, 0, "charge_state", "battery_level")
			Expect(err).NotTo(HaveOccurred())
			Expect(level).To(Equal(json.Number("80")))
			missing, err := t.Field(ctx, "n/a", "charge_state", "battery_level", "deeper")
			Expect(err).NotTo(HaveOccurred())
			Expect(missing).To(Equal("n/a"))
		})
	})

	Context("battery and charging", func() {
		BeforeEach(func() {
			withState(vehicleState)
		})

		It("formats charge state", func() {
			Expect(read(t.InService)).To(Equal("Vehicle is not in service mode"))
			Expect(read(t.BatteryHeaterOn)).To(Equal("Battery heater is active (warming battery for optimal charging)"))
			Expect(read(t.ChargeLimitSOC)).To(Equal("Charge limit is set to 90%"))
			Expect(read(t.ChargePortDoorOpen)).To(Equal("Charge port door is open"))
			Expect(read(t.ChargingState)).To(Equal("Vehicle is currently charging"))
			Expect(read(t.MinutesToFullCharge)).To(Equal("Charging will complete in 1h 35m"))
			Expect(read(t.ChargingCompleteAt)).To(Equal("Charging will complete at 2024-03-18 16:50"))
			Expect(read(t.EnergyRemaining)).To(Equal("Battery has 54.32 kWh remaining"))
			Expect(read(t.LifetimeEnergyUsed)).To(Equal("Vehicle has consumed 12345.68 kWh in its lifetime"))
			Expect(read(t.BatterySummary)).To(Equal("Battery at 80% (54.3 kWh), charging, 1h 35m to 90%"))
		})
	})

	DescribeTable("charge_state variations",
		func(chargeState string, report func(*telemetry.Telemetry, context.Context) (string, error), expected string) {
			withState(`{"charge_state": ` + chargeState + `}`)
			out, err := report(t, ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(expected))
		},
		Entry("full charge limit", `{"charge_limit_soc": 100}`,
			(*telemetry.Telemetry).ChargeLimitSOC, "Charge limit is set to 100% (full charge, no limit)"),
		Entry("default charge limit", `{}`,
			(*telemetry.Telemetry).ChargeLimitSOC, "Charge limit is set to 80%"),
		Entry("unknown charging state", `{"charging_state": "Calibrating"}`,
			(*telemetry.Telemetry).ChargingState, "Charging state: Calibrating"),
		Entry("null charging state", `{"charging_state": null}`,
			(*telemetry.Telemetry).ChargingState, "Charging state: Unknown"),
		Entry("under an hour", `{"minutes_to_full_charge": 45}`,
			(*telemetry.Telemetry).MinutesToFullCharge, "Charging will complete in 45 minutes"),
		Entry("not charging", `{}`,
			(*telemetry.Telemetry).MinutesToFullCharge, "Vehicle is not actively charging or is fully charged"),
		Entry("no completion time", `{"minutes_to_full_charge": 0}`,
			(*telemetry.Telemetry).ChargingCompleteAt, "Vehicle is not actively charging"),
		Entry("missing battery level", `{}`,
			(*telemetry.Telemetry).BatteryLevel, "Battery is at 0%"),
		Entry("summary when complete", `{"battery_level": 90, "energy_remaining": 60, "charging_state": "Complete"}`,
			(*telemetry.Telemetry).BatterySummary, "Battery at 90% (60.0 kWh), fully charged"),
		Entry("summary when disconnected", `{"battery_level": 42, "energy_remaining": 30.06, "charging_state": "Disconnected"}`,
			(*telemetry.Telemetry).BatterySummary, "Battery at 42% (30.1 kWh), disconnected"),
		Entry("summary charging under an hour", `{"battery_level": 85, "charging_state": "Charging", "minutes_to_full_charge": 20, "charge_limit_soc": 90}`,
			(*telemetry.Telemetry).BatterySummary, "Battery at 85% (0.0 kWh), charging, 20m to 90%"),
	)

	Context("climate", func() {
		BeforeEach(func() {
			withState(vehicleState)
		})

		It("formats climate state", func() {
			Expect(read(t.CabinOverheatProtection)).To(Equal("Cabin Overheat Protection is enabled"))
			Expect(read(t.OutsideTemp)).To(Equal("Outside temperature is 21.5°C"))
			Expect(read(t.ClimateOn)).To(Equal("Climate control is off"))
			Expect(read(t.FanOnlyCabinOverheatProtection)).To(Equal("Vehicle supports fan-only Cabin Overheat Protection"))
			Expect(read(t.SideMirrorHeaters)).To(Equal("Side mirror heaters are active"))
			Expect(read(t.SteeringWheelHeater)).To(Equal("Steering wheel heater is on (medium)"))
			Expect(read(t.WiperBladeHeater)).To(Equal("Wiper blade heater is off"))
		})

		It("names seat heater levels", func() {
			seats := map[telemetry.Seat]string{
				telemetry.SeatDriver:     "Driver seat heater is high",
				telemetry.SeatPassenger:  "Passenger seat heater is off",
				telemetry.SeatRearLeft:   "Rear left seat heater is off",
				telemetry.SeatRearCenter: "Rear center seat heater is low",
				telemetry.SeatRearRight:  "Rear right seat heater is unknown",
			}
			for seat, expected := range seats {
				out, err := t.SeatHeater(ctx, seat)
				Expect(err).NotTo(HaveOccurred())
				Expect(out).To(Equal(expected))
			}
		})

		It("summarizes active heaters", func() {
			Expect(read(t.AllHeaters)).To(Equal("Active heaters: Driver: high, Rear center: low, Rear right: unknown, Steering wheel: medium, Mirrors: on"))
		})
	})

	Context("climate defaults", func() {
		BeforeEach(func() {
			withState(`{"climate_state": {}}`)
		})

		It("reports everything off", func() {
			Expect(read(t.OutsideTemp)).To(Equal("Outside temperature is 0.0°C"))
			Expect(read(t.SteeringWheelHeater)).To(Equal("Steering wheel heater is off"))
			Expect(read(t.AllHeaters)).To(Equal("All heaters are off"))
		})
	})

	Context("drive state", func() {
		It("formats an active drive", func() {
			withState(vehicleState)
			Expect(read(t.Location)).To(Equal("Vehicle is at 37.492500, -121.944700 facing NE (46°)"))
			Expect(read(t.Power)).To(Equal("Vehicle is regenerating 12 kW"))
			Expect(read(t.Speed)).To(Equal("Vehicle is moving at 65 mph"))
			Expect(read(t.ShiftState)).To(Equal("Vehicle is in Drive"))
			Expect(read(t.ActiveRoute)).To(Equal("Navigating to Home, 12.3 miles remaining, ETA in 1h 15m, 64% battery at arrival"))
			Expect(read(t.SentryMode)).To(Equal("Sentry Mode is off but available"))
		})

		It("formats a parked vehicle", func() {
			withState(`{"drive_state": {"speed": null, "shift_state": null, "power": 0, "active_route_destination": null, "heading": 44}}`)
			Expect(read(t.Location)).To(Equal("Vehicle is at 0.000000, 0.000000 facing N (44°)"))
			Expect(read(t.Power)).To(Equal("Vehicle is idle (0 kW)"))
			Expect(read(t.Speed)).To(Equal("Vehicle is stationary"))
			Expect(read(t.ShiftState)).To(Equal("Vehicle is in Unknown"))
			Expect(read(t.ActiveRoute)).To(Equal("No active navigation route"))
			Expect(read(t.SentryMode)).To(Equal("Sentry Mode is unavailable"))
			Expect(read(t.DisplayName)).To(Equal("Vehicle name: Unknown Vehicle"))
		})

		It("defaults a missing shift state to park", func() {
			withState(`{"drive_state": {"power": 7, "active_route_destination": "Work", "active_route_minutes_to_arrival": 12}}`)
			Expect(read(t.ShiftState)).To(Equal("Vehicle is in Park"))
			Expect(read(t.Power)).To(Equal("Vehicle is using 7 kW"))
			Expect(read(t.ActiveRoute)).To(Equal("Navigating to Work, ETA in 12m"))
		})
	})

	Context("specialized endpoints", func() {
		It("reports battery information without caching", func() {
			gateway.EXPECT().Battery(gomock.Any(), vin).Return(decode(`{
				"timestamp": 1710773150,
				"battery_level": 79.6,
				"phantom_drain_percent": 0.5,
				"lifetime_energy_used": 12345.6,
				"pack_voltage": 390.2,
				"pack_current": -1.3,
				"module_temp_min": 20,
				"module_temp_max": 23
			}`), nil).Times(2)
			expected := "Date of the data: 2024-03-18 14:45:50\n" +
				"Current date: 2024-03-18 15:15:50\n" +
				"How old is the data (in minutes): 30.0\n" +
				"Battery level: 80%\n" +
				"Phantom battery drain (battery percentage vehicle consumed while not being used): 0.5%\n" +
				"Energy used so far (since production): 12345.6 kWh\n" +
				"Battery Pack voltage: 390.2 V\n" +
				"Battery Pack current: -1.3 A\n" +
				"Battery temperature: 21.5°C"
			Expect(read(t.BatteryInformation)).To(Equal(expected))
			Expect(read(t.BatteryInformation)).To(Equal(expected))
		})

		It("reports battery health", func() {
			gateway.EXPECT().BatteryHealth(gomock.Any(), vin).Return(decode(`{"result": {"max_range": 310.456, "max_ideal_range": 320, "capacity": 75.5}}`), nil)
			Expect(read(t.BatteryHealthInformation)).To(Equal("Battery Health Information:\n" +
				"Maximum range: 310.46 miles\n" +
				"Maximum ideal range: 320.00 miles\n" +
				"Battery capacity: 75.50 kWh"))
		})

		It("reports battery health without a result", func() {
			gateway.EXPECT().BatteryHealth(gomock.Any(), vin).Return(decode(`{}`), nil)
			Expect(read(t.BatteryHealthInformation)).To(ContainSubstring("Battery capacity: 0.00 kWh"))
		})

		It("reports the location with its saved name", func() {
			gateway.EXPECT().Location(gomock.Any(), vin).Return(decode(`{
				"latitude": 37.4925, "longitude": -121.9447,
				"address": "3500 Deer Creek Rd, Palo Alto", "saved_location": "Work"
			}`), nil)
			Expect(read(t.LocationInformation)).To(Equal("Vehicle Location:\n" +
				"Coordinates: 37.492500, -121.944700\n" +
				"Address: 3500 Deer Creek Rd, Palo Alto\n" +
				"Saved location: Work"))
		})

		It("reports an unknown address", func() {
			gateway.EXPECT().Location(gomock.Any(), vin).Return(decode(`{"latitude": 1, "longitude": 2, "saved_location": null}`), nil)
			Expect(read(t.LocationInformation)).To(Equal("Vehicle Location:\n" +
				"Coordinates: 1.000000, 2.000000\n" +
				"Address: Unknown address"))
		})

		It("reports tire pressure", func() {
			gateway.EXPECT().TirePressure(gomock.Any(), vin).Return(decode(`{
				"timestamp": 1710774950,
				"front_left": 2.9, "front_right": 2.875,
				"rear_left": 2.95, "rear_right": 2.1,
				"front_left_status": "normal", "front_right_status": "normal",
				"rear_left_status": "normal", "rear_right_status": "low"
			}`), nil)
			Expect(read(t.TirePressureInformation)).To(Equal("Tire Pressure (as of 2024-03-18 15:15:50):\n" +
				"Front Left: 2.900 bar (normal)\n" +
				"Front Right: 2.875 bar (normal)\n" +
				"Rear Left: 2.950 bar (normal)\n" +
				"Rear Right: 2.100 bar (low)"))
		})

		DescribeTable("vehicle status",
			func(payload, expected string) {
				gateway.EXPECT().Status(gomock.Any(), vin).Return(decode(payload), nil)
				Expect(read(t.VehicleStatus)).To(Equal(expected))
			},
			Entry("asleep", `{"status": "asleep"}`, "Vehicle is asleep (low power mode, systems offline)"),
			Entry("waiting", `{"status": "waiting_for_sleep"}`, "Vehicle is waiting to sleep (systems will shut down soon)"),
			Entry("awake", `{"status": "awake"}`, "Vehicle is awake (systems active and responsive)"),
			Entry("other", `{"status": "driving"}`, "Vehicle status: driving"),
			Entry("missing", `{}`, "Vehicle status: unknown"),
		)

		It("propagates endpoint errors", func() {
			gateway.EXPECT().TirePressure(gomock.Any(), vin).Return(nil, &tessie.UpstreamError{StatusCode: 500, Body: "boom"})
			_, err := t.TirePressureInformation(ctx)
			var upstream *tessie.UpstreamError
			Expect(err).To(BeAssignableToTypeOf(upstream))
		})
	})
})
