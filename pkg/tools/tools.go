// Package tools binds tool names to telemetry reports and control commands.
//
// The binding is a static table built once at startup by [New], which fails if any described tool
// lacks a handler or any handler lacks a description.
package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tessiemcp/tessie-mcp/internal/log"
	"github.com/tessiemcp/tessie-mcp/internal/metrics"
	"github.com/tessiemcp/tessie-mcp/pkg/control"
	"github.com/tessiemcp/tessie-mcp/pkg/telemetry"
)

// ErrUnknownTool is returned by [Table.Dispatch] for names that are not in the table.
var ErrUnknownTool = errors.New("unknown tool")

// Arguments holds the decoded arguments of a tool call. Numbers are float64 or json.Number.
type Arguments map[string]interface{}

// Handler runs a tool and returns its text result.
type Handler func(ctx context.Context, args Arguments) (string, error)

// Table is the dispatch table. It is safe for concurrent use.
type Table struct {
	descriptors []Descriptor
	handlers    map[string]Handler
	logger      *log.Logger
}

// New builds the table for one vehicle.
func New(t *telemetry.Telemetry, e *control.Executor) (*Table, error) {
	handlers := make(map[string]Handler)
	for name, report := range telemetryReports(t) {
		handlers[name] = readOnly(report)
	}
	for name, h := range controlHandlers(e) {
		handlers[name] = h
	}
	descriptors := append(TelemetryDescriptors(), ControlDescriptors()...)
	return newTable(descriptors, handlers)
}

func newTable(descriptors []Descriptor, handlers map[string]Handler) (*Table, error) {
	var missing []string
	described := make(map[string]bool, len(descriptors))
	for _, d := range descriptors {
		if described[d.Name] {
			return nil, fmt.Errorf("tool %s is described twice", d.Name)
		}
		described[d.Name] = true
		if _, ok := handlers[d.Name]; !ok {
			missing = append(missing, d.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("no handler for tools: %s", strings.Join(missing, ", "))
	}
	var undescribed []string
	for name := range handlers {
		if !described[name] {
			undescribed = append(undescribed, name)
		}
	}
	if len(undescribed) > 0 {
		sort.Strings(undescribed)
		return nil, fmt.Errorf("handlers without a tool description: %s", strings.Join(undescribed, ", "))
	}
	return &Table{
		descriptors: descriptors,
		handlers:    handlers,
		logger:      log.With("component", "tools"),
	}, nil
}

// Tools returns the tool descriptors in presentation order.
func (t *Table) Tools() []Descriptor {
	out := make([]Descriptor, len(t.descriptors))
	copy(out, t.descriptors)
	return out
}

// Describe returns the descriptor of the named tool.
func (t *Table) Describe(name string) (Descriptor, bool) {
	for _, d := range t.descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Dispatch runs the named tool.
func (t *Table) Dispatch(ctx context.Context, name string, args Arguments) (string, error) {
	handler, ok := t.handlers[name]
	if !ok {
		metrics.ToolCalls.WithLabelValues("unknown", "unknown_tool").Inc()
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	t.logger.Debug("Calling tool %s", name)
	result, err := handler(ctx, args)
	if err != nil {
		metrics.ToolCalls.WithLabelValues(name, "error").Inc()
		t.logger.Debug("Tool %s failed: %s", name, err)
		return "", err
	}
	metrics.ToolCalls.WithLabelValues(name, "ok").Inc()
	return result, nil
}

func readOnly(report func(context.Context) (string, error)) Handler {
	return func(ctx context.Context, _ Arguments) (string, error) {
		return report(ctx)
	}
}

func seatHeater(t *telemetry.Telemetry, seat telemetry.Seat) func(context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		return t.SeatHeater(ctx, seat)
	}
}

func telemetryReports(t *telemetry.Telemetry) map[string]func(context.Context) (string, error) {
	return map[string]func(context.Context) (string, error){
		GetBatteryInformation:                     t.BatteryInformation,
		GetBatteryHealthInformation:               t.BatteryHealthInformation,
		GetLocationInformation:                    t.LocationInformation,
		GetTirePressureInformation:                t.TirePressureInformation,
		GetVehicleStatus:                          t.VehicleStatus,
		GetInService:                              t.InService,
		GetBatteryHeaterOn:                        t.BatteryHeaterOn,
		GetBatteryLevel:                           t.BatteryLevel,
		GetChargeLimitSOC:                         t.ChargeLimitSOC,
		GetChargePortDoorOpen:                     t.ChargePortDoorOpen,
		GetChargingState:                          t.ChargingState,
		GetMinutesToFullCharge:                    t.MinutesToFullCharge,
		GetChargingCompleteAt:                     t.ChargingCompleteAt,
		GetEnergyRemaining:                        t.EnergyRemaining,
		GetLifetimeEnergyUsed:                     t.LifetimeEnergyUsed,
		GetAllowCabinOverheatProtection:           t.CabinOverheatProtection,
		GetOutsideTemp:                            t.OutsideTemp,
		GetIsClimateOn:                            t.ClimateOn,
		GetSupportsFanOnlyCabinOverheatProtection: t.FanOnlyCabinOverheatProtection,
		GetSeatHeaterLeft:                         seatHeater(t, telemetry.SeatDriver),
		GetSeatHeaterRight:                        seatHeater(t, telemetry.SeatPassenger),
		GetSeatHeaterRearLeft:                     seatHeater(t, telemetry.SeatRearLeft),
		GetSeatHeaterRearCenter:                   seatHeater(t, telemetry.SeatRearCenter),
		GetSeatHeaterRearRight:                    seatHeater(t, telemetry.SeatRearRight),
		GetSideMirrorHeaters:                      t.SideMirrorHeaters,
		GetSteeringWheelHeater:                    t.SteeringWheelHeater,
		GetWiperBladeHeater:                       t.WiperBladeHeater,
		GetLocation:                               t.Location,
		GetPower:                                  t.Power,
		GetSpeed:                                  t.Speed,
		GetShiftState:                             t.ShiftState,
		GetActiveRoute:                            t.ActiveRoute,
		GetSentryMode:                             t.SentryMode,
		GetDisplayName:                            t.DisplayName,
		GetAllHeaterStatus:                        t.AllHeaters,
		GetBatterySummary:                         t.BatterySummary,
	}
}
