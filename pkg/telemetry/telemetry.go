// Package telemetry turns Tessie vehicle data into short natural-language reports.
//
// Most reports are read from a cached vehicle snapshot (see package cache). Battery, battery
// health, location, tire pressure and status reports instead call their focused endpoints on every
// read.
package telemetry

import (
	"context"
	"time"

	"github.com/tessiemcp/tessie-mcp/internal/log"
	"github.com/tessiemcp/tessie-mcp/pkg/cache"
	"github.com/tessiemcp/tessie-mcp/pkg/tessie"
)

//go:generate mockgen -destination=../../mocks/telemetry_gateway.go -package=mocks -mock_names=Gateway=TelemetryGateway . Gateway

// Gateway is the subset of the Tessie API used for telemetry. It is implemented by
// *tessie.Account.
type Gateway interface {
	VehicleState(ctx context.Context, vin string) (map[string]interface{}, error)
	Battery(ctx context.Context, vin string) (map[string]interface{}, error)
	BatteryHealth(ctx context.Context, vin string) (map[string]interface{}, error)
	Location(ctx context.Context, vin string) (map[string]interface{}, error)
	TirePressure(ctx context.Context, vin string) (map[string]interface{}, error)
	Status(ctx context.Context, vin string) (map[string]interface{}, error)
}

// Telemetry reports on a single vehicle.
type Telemetry struct {
	vin      string
	gateway  Gateway
	cache    *cache.Cache
	now      func() time.Time
	location *time.Location
	logger   *log.Logger
}

// New returns a Telemetry for vin. Snapshot-backed reports are refreshed according to policy.
func New(vin string, gateway Gateway, policy cache.Policy) *Telemetry {
	t := &Telemetry{
		vin:      vin,
		gateway:  gateway,
		now:      time.Now,
		location: time.Local,
		logger:   log.With("vin", tessie.SanitizeVIN(vin)),
	}
	t.cache = cache.New(func(ctx context.Context) (map[string]interface{}, error) {
		return gateway.VehicleState(ctx, vin)
	}, policy)
	return t
}

// VIN returns the vehicle identification number this Telemetry reports on.
func (t *Telemetry) VIN() string {
	return t.vin
}

// Cache exposes the snapshot cache, for instance to export it.
func (t *Telemetry) Cache() *cache.Cache {
	return t.cache
}

// SetClock replaces the wall clock and time zone used for timestamps in reports. The snapshot
// cache is switched to the same clock.
func (t *Telemetry) SetClock(now func() time.Time, location *time.Location) {
	t.now = now
	t.location = location
	t.cache.SetClock(now)
}

// Field returns the value at path in the current snapshot, or def if it is absent.
func (t *Telemetry) Field(ctx context.Context, def interface{}, path ...string) (interface{}, error) {
	return t.cache.Field(ctx, def, path...)
}

func (t *Telemetry) snapshot(ctx context.Context) (cache.Snapshot, error) {
	s, _, err := t.cache.Get(ctx)
	return s, err
}

// value is like Lookup but also substitutes def for JSON null.
func value(s cache.Snapshot, def interface{}, path ...string) interface{} {
	v := s.Lookup(def, path...)
	if v == nil {
		return def
	}
	return v
}

func (t *Telemetry) formatTime(ts time.Time, layout string) string {
	return ts.In(t.location).Format(layout)
}

func unixTime(v interface{}) time.Time {
	n := numberOr(v, intNumber(0))
	sec := int64(n.f)
	nsec := int64((n.f - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}
