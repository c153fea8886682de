package cache

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RealtimeSentinel is the configuration value that disables caching.
const RealtimeSentinel = "realtime"

// DefaultPolicy refreshes snapshots older than five minutes.
var DefaultPolicy = MinutesPolicy(5)

// Policy decides when a snapshot must be refreshed.
type Policy struct {
	// TTL is the maximum age of a snapshot. A snapshot whose age equals TTL is still fresh.
	TTL time.Duration
	// Realtime forces a refresh on every read. TTL is ignored.
	Realtime bool
}

// MinutesPolicy returns a Policy with a TTL of the given number of minutes.
func MinutesPolicy(minutes int) Policy {
	return Policy{TTL: time.Duration(minutes) * time.Minute}
}

// ParsePolicy parses "realtime" (any case) or a positive integer number of minutes.
func ParsePolicy(value string) (Policy, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, RealtimeSentinel) {
		return Policy{Realtime: true}, nil
	}
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 {
		return Policy{}, fmt.Errorf("invalid telemetry interval '%s': expected a positive number of minutes or '%s'", value, RealtimeSentinel)
	}
	return MinutesPolicy(minutes), nil
}

// Stale reports whether a snapshot fetched at fetchedAt must be refreshed at now.
func (p Policy) Stale(fetchedAt, now time.Time) bool {
	if p.Realtime {
		return true
	}
	return now.Sub(fetchedAt) > p.TTL
}

func (p Policy) String() string {
	if p.Realtime {
		return RealtimeSentinel
	}
	if p.TTL%time.Minute == 0 {
		return strconv.Itoa(int(p.TTL / time.Minute))
	}
	return p.TTL.String()
}
