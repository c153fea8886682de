package telemetry

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

var heaterLevels = map[int64]string{0: "off", 1: "low", 2: "medium", 3: "high"}

// HeaterLevel names a seat or steering wheel heater level. Levels outside 0-3 are "unknown".
func HeaterLevel(level interface{}) string {
	n, ok := toNumber(level)
	if !ok || !n.integral() {
		return "unknown"
	}
	if name, ok := heaterLevels[int64(n.f)]; ok {
		return name
	}
	return "unknown"
}

var compassPoints = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

const degreesPerPoint = 45

// CompassDirection buckets a heading in degrees into one of eight 45° sectors starting at north.
// Headings outside [0, 360) wrap.
func CompassDirection(heading float64) string {
	h := math.Mod(heading, 360)
	if h < 0 {
		h += 360
	}
	return compassPoints[int(math.Floor(h/degreesPerPoint))%len(compassPoints)]
}

// number is a numeric JSON value that remembers whether it was written as an integer, so that it
// can be printed back the way the API sent it.
type number struct {
	f       float64
	isInt   bool
	literal string
}

func (n number) integral() bool {
	return n.f == math.Trunc(n.f)
}

func toNumber(v interface{}) (number, bool) {
	switch x := v.(type) {
	case json.Number:
		s := x.String()
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return number{f: float64(i), isInt: true, literal: s}, true
		}
		f, err := x.Float64()
		if err != nil {
			return number{}, false
		}
		return number{f: f, literal: s}, true
	case int:
		return number{f: float64(x), isInt: true}, true
	case int64:
		return number{f: float64(x), isInt: true}, true
	case float64:
		return number{f: x}, true
	case bool:
		if x {
			return number{f: 1, isInt: true}, true
		}
		return number{f: 0, isInt: true}, true
	}
	return number{}, false
}

func (n number) String() string {
	if n.literal != "" {
		return n.literal
	}
	if n.isInt {
		return strconv.FormatInt(int64(n.f), 10)
	}
	return formatFloat(n.f)
}

// formatFloat prints f the way a float is conventionally echoed back to users: the shortest
// representation, always with a fractional part.
func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// floorDiv and floorMod divide by a positive divisor, rounding the quotient toward negative
// infinity. Integers stay integers.
func (n number) floorDiv(d int64) number {
	if n.isInt {
		q := int64(n.f) / d
		if int64(n.f)%d != 0 && int64(n.f) < 0 {
			q--
		}
		return number{f: float64(q), isInt: true}
	}
	return number{f: math.Floor(n.f / float64(d))}
}

func (n number) floorMod(d int64) number {
	if n.isInt {
		m := int64(n.f) % d
		if m < 0 {
			m += d
		}
		return number{f: float64(m), isInt: true}
	}
	m := math.Mod(n.f, float64(d))
	if m < 0 {
		m += float64(d)
	}
	return number{f: m}
}

func (n number) abs() number {
	if n.literal != "" {
		return number{f: math.Abs(n.f), isInt: n.isInt, literal: strings.TrimPrefix(n.literal, "-")}
	}
	return number{f: math.Abs(n.f), isInt: n.isInt}
}

// numberOr converts v, falling back to def when v is missing, null or not numeric.
func numberOr(v interface{}, def number) number {
	if n, ok := toNumber(v); ok {
		return n
	}
	return def
}

func intNumber(i int64) number {
	return number{f: float64(i), isInt: true}
}

func floatNumber(f float64) number {
	return number{f: f}
}

// fixed formats v with the given number of decimals.
func fixed(v interface{}, decimals int) string {
	return strconv.FormatFloat(numberOr(v, floatNumber(0)).f, 'f', decimals, 64)
}

// truthy reports whether v is set: true, a non-zero number, or a non-empty string or collection.
func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case map[string]interface{}:
		return len(x) > 0
	case []interface{}:
		return len(x) > 0
	}
	if n, ok := toNumber(v); ok {
		return n.f != 0
	}
	return true
}

// text renders v for inclusion in a sentence.
func text(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	}
	if n, ok := toNumber(v); ok {
		return n.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "unknown"
	}
	return string(b)
}

// stringOr returns v if it is a non-null string and def otherwise.
func stringOr(v interface{}, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	if v == nil {
		return def
	}
	return text(v)
}

// roundHalfEven rounds to the nearest integer, ties to even.
func roundHalfEven(f float64) int64 {
	return int64(math.RoundToEven(f))
}
