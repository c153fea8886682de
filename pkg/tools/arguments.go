package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ArgumentError indicates a tool was called with a missing or malformed argument.
type ArgumentError struct {
	Tool     string
	Argument string
	Reason   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q for %s: %s", e.Argument, e.Tool, e.Reason)
}

// Number returns a required numeric argument.
func (a Arguments) Number(tool, name string) (float64, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return 0, &ArgumentError{Tool: tool, Argument: name, Reason: "required"}
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, &ArgumentError{Tool: tool, Argument: name, Reason: "not a number"}
		}
		f = parsed
	case string:
		// Some clients send every argument as a string.
		parsed, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, &ArgumentError{Tool: tool, Argument: name, Reason: "not a number"}
		}
		f = parsed
	default:
		return 0, &ArgumentError{Tool: tool, Argument: name, Reason: fmt.Sprintf("expected number, got %T", v)}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ArgumentError{Tool: tool, Argument: name, Reason: "not a finite number"}
	}
	return f, nil
}

// OptionalBool returns a boolean argument, or def if it was omitted or null.
func (a Arguments) OptionalBool(tool, name string, def bool) (bool, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return def, nil
	}
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return false, &ArgumentError{Tool: tool, Argument: name, Reason: "not a boolean"}
		}
		return b, nil
	}
	return false, &ArgumentError{Tool: tool, Argument: name, Reason: fmt.Sprintf("expected boolean, got %T", v)}
}
