package cache

// Snapshot is the full vehicle state at one point in time, nested by section (charge_state,
// climate_state, drive_state, vehicle_state, ...). A Snapshot held by a Cache is never mutated.
type Snapshot map[string]interface{}

// Lookup walks path through nested objects and returns the value found, or def if a key is
// missing or an intermediate value is not an object. A JSON null leaf is returned as nil: the
// field exists but has no value, which several readers treat differently from a missing field.
func (s Snapshot) Lookup(def interface{}, path ...string) interface{} {
	var current interface{} = map[string]interface{}(s)
	for _, key := range path {
		var object map[string]interface{}
		switch m := current.(type) {
		case map[string]interface{}:
			object = m
		case Snapshot:
			object = m
		default:
			return def
		}
		value, ok := object[key]
		if !ok {
			return def
		}
		current = value
	}
	return current
}
