package tessie

const vinLength = 17

// ValidVIN reports whether vin looks like a VIN: 17 ASCII letters or digits.
func ValidVIN(vin string) bool {
	if len(vin) != vinLength {
		return false
	}
	for _, c := range vin {
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}

// SanitizeVIN masks the middle of vin for logging, keeping the first five and last four characters.
func SanitizeVIN(vin string) string {
	if len(vin) < 9 {
		return "***INVALID_VIN***"
	}
	return vin[:5] + "****" + vin[len(vin)-4:]
}
