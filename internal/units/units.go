// Package units provides shared constants and validation for length units
package units

// Unit constants
const (
	M  = "m"
	KM = "km"
	FT = "ft"
	MI = "mi"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{M, KM, FT, MI}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, km, ft, mi"
}

// ConvertLength converts a length from meters to the target units.
// Survey coordinates and all stored lengths are in meters.
func ConvertLength(lengthM float64, targetUnits string) float64 {
	switch targetUnits {
	case M:
		return lengthM // no conversion needed
	case KM:
		return lengthM / 1000
	case FT:
		return lengthM * 3.28083989501312 // m to international feet
	case MI:
		return lengthM * 0.000621371192237334
	default:
		return lengthM // default to meters if unknown unit
	}
}
