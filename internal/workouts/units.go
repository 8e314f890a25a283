package workouts

import (
	"strconv"
	"strings"
)

// Unit is a weight display unit. Storage is always pounds; kilograms exist
// only at the presentation boundary.
type Unit string

const (
	UnitPounds Unit = "lbs"
	UnitKilos  Unit = "kg"
)

// The two constants are kept as independently rounded values, not exact
// reciprocals (1/0.453592 = 2.204623...). Deriving one from the other would
// shift weights users have already seen displayed.
const (
	lbsToKg = 0.453592
	kgToLbs = 2.20462
)

// ParseUnit does a strict membership check against the known units.
func ParseUnit(value string) (Unit, bool) {
	switch Unit(value) {
	case UnitPounds, UnitKilos:
		return Unit(value), true
	default:
		return "", false
	}
}

// Convert maps a weight between units. Same-unit conversion returns the
// input unchanged, without any floating point round trip.
func Convert(weight float64, from, to Unit) float64 {
	if from == to {
		return weight
	}
	if from == UnitPounds && to == UnitKilos {
		return weight * lbsToKg
	}
	if from == UnitKilos && to == UnitPounds {
		return weight * kgToLbs
	}
	return weight
}

// ConvertRaw converts a weight that may arrive as a numeric-looking string
// (some store layers hand decimals back as text). Non-numeric input yields
// 0, never an error.
func ConvertRaw(raw string, from, to Unit) float64 {
	weight, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return Convert(weight, from, to)
}

// FormatWeight renders a weight with exactly one fractional digit,
// regardless of unit.
func FormatWeight(weight float64) string {
	return strconv.FormatFloat(weight, 'f', 1, 64)
}
