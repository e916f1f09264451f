package bmi

// Conversion constants.
const (
	KilogramsPerPound   = 0.45359237
	MetersPerInch       = 0.0254
	CentimetersPerMeter = 100.0
)

// WeightUnit is the unit a weight is stored in.
type WeightUnit string

// HeightUnit is the unit a height is stored in.
type HeightUnit string

const (
	Kilograms WeightUnit = "kg"
	Pounds    WeightUnit = "lb"

	Centimeters HeightUnit = "cm"
	Inches      HeightUnit = "in"
)

// DefaultWeightUnit and DefaultHeightUnit apply whenever a stored unit is unknown.
const (
	DefaultWeightUnit = Kilograms
	DefaultHeightUnit = Centimeters
)

// WeightUnits lists the accepted weight units in display order.
func WeightUnits() []WeightUnit { return []WeightUnit{Kilograms, Pounds} }

// HeightUnits lists the accepted height units in display order.
func HeightUnits() []HeightUnit { return []HeightUnit{Centimeters, Inches} }

// ParseWeightUnit reports whether s names a known weight unit. Matching is exact.
func ParseWeightUnit(s string) (WeightUnit, bool) {
	switch WeightUnit(s) {
	case Kilograms:
		return Kilograms, true
	case Pounds:
		return Pounds, true
	}
	return DefaultWeightUnit, false
}

// ParseHeightUnit reports whether s names a known height unit. Matching is exact.
func ParseHeightUnit(s string) (HeightUnit, bool) {
	switch HeightUnit(s) {
	case Centimeters:
		return Centimeters, true
	case Inches:
		return Inches, true
	}
	return DefaultHeightUnit, false
}

// NormalizeWeightUnit coerces anything that is not exactly a known unit to
// DefaultWeightUnit.
func NormalizeWeightUnit(s string) WeightUnit {
	unit, _ := ParseWeightUnit(s)
	return unit
}

// NormalizeHeightUnit coerces anything that is not exactly a known unit to
// DefaultHeightUnit.
func NormalizeHeightUnit(s string) HeightUnit {
	unit, _ := ParseHeightUnit(s)
	return unit
}

// PoundsToKilograms converts lb to kg.
func PoundsToKilograms(lb float64) float64 { return lb * KilogramsPerPound }

// KilogramsToPounds converts kg to lb.
func KilogramsToPounds(kg float64) float64 { return kg / KilogramsPerPound }

// InchesToMeters converts in to m.
func InchesToMeters(in float64) float64 { return in * MetersPerInch }

// CentimetersToMeters converts cm to m.
func CentimetersToMeters(cm float64) float64 { return cm / CentimetersPerMeter }

// ToKilograms normalises a weight to kilograms.
func ToKilograms(weight float64, unit WeightUnit) float64 {
	if unit == Pounds {
		return PoundsToKilograms(weight)
	}
	return weight
}

// ToMeters normalises a height to meters.
func ToMeters(height float64, unit HeightUnit) float64 {
	if unit == Inches {
		return InchesToMeters(height)
	}
	return CentimetersToMeters(height)
}
