// Package bmi converts stored measurements into a Body Mass Index, its
// weight-status band, and a display string for the weight.
//
// Compute is pure: the same Measurements always yield the same Result and
// nothing outside the arguments is read. Invalid input (weight or height not
// strictly positive) is not an error; it yields the zero Result, for which
// Valid reports false.
package bmi

import (
	"math"
	"time"
)

// Measurements is the calculator input, already read from the settings store.
type Measurements struct {
	Weight     float64
	WeightUnit WeightUnit
	Height     float64
	HeightUnit HeightUnit
	UpdatedAt  time.Time
}

// Result is the derived, per-render output. The zero value means "not configured".
type Result struct {
	BMI            float64
	Classification Classification
	DisplayWeight  string
	UpdatedAt      time.Time

	valid bool
}

// Valid reports whether the measurements produced a BMI.
func (r Result) Valid() bool { return r.valid }

// Calculator carries the display locale; it holds no mutable state.
type Calculator struct {
	numbers NumberFormatter
}

// NewCalculator returns a calculator formatting numbers for lang (BCP 47, e.g. "en", "de").
func NewCalculator(lang string) *Calculator {
	return &Calculator{numbers: NewNumberFormatter(lang)}
}

var defaultCalculator = NewCalculator("")

// Compute runs the default (English) calculator.
func Compute(m Measurements) Result {
	return defaultCalculator.Compute(m)
}

// Numbers exposes the calculator's number formatter so renderers share one locale.
func (c *Calculator) Numbers() NumberFormatter {
	if c == nil {
		return defaultCalculator.numbers
	}
	return c.numbers
}

// Compute derives the BMI result for m.
func (c *Calculator) Compute(m Measurements) Result {
	weight := sanitizeNumber(m.Weight)
	height := sanitizeNumber(m.Height)
	if weight <= 0 || height <= 0 {
		return Result{}
	}

	weightUnit := NormalizeWeightUnit(string(m.WeightUnit))
	heightUnit := NormalizeHeightUnit(string(m.HeightUnit))

	kg := ToKilograms(weight, weightUnit)
	meters := ToMeters(height, heightUnit)

	value := Round1(kg / (meters * meters))
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return Result{}
	}

	return Result{
		BMI:            value,
		Classification: Classify(value),
		DisplayWeight:  c.Numbers().displayWeight(weight, weightUnit, kg),
		UpdatedAt:      m.UpdatedAt,
		valid:          true,
	}
}

// sanitizeNumber treats NaN and infinities like a missing value.
func sanitizeNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
