package bmi

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeMetric(t *testing.T) {
	updated := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	result := Compute(Measurements{
		Weight:     70,
		WeightUnit: Kilograms,
		Height:     175,
		HeightUnit: Centimeters,
		UpdatedAt:  updated,
	})

	require.True(t, result.Valid())
	require.Equal(t, 22.9, result.BMI)
	require.Equal(t, NormalWeight, result.Classification)
	require.Equal(t, "Normal weight", result.Classification.String())
	require.Equal(t, "70.0 kg (154.3 lb)", result.DisplayWeight)
	require.True(t, result.UpdatedAt.Equal(updated))
}

func TestComputeImperial(t *testing.T) {
	result := Compute(Measurements{
		Weight:     154,
		WeightUnit: Pounds,
		Height:     69,
		HeightUnit: Inches,
	})

	require.True(t, result.Valid())
	require.InDelta(t, 69.853, ToKilograms(154, Pounds), 0.001)
	require.InDelta(t, 1.7526, ToMeters(69, Inches), 0.0001)
	require.Equal(t, 22.7, result.BMI)
	require.Equal(t, NormalWeight, result.Classification)
	require.Equal(t, "154.0 lb (69.9 kg)", result.DisplayWeight)
}

func TestComputeInvalidMeasurements(t *testing.T) {
	cases := map[string]Measurements{
		"zero weight":     {Weight: 0, Height: 175},
		"zero height":     {Weight: 70, Height: 0},
		"negative weight": {Weight: -70, WeightUnit: Pounds, Height: 175},
		"negative height": {Weight: 70, Height: -69, HeightUnit: Inches},
		"both negative":   {Weight: -1, Height: -1},
		"nan weight":      {Weight: math.NaN(), Height: 175},
		"inf height":      {Weight: 70, Height: math.Inf(1)},
		"missing":         {},
	}

	for name, m := range cases {
		t.Run(name, func(t *testing.T) {
			m.UpdatedAt = time.Now()
			result := Compute(m)
			require.False(t, result.Valid())
			require.Equal(t, Result{}, result)
		})
	}
}

func TestComputeUnknownUnitsFallBackToMetric(t *testing.T) {
	result := Compute(Measurements{
		Weight:     70,
		WeightUnit: WeightUnit("stone"),
		Height:     175,
		HeightUnit: HeightUnit("ft"),
	})

	require.True(t, result.Valid())
	require.Equal(t, 22.9, result.BMI)
	require.Equal(t, "70.0 kg (154.3 lb)", result.DisplayWeight)
}

func TestClassificationBoundaries(t *testing.T) {
	cases := []struct {
		bmi  float64
		want Classification
	}{
		{10, Underweight},
		{18.4, Underweight},
		{18.5, NormalWeight},
		{24.9, NormalWeight},
		{25.0, Overweight},
		{29.9, Overweight},
		{30.0, ObesityClassI},
		{34.9, ObesityClassI},
		{35.0, ObesityClassII},
		{39.9, ObesityClassII},
		{40.0, ObesityClassIII},
		{62.3, ObesityClassIII},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, Classify(tc.bmi), "bmi %.1f", tc.bmi)
	}
}

func TestComputeRoundsBeforeClassifying(t *testing.T) {
	// With a 100 cm height the raw BMI equals the weight in kilograms.
	exact := Compute(Measurements{Weight: 18.5, WeightUnit: Kilograms, Height: 100, HeightUnit: Centimeters})
	require.Equal(t, 18.5, exact.BMI)
	require.Equal(t, NormalWeight, exact.Classification)

	roundsUp := Compute(Measurements{Weight: 24.95, WeightUnit: Kilograms, Height: 100, HeightUnit: Centimeters})
	require.Equal(t, 25.0, roundsUp.BMI)
	require.Equal(t, Overweight, roundsUp.Classification)

	justBelow := Compute(Measurements{Weight: 18.46, WeightUnit: Kilograms, Height: 100, HeightUnit: Centimeters})
	require.Equal(t, 18.5, justBelow.BMI)
	require.Equal(t, NormalWeight, justBelow.Classification)

	require.Equal(t, 18.4, Compute(Measurements{Weight: 18.44, Height: 100}).BMI)
}

func TestComputeIsIdempotent(t *testing.T) {
	m := Measurements{Weight: 154, WeightUnit: Pounds, Height: 69, HeightUnit: Inches, UpdatedAt: time.Unix(1700000000, 0)}

	first := Compute(m)
	second := Compute(m)
	require.Equal(t, first, second)
}

func TestPoundKilogramRoundTrip(t *testing.T) {
	for _, lb := range []float64{0.1, 1, 99.9, 154, 212.4, 1234.5} {
		back := KilogramsToPounds(PoundsToKilograms(lb))
		require.Equal(t, Round1(lb), Round1(back), "lb %.1f", lb)
	}
}

func TestDisplayWeightUsesLocaleGrouping(t *testing.T) {
	english := NewCalculator("en").Compute(Measurements{Weight: 1234.5, WeightUnit: Pounds, Height: 70, HeightUnit: Inches})
	require.Equal(t, "1,234.5 lb (560.0 kg)", english.DisplayWeight)

	german := NewCalculator("de").Compute(Measurements{Weight: 1234.5, WeightUnit: Pounds, Height: 70, HeightUnit: Inches})
	require.Equal(t, "1.234,5 lb (560.0 kg)", german.DisplayWeight)

	fallback := NewCalculator("not a locale").Numbers()
	require.Equal(t, DefaultLocale, fallback.Tag())
	require.Equal(t, "22.0", fallback.Decimal1(22))
}

func TestClassificationText(t *testing.T) {
	for _, class := range Classifications() {
		text, err := class.MarshalText()
		require.NoError(t, err)

		var decoded Classification
		require.NoError(t, decoded.UnmarshalText(text))
		require.Equal(t, class, decoded)
		require.NotEqual(t, "none", class.Slug())
	}

	require.Equal(t, "", Unclassified.String())
	var decoded Classification
	require.Error(t, decoded.UnmarshalText([]byte("Morbid")))
}

func TestNormalizeUnits(t *testing.T) {
	require.Equal(t, Pounds, NormalizeWeightUnit("lb"))
	require.Equal(t, Kilograms, NormalizeWeightUnit("LB"))
	require.Equal(t, Kilograms, NormalizeWeightUnit(""))
	require.Equal(t, Inches, NormalizeHeightUnit("in"))
	require.Equal(t, Centimeters, NormalizeHeightUnit(" in "))
	require.Equal(t, Kilograms, NormalizeWeightUnit(" lb"))
	require.Equal(t, Centimeters, NormalizeHeightUnit("feet"))

	_, ok := ParseWeightUnit("kg")
	require.True(t, ok)
	_, ok = ParseHeightUnit("mm")
	require.False(t, ok)
}
