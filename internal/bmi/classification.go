package bmi

import "fmt"

// Classification is one of the six ordered weight-status bands.
type Classification int

const (
	Unclassified Classification = iota
	Underweight
	NormalWeight
	Overweight
	ObesityClassI
	ObesityClassII
	ObesityClassIII
)

// Lower bounds (inclusive) of each band above Underweight.
const (
	NormalWeightFrom    = 18.5
	OverweightFrom      = 25.0
	ObesityClassIFrom   = 30.0
	ObesityClassIIFrom  = 35.0
	ObesityClassIIIFrom = 40.0
)

var classificationLabels = map[Classification]string{
	Underweight:     "Underweight",
	NormalWeight:    "Normal weight",
	Overweight:      "Overweight",
	ObesityClassI:   "Obesity class I",
	ObesityClassII:  "Obesity class II",
	ObesityClassIII: "Obesity class III",
}

// Classify maps an already rounded BMI to its band.
func Classify(bmi float64) Classification {
	switch {
	case bmi < NormalWeightFrom:
		return Underweight
	case bmi < OverweightFrom:
		return NormalWeight
	case bmi < ObesityClassIFrom:
		return Overweight
	case bmi < ObesityClassIIFrom:
		return ObesityClassI
	case bmi < ObesityClassIIIFrom:
		return ObesityClassII
	default:
		return ObesityClassIII
	}
}

// Classifications returns every band in ascending order.
func Classifications() []Classification {
	return []Classification{Underweight, NormalWeight, Overweight, ObesityClassI, ObesityClassII, ObesityClassIII}
}

func (c Classification) String() string {
	if label, ok := classificationLabels[c]; ok {
		return label
	}
	return ""
}

// Slug is a stable identifier used for metric labels and CSS classes.
func (c Classification) Slug() string {
	switch c {
	case Underweight:
		return "underweight"
	case NormalWeight:
		return "normal"
	case Overweight:
		return "overweight"
	case ObesityClassI:
		return "obesity_1"
	case ObesityClassII:
		return "obesity_2"
	case ObesityClassIII:
		return "obesity_3"
	default:
		return "none"
	}
}

// MarshalText encodes the human readable label.
func (c Classification) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts a label produced by MarshalText.
func (c *Classification) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = Unclassified
		return nil
	}
	for class, label := range classificationLabels {
		if label == string(text) {
			*c = class
			return nil
		}
	}
	return fmt.Errorf("bmi: unknown classification %q", string(text))
}
