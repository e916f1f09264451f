package bmi

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used when no display language is configured.
var DefaultLocale = language.English

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// NumberFormatter renders numbers with locale digit grouping.
type NumberFormatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewNumberFormatter builds a formatter for the BCP 47 tag; unparsable tags fall back to DefaultLocale.
func NewNumberFormatter(lang string) NumberFormatter {
	tag := DefaultLocale
	if lang != "" {
		if parsed, err := language.Parse(lang); err == nil {
			tag = parsed
		}
	}
	return NumberFormatter{tag: tag, printer: message.NewPrinter(tag)}
}

// Tag returns the effective locale.
func (f NumberFormatter) Tag() language.Tag { return f.tag }

// Decimal1 renders v with exactly one fraction digit and locale grouping.
func (f NumberFormatter) Decimal1(v float64) string {
	printer := f.printer
	if printer == nil {
		printer = message.NewPrinter(DefaultLocale)
	}
	return printer.Sprint(number.Decimal(Round1(v), number.Scale(1)))
}

// displayWeight shows the stored unit first and its counterpart in parentheses.
func (f NumberFormatter) displayWeight(weight float64, unit WeightUnit, kg float64) string {
	if unit == Pounds {
		return fmt.Sprintf("%s lb (%.1f kg)", f.Decimal1(weight), kg)
	}
	return fmt.Sprintf("%.1f kg (%.1f lb)", kg, KilogramsToPounds(kg))
}
