package commands

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/fropcore/bmiwidget/internal/bmi"
)

type computeOutput struct {
	BMI            float64 `json:"bmi"`
	Classification string  `json:"classification"`
	DisplayWeight  string  `json:"display_weight"`
}

func addCompute(topLevel *cobra.Command) {
	mo := &MeasurementOptions{}
	oo := &OutputOptions{}

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute a BMI without touching the stored settings.",
		Example: `
bmictl compute --weight 70 --height 175
bmictl compute --weight 154 --weight-unit lb --height 69 --height-unit in --lang de
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			weightUnit, ok := bmi.ParseWeightUnit(mo.WeightUnit)
			if !ok {
				return fmt.Errorf("unknown weight unit %q", mo.WeightUnit)
			}
			heightUnit, ok := bmi.ParseHeightUnit(mo.HeightUnit)
			if !ok {
				return fmt.Errorf("unknown height unit %q", mo.HeightUnit)
			}

			calc := bmi.NewCalculator(mo.Lang)
			result := calc.Compute(bmi.Measurements{
				Weight:     mo.Weight,
				WeightUnit: weightUnit,
				Height:     mo.Height,
				HeightUnit: heightUnit,
			})
			if !result.Valid() {
				return errors.New("weight and height must be positive numbers")
			}

			if oo.JSON {
				return oo.writeJSON(cmd.OutOrStdout(), computeOutput{
					BMI:            result.BMI,
					Classification: result.Classification.String(),
					DisplayWeight:  result.DisplayWeight,
				})
			}

			tbl := uitable.New()
			tbl.Separator = " "
			tbl.AddRow("WEIGHT:", result.DisplayWeight)
			tbl.AddRow("BMI:", calc.Numbers().Decimal1(result.BMI))
			tbl.AddRow("CLASS:", classificationColor(result.Classification).Sprint(result.Classification.String()))
			_, err := fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return err
		},
	}

	addMeasurementArgs(cmd, mo)
	addOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func classificationColor(c bmi.Classification) *color.Color {
	switch c {
	case bmi.NormalWeight:
		return color.New(color.FgGreen, color.Bold)
	case bmi.Underweight, bmi.Overweight:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}
