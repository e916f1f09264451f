package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// OutputOptions selects between the table view and JSON.
type OutputOptions struct {
	JSON bool
}

func addOutputArg(cmd *cobra.Command, o *OutputOptions) {
	cmd.Flags().BoolVar(&o.JSON, "json", false, "Output as JSON.")
}

func (o *OutputOptions) writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

// MeasurementOptions are the calculator inputs.
type MeasurementOptions struct {
	Weight     float64
	WeightUnit string
	Height     float64
	HeightUnit string
	Lang       string
}

func addMeasurementArgs(cmd *cobra.Command, o *MeasurementOptions) {
	cmd.Flags().Float64Var(&o.Weight, "weight", 0, "Body weight.")
	cmd.Flags().StringVar(&o.WeightUnit, "weight-unit", "kg", `Weight unit, "kg" or "lb".`)
	cmd.Flags().Float64Var(&o.Height, "height", 0, "Body height.")
	cmd.Flags().StringVar(&o.HeightUnit, "height-unit", "cm", `Height unit, "cm" or "in".`)
	cmd.Flags().StringVar(&o.Lang, "lang", "en", "Locale used for number formatting, e.g. en or de.")
	_ = cmd.MarkFlagRequired("weight")
	_ = cmd.MarkFlagRequired("height")
}

// ConfigOptions locate the server configuration.
type ConfigOptions struct {
	Path string
}

func addConfigArg(cmd *cobra.Command, o *ConfigOptions) {
	cmd.Flags().StringVar(&o.Path, "config", "", "Directory containing config.yaml (defaults to ./config).")
}
