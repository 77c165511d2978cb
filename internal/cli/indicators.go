// Package cli provides the command-line interface for the indicator engine.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"taframe/internal/indicators"
)

// addIndicatorCommands adds the indicators listing command.
func addIndicatorCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "indicators",
		Short: "List available indicator kinds",
		Long: `List every registered indicator kind with its parameters.

Parameters marked required must appear in the specifier; the rest fall
back to their defaults when omitted. Example specifiers are shown with
all defaults filled in.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			kinds := app.Registry.Kinds()
			if output.IsJSON() {
				return printIndicatorsJSON(output, app, kinds)
			}

			color.Cyan("📊 Available Indicators")
			fmt.Println()

			table := NewTable(output, "KIND", "PARAMETERS", "INPUTS", "SUB-DEPS", "OUTPUTS")
			for _, kind := range kinds {
				desc, err := app.Registry.Lookup(kind)
				if err != nil {
					return err
				}
				table.AddRow(kind, describeParams(desc), strings.Join(desc.Inputs, ", "),
					describeSubDeps(desc), describeOutputs(desc))
			}
			table.Render()

			fmt.Println()
			color.Yellow("💡 Request indicators as '<kind>_<param>...', e.g. sma_14 or boll_20_2.5")
			return nil
		},
	})
}

func printIndicatorsJSON(output *Output, app *App, kinds []string) error {
	type paramInfo struct {
		Name     string   `json:"name"`
		Type     string   `json:"type"`
		Required bool     `json:"required"`
		Default  *float64 `json:"default,omitempty"`
		Min      *float64 `json:"min,omitempty"`
		Max      *float64 `json:"max,omitempty"`
	}
	type kindInfo struct {
		Kind    string      `json:"kind"`
		Params  []paramInfo `json:"params"`
		Inputs  []string    `json:"inputs,omitempty"`
		SubDeps []string    `json:"sub_deps,omitempty"`
		Outputs []string    `json:"outputs,omitempty"`
	}

	infos := make([]kindInfo, 0, len(kinds))
	for _, kind := range kinds {
		desc, err := app.Registry.Lookup(kind)
		if err != nil {
			return err
		}
		info := kindInfo{Kind: kind, Inputs: desc.Inputs, SubDeps: subDepKinds(desc), Outputs: desc.Outputs}
		for _, p := range desc.Params {
			pi := paramInfo{Name: p.Name, Type: "float", Required: p.Required()}
			if p.Integer {
				pi.Type = "int"
			}
			if !p.Required() {
				def := p.Default
				pi.Default = &def
			}
			if !math.IsNaN(p.Min) {
				min := p.Min
				pi.Min = &min
			}
			if !math.IsNaN(p.Max) {
				max := p.Max
				pi.Max = &max
			}
			info.Params = append(info.Params, pi)
		}
		infos = append(infos, info)
	}
	return output.JSON(infos)
}

// describeParams renders the parameter list of a descriptor, e.g.
// "window int (required, >=1), smooth int (default 3)".
func describeParams(desc *indicators.Descriptor) string {
	if len(desc.Params) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(desc.Params))
	for _, p := range desc.Params {
		parts = append(parts, describeParam(p))
	}
	return strings.Join(parts, ", ")
}

func describeParam(p indicators.ParamSpec) string {
	typ := "float"
	if p.Integer {
		typ = "int"
	}

	var notes []string
	if p.Required() {
		notes = append(notes, "required")
	} else {
		notes = append(notes, "default "+formatParamValue(p.Default))
	}
	if !math.IsNaN(p.Min) {
		notes = append(notes, ">="+formatParamValue(p.Min))
	}
	if !math.IsNaN(p.Max) {
		notes = append(notes, "<="+formatParamValue(p.Max))
	}
	return fmt.Sprintf("%s %s (%s)", p.Name, typ, strings.Join(notes, ", "))
}

func formatParamValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// subDepKinds names the indicator kinds a descriptor derives its
// inputs from, evaluated with example parameters (each required
// parameter at its minimum, the rest at their defaults).
func subDepKinds(desc *indicators.Descriptor) []string {
	if desc.SubDeps == nil {
		return nil
	}
	params := make([]float64, len(desc.Params))
	for i, p := range desc.Params {
		switch {
		case !p.Required():
			params[i] = p.Default
		case !math.IsNaN(p.Min):
			params[i] = p.Min
		default:
			params[i] = 1
		}
	}
	deps := desc.SubDeps(params)
	kinds := make([]string, 0, len(deps))
	for _, dep := range deps {
		kinds = append(kinds, dep.Kind)
	}
	return kinds
}

// describeSubDeps renders the sub-dependency kinds for the listing table.
func describeSubDeps(desc *indicators.Descriptor) string {
	kinds := subDepKinds(desc)
	if len(kinds) == 0 {
		return "-"
	}
	return strings.Join(kinds, ", ")
}

// describeOutputs names the columns an indicator produces.
func describeOutputs(desc *indicators.Descriptor) string {
	if len(desc.Outputs) == 0 {
		return "value"
	}
	return strings.Join(desc.Outputs, ", ")
}
