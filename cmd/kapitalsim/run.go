package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zinsplan/kapitalsim/internal/calculation"
	"github.com/zinsplan/kapitalsim/internal/config"
	"github.com/zinsplan/kapitalsim/internal/domain"
	"github.com/zinsplan/kapitalsim/internal/output"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Simulate a single configuration and print the projection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, sync := newLogger()
			defer sync()

			parser := config.NewInputParser()
			cfg, err := parser.LoadConfiguration(args[0])
			if err != nil {
				return err
			}

			engine := calculation.NewComparisonEngine()
			engine.SetLogger(logger)
			res, err := engine.RunScenario(domain.Scenario{ID: "run", Name: "run", Config: *cfg})
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), output.RenderProjection(res))
			fmt.Fprintf(cmd.OutOrStdout(), "\nEndkapital (nominal): %s\n", output.FormatEUR(res.Summary.EndCapitalNominal))
			fmt.Fprintf(cmd.OutOrStdout(), "Endkapital (real):    %s\n", output.FormatEUR(res.Summary.EndCapitalReal))
			fmt.Fprintf(cmd.OutOrStdout(), "Steuern gesamt:       %s\n", output.FormatEUR(res.Summary.TotalTaxes))
			if res.Summary.AnnualizedReturnDefined {
				fmt.Fprintf(cmd.OutOrStdout(), "Rendite p.a.:         %s\n", output.FormatPercent(res.Summary.AnnualizedReturn))
			}
			if res.Summary.Exhausted {
				fmt.Fprintf(cmd.OutOrStdout(), "Kapital erschöpft nach %d Jahren\n", res.Summary.DurationYears)
			}
			return nil
		},
	}
}
