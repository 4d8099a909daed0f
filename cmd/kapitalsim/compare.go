package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zinsplan/kapitalsim/internal/calculation"
	"github.com/zinsplan/kapitalsim/internal/config"
	"github.com/zinsplan/kapitalsim/internal/output"
)

func newCompareCommand() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "compare <comparison.yaml>",
		Short: "Run a multi-scenario comparison and print the statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, sync := newLogger()
			defer sync()

			parser := config.NewInputParser()
			comp, err := parser.LoadComparison(args[0])
			if err != nil {
				return err
			}

			engine := calculation.NewComparisonEngine()
			engine.SetLogger(logger)
			engine.Workers = workers
			if err := engine.RunComparison(cmd.Context(), comp); err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), output.RenderComparisonTable(comp))
			return nil
		},
	}
	cmd.Flags().IntVar(&workers, "workers", 1, "parallel scenario workers (1 = sequential)")
	return cmd
}
