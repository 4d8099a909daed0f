package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zinsplan/kapitalsim/internal/config"
)

func newExampleCommand() *cobra.Command {
	var comparison bool

	cmd := &cobra.Command{
		Use:   "example",
		Short: "Print an example configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var v any
			if comparison {
				v = config.CreateExampleComparison()
			} else {
				v = config.CreateExampleConfiguration()
			}
			data, err := yaml.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&comparison, "comparison", false, "emit a multi-scenario comparison instead")
	return cmd
}
