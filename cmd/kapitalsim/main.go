package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zinsplan/kapitalsim/internal/calculation"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "kapitalsim",
		Short: "Kapital- und Entnahmesimulation nach deutschem Steuerrecht",
		Long: `kapitalsim simulates capital growth and withdrawal plans year by year,
including the German capital gains tax approximation (Teilfreistellung,
Freibetrag, Vorabpauschale, Günstigerprüfung), and compares scenarios.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCommand())
	root.AddCommand(newCompareCommand())
	root.AddCommand(newExampleCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds the engine logger: zap in development mode when verbose,
// a no-op otherwise.
func newLogger() (calculation.Logger, func()) {
	if !verbose {
		return calculation.NopLogger{}, func() {}
	}
	zl, err := zap.NewDevelopment()
	if err != nil {
		return calculation.NopLogger{}, func() {}
	}
	return calculation.NewZapLogger(zl), func() { _ = zl.Sync() }
}
