// Command flowexpr evaluates and validates model expressions from the
// command line.
//
//	flowexpr eval "max(rain - evap, 0)" --var rain=4.2 --var evap=1.1
//	flowexpr validate "maximum(a, b)"
//	flowexpr functions
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	log     = logrus.New()
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "flowexpr",
		Short:         "Evaluate and validate model expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(os.Stderr)
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newEvalCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newFunctionsCmd())

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
