package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hydrokit/flowexpr/pkg/functions"
)

func newFunctionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the built-in functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := functions.Default()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tARGS")
			for _, name := range reg.Names() {
				spec, _ := reg.Lookup(name)
				fmt.Fprintf(w, "%s\t%s\n", name, arityString(spec))
			}
			return w.Flush()
		},
	}
}

func arityString(spec *functions.Spec) string {
	switch {
	case spec.MaxArgs == functions.Variadic:
		return fmt.Sprintf("%d+", spec.MinArgs)
	case spec.MinArgs == spec.MaxArgs:
		return fmt.Sprintf("%d", spec.MinArgs)
	default:
		return fmt.Sprintf("%d-%d", spec.MinArgs, spec.MaxArgs)
	}
}
