package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hydrokit/flowexpr"
)

func newValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate [expression ...]",
		Short: "Validate expressions and report diagnostics",
		Long: `Validate expressions and report diagnostics.

Expressions are given as arguments, or one per line via --file
(use "-" for stdin). The exit status is nonzero when any expression
is invalid.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := args
			if file != "" {
				fromFile, err := readLines(file)
				if err != nil {
					return err
				}
				sources = append(sources, fromFile...)
			}
			if len(sources) == 0 {
				return fmt.Errorf("no expressions to validate")
			}

			v := flowexpr.NewValidator()
			invalid := 0
			for _, source := range sources {
				res := v.Validate(source)
				if res.Valid {
					fmt.Fprintf(cmd.OutOrStdout(), "ok: %s\n", source)
					for _, w := range res.Warnings {
						fmt.Fprintf(cmd.OutOrStdout(), "  warning: %s\n", w)
					}
					log.WithField("variables", res.Variables).Debug(source)
					continue
				}
				invalid++
				fmt.Fprintf(cmd.OutOrStdout(), "error: %s\n  %s\n", source, res.Err)
			}

			if invalid > 0 {
				return fmt.Errorf("%d invalid expression(s)", invalid)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read expressions, one per line (\"-\" for stdin)")

	return cmd
}

// readLines reads non-empty lines from path, or stdin when path is "-".
func readLines(path string) ([]string, error) {
	r := os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}
