package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hydrokit/flowexpr"
	"github.com/hydrokit/flowexpr/pkg/evaluator"
)

func newEvalCmd() *cobra.Command {
	var (
		varFlags   []string
		missingVar string
		divZero    string
		mathErr    string
		maxDepth   int
	)

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Compile and evaluate an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseBindings(varFlags)
			if err != nil {
				return err
			}

			opts, err := evalOptions(missingVar, divZero, mathErr, maxDepth)
			if err != nil {
				return err
			}

			expr, err := flowexpr.Compile(args[0])
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"variables": expr.Variables(),
				"warnings":  expr.Warnings(),
			}).Debug("compiled expression")

			result, err := flowexpr.NewEvaluator(opts...).Eval(expr, vars)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(result, 'g', -1, 64))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&varFlags, "var", nil, "variable binding as name=value (repeatable)")
	cmd.Flags().StringVar(&missingVar, "missing-var", "fail", "missing variable policy: fail, zero, nan")
	cmd.Flags().StringVar(&divZero, "div-zero", "infinity", "division by zero policy: infinity, fail, nan")
	cmd.Flags().StringVar(&mathErr, "math-err", "nan", "math error policy: nan, fail")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (0 = default)")

	return cmd
}

// parseBindings converts repeated name=value flags into a bindings map.
func parseBindings(flags []string) (map[string]float64, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	vars := make(map[string]float64, len(flags))
	for _, f := range flags {
		name, value, ok := strings.Cut(f, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q: expected name=value", f)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --var %q: %w", f, err)
		}
		vars[name] = v
	}
	return vars, nil
}

// evalOptions translates flag values into evaluator options.
func evalOptions(missingVar, divZero, mathErr string, maxDepth int) ([]evaluator.EvalOption, error) {
	var opts []evaluator.EvalOption

	switch missingVar {
	case "fail":
	case "zero":
		opts = append(opts, evaluator.WithMissingVariablePolicy(evaluator.MissingVariableSubstitute))
	case "nan":
		opts = append(opts, evaluator.WithMissingVariablePolicy(evaluator.MissingVariableNaN))
	default:
		return nil, fmt.Errorf("invalid --missing-var %q: expected fail, zero, or nan", missingVar)
	}

	switch divZero {
	case "infinity":
	case "fail":
		opts = append(opts, evaluator.WithDivisionByZeroPolicy(evaluator.DivisionByZeroFail))
	case "nan":
		opts = append(opts, evaluator.WithDivisionByZeroPolicy(evaluator.DivisionByZeroNaN))
	default:
		return nil, fmt.Errorf("invalid --div-zero %q: expected infinity, fail, or nan", divZero)
	}

	switch mathErr {
	case "nan":
	case "fail":
		opts = append(opts, evaluator.WithMathErrorPolicy(evaluator.MathErrorFail))
	default:
		return nil, fmt.Errorf("invalid --math-err %q: expected nan or fail", mathErr)
	}

	if maxDepth > 0 {
		opts = append(opts, evaluator.WithMaxDepth(maxDepth))
	}

	return opts, nil
}
