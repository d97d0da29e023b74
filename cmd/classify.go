package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/lineage/internal/classifier"
)

var (
	classifyExplicitParams []string
	classifyRecord         bool
	classifyName           string
	classifyWrites         []string
)

// classifyCmd splits a command line into paths and parameters.
var classifyCmd = &cobra.Command{
	Use:   "classify -- <command...>",
	Short: "Classify the arguments of a command line",
	Long: `Classify splits a command line into its base command and arguments and
decides for every argument whether it names a path or is an opaque parameter.
Arguments naming an existing file or directory are paths; redirection targets
are paths mapped to the redirected stream.

A single quoted argument is split with shell quoting rules:

  lineage classify -- python train.py --epochs 10 data.csv
  lineage classify "sort -r data.csv > sorted.csv"

With --record the classification becomes a plan that is resolved against the
plan store: classifying an unchanged command under the same name reuses the
stored plan, a changed one is stored as a new version. Paths given with
--writes are recorded as outputs of the plan.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	tokens := args
	if len(args) == 1 {
		split, err := classifier.Split(args[0])
		if err != nil {
			return err
		}
		tokens = split
	}
	if len(tokens) == 0 {
		return fmt.Errorf("empty command")
	}

	application, err := newApplication(cmd)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}

	services := application.Services()

	res := classifier.Classify(tokens, services.Checker, classifier.Options{
		ExplicitParameters: classifyExplicitParams,
	})
	if !classifyRecord {
		return formatter.FormatClassification(&res)
	}

	if len(classifyWrites) > 0 {
		res = res.MarkOutputs(classifyWrites)
	}
	_, decisions, err := services.ResolvePlans(res.ToPlan(classifyName), true)
	if err != nil {
		return err
	}
	return formatter.FormatDecisions(decisions)
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringArrayVar(&classifyExplicitParams, "explicit-param", nil, "Value that stays a parameter even when it names an existing path (repeatable)")
	classifyCmd.Flags().BoolVar(&classifyRecord, "record", false, "Store the classification as a plan and print the reuse decision")
	classifyCmd.Flags().StringVar(&classifyName, "name", "", "Plan name for --record (default: the base command joined with dashes)")
	classifyCmd.Flags().StringArrayVar(&classifyWrites, "writes", nil, "Path the command writes, recorded as an output with --record (repeatable)")
}
