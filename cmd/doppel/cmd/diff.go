package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/doppelgang/doppel/internal/document"
	"github.com/doppelgang/doppel/pkg/equiv"
)

var diffCmd = &cobra.Command{
	Use:   "diff SUBJECT EXPECTATION",
	Short: "Compare two documents structurally",
	Long: `Diff loads two documents and compares them member by member. It prints
one line per differing path and exits 1 when differences are found.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	addEngineFlags(diffCmd)
	diffCmd.Flags().String("format", "auto", "Document format for both inputs (auto, json, yaml)")
}

func runDiff(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	plan, err := enginePlan(cmd, cfg)
	if err != nil {
		return err
	}

	formatName, _ := cmd.Flags().GetString("format")
	format, err := document.ParseFormat(formatName)
	if err != nil {
		return err
	}

	subject, err := document.Load(args[0], format)
	if err != nil {
		return err
	}
	expectation, err := document.Load(args[1], format)
	if err != nil {
		return err
	}

	result := equiv.Compare(plan, subject, expectation)
	if !result.OK() {
		fmt.Println(result)
		return fmt.Errorf("%w: %d", ErrDifferences, len(result.Failures))
	}
	return nil
}
