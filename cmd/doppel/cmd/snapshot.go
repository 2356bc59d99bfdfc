package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doppelgang/doppel/internal/document"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage stored expectation snapshots",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save NAME DOCUMENT",
	Short: "Store a document as the newest version of a named snapshot",
	Args:  cobra.ExactArgs(2),
	RunE:  runSnapshotSave,
}

var snapshotCheckCmd = &cobra.Command{
	Use:   "check NAME DOCUMENT",
	Short: "Compare a document against the latest version of a snapshot",
	Args:  cobra.ExactArgs(2),
	RunE:  runSnapshotCheck,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots with version counts",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotCheckCmd)
	snapshotCmd.AddCommand(snapshotListCmd)

	snapshotSaveCmd.Flags().String("format", "auto", "Document format (auto, json, yaml)")
	addEngineFlags(snapshotCheckCmd)
	snapshotCheckCmd.Flags().String("format", "auto", "Document format (auto, json, yaml)")
}

// resolveFormat turns the --format flag into a concrete format, falling
// back to file extension detection for auto.
func resolveFormat(cmd *cobra.Command, path string) (document.Format, error) {
	formatName, _ := cmd.Flags().GetString("format")
	format, err := document.ParseFormat(formatName)
	if err != nil {
		return "", err
	}
	if format == document.FormatAuto {
		return document.DetectFormat(path)
	}
	return format, nil
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, err := resolveFormat(cmd, args[1])
	if err != nil {
		return err
	}
	doc, err := document.Load(args[1], format)
	if err != nil {
		return err
	}

	store, database, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	snap, err := store.Save(args[0], format, doc)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	fmt.Printf("saved %s (version %s)\n", snap.Name, snap.ID)
	return nil
}

func runSnapshotCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	plan, err := enginePlan(cmd, cfg)
	if err != nil {
		return err
	}

	format, err := resolveFormat(cmd, args[1])
	if err != nil {
		return err
	}
	subject, err := document.Load(args[1], format)
	if err != nil {
		return err
	}

	store, database, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	result, err := store.Check(args[0], subject, plan)
	if err != nil {
		return fmt.Errorf("failed to check snapshot: %w", err)
	}
	if !result.OK() {
		fmt.Println(result)
		return fmt.Errorf("%w: %d", ErrDifferences, len(result.Failures))
	}
	return nil
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, database, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	entries, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	for _, entry := range entries {
		fmt.Printf("%s\t%d\t%s\n", entry.Name, entry.Versions, entry.LatestAt.Format(time.RFC3339))
	}
	return nil
}
