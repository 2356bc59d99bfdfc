package cmd

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/doppelgang/doppel/internal/core/config"
	"github.com/doppelgang/doppel/internal/core/db"
	"github.com/doppelgang/doppel/internal/snapshot"
	"github.com/doppelgang/doppel/pkg/equiv"
)

const Version = "0.1.0"

// ErrDifferences marks a comparison that completed and found the inputs
// not equivalent. main maps it to exit code 1.
var ErrDifferences = errors.New("differences found")

var (
	configFile string
	storeURL   string
)

var rootCmd = &cobra.Command{
	Use:   "doppel",
	Short: "Structural equivalency comparator with snapshot storage",
	Long: `Doppel compares documents and live values member by member: selection
rules pick the members, matching rules pair them with the expectation,
and assertion rules decide leaf equality. Named snapshots persist an
expectation so later runs can verify against it.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&storeURL, "store-url", "", "Snapshot store URL (sqlite://path or postgres://...)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves configuration from file, environment, and the
// --store-url override, in that order of increasing precedence.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if storeURL != "" {
		cfg.StoreURL = storeURL
	}
	return cfg, nil
}

// openStore connects to the snapshot store and verifies the schema is in
// place. The caller closes the returned database handle.
func openStore(cfg *config.Config) (*snapshot.Store, *sqlx.DB, error) {
	database, err := db.Open(cfg.StoreURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	// Open has already pinged, so a failure here means the schema is
	// missing rather than the server.
	var applied int
	err = database.Get(&applied,
		database.Rebind("SELECT COUNT(*) FROM migrations WHERE migration_id = ?"),
		"001_initial_schema.sql")
	if err != nil || applied == 0 {
		database.Close()
		return nil, nil, fmt.Errorf("snapshot store not initialized - run 'doppel migrate' first")
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return snapshot.NewStore(queries), database, nil
}

// addEngineFlags registers the comparison knobs shared by diff and
// snapshot check.
func addEngineFlags(c *cobra.Command) {
	c.Flags().StringArray("exclude", nil, "Exclude members matching this path pattern (repeatable)")
	c.Flags().StringArray("include", nil, "Compare only members under this path pattern (repeatable)")
	c.Flags().Bool("best-effort", false, "Skip members the expectation lacks instead of failing")
	c.Flags().Bool("ignore-cycles", false, "Treat revisited references as equal instead of failing")
	c.Flags().Int("max-depth", 0, "Maximum structural descent depth")
	c.Flags().Bool("runtime-fields", false, "Select promoted fields from embedded structs")
	c.Flags().Bool("non-recursive", false, "Compare member values directly without descending")
}

// enginePlan layers command-line flags over the configured engine options
// and builds the comparison plan. Flags that were not set on the command
// line leave the configured values alone.
func enginePlan(c *cobra.Command, cfg *config.Config) (*equiv.Plan, error) {
	engine := cfg.Engine

	if v, _ := c.Flags().GetStringArray("exclude"); len(v) > 0 {
		engine.Exclude = append(append([]string{}, engine.Exclude...), v...)
	}
	if v, _ := c.Flags().GetStringArray("include"); len(v) > 0 {
		engine.Include = append(append([]string{}, engine.Include...), v...)
	}
	if ok, _ := c.Flags().GetBool("best-effort"); ok {
		engine.Matching = config.MatchingBestEffort
	}
	if ok, _ := c.Flags().GetBool("ignore-cycles"); ok {
		engine.Cycles = config.CyclesIgnore
	}
	if c.Flags().Changed("max-depth") {
		engine.MaxDepth, _ = c.Flags().GetInt("max-depth")
	}
	if ok, _ := c.Flags().GetBool("runtime-fields"); ok {
		engine.Selection = config.SelectionRuntime
	}
	if ok, _ := c.Flags().GetBool("non-recursive"); ok {
		engine.Recursive = false
	}

	merged := *cfg
	merged.Engine = engine
	return merged.Plan()
}
