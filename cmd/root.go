package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/algotutor/internal/config"
	"github.com/abhisek/algotutor/internal/store"
	"github.com/abhisek/algotutor/internal/topicgraph"
)

var rootCmd = &cobra.Command{
	Use:   "algotutor",
	Short: "Mastery-aware tutor for AI search algorithms",
	Long:  "algotutor serves a tutoring API that adapts explanations to the topics a student has already mastered.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv("")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database file path or DSN (overrides TUTOR_DB)")
	rootCmd.PersistentFlags().String("db-driver", "", "Database driver: sqlite or postgres (overrides TUTOR_DB_DRIVER)")
	rootCmd.PersistentFlags().String("catalog", "", "Topic catalog file, .json or .yaml (overrides TUTOR_CATALOG)")
	rootCmd.Flags().String("addr", "", "Listen address (overrides TUTOR_ADDR)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(topicCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDB returns the driver and DSN using the --db-driver/--db flags
// first, then TUTOR_DB_DRIVER/TUTOR_DB, then SQLite at the default XDG path.
func resolveDB(cmd *cobra.Command) (driver, dsn string, err error) {
	driver, _ = cmd.Flags().GetString("db-driver")
	if driver == "" {
		driver = os.Getenv("TUTOR_DB_DRIVER")
	}
	if driver == "" {
		driver = store.DriverSQLite
	}

	dsn, _ = cmd.Flags().GetString("db")
	if dsn != "" {
		if driver == store.DriverSQLite {
			return driver, dsn, store.EnsureDir(dsn)
		}
		return driver, dsn, nil
	}
	if driver == store.DriverSQLite {
		dsn, err = store.DefaultDBPath()
		return driver, dsn, err
	}
	if dsn = os.Getenv("TUTOR_DB"); dsn == "" {
		return "", "", fmt.Errorf("TUTOR_DB is required for the %s driver", driver)
	}
	return driver, dsn, nil
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	driver, dsn, err := resolveDB(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	s, err := store.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// loadCatalog reads --catalog, then TUTOR_CATALOG, falling back to the
// embedded catalog.
func loadCatalog(cmd *cobra.Command) (*topicgraph.Graph, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		path = os.Getenv("TUTOR_CATALOG")
	}
	if path == "" {
		return topicgraph.Default()
	}
	return topicgraph.Load(path)
}
