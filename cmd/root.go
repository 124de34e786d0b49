package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/abhisek/speakset/internal/config"
	"github.com/abhisek/speakset/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "speakset",
	Short: "Spoken-answer quiz sets in the terminal",
	Long:  "Speakset runs sets of speak-the-words questions, saves progress per set and records an analytics statement for every answer.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SPEAKSET_DB env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional .env file with SPEAKSET_* variables")

	rootCmd.Flags().StringSliceP("content", "c", nil, "Content file or directory (JSON or YAML), repeatable")
	rootCmd.Flags().Bool("fresh", false, "Ignore saved progress the first time each set is opened")

	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(statementsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the .env file and the environment and validates the
// result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadEnvFile(envFile); err != nil {
		return config.Config{}, err
	}
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then SPEAKSET_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore loads the config and opens the database it points at.
func openStore(cmd *cobra.Command) (*store.Store, config.Config, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, "", err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, cfg, "", fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, cfg, "", fmt.Errorf("open store: %w", err)
	}
	return st, cfg, dbPath, nil
}

// defaultLogFile places the log next to the database.
func defaultLogFile(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "speakset.log")
}
