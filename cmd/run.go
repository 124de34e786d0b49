package cmd

import (
	"errors"
	"fmt"

	"github.com/abhisek/speakset/internal/app"
	"github.com/abhisek/speakset/internal/content"
	"github.com/abhisek/speakset/internal/logging"
	"github.com/spf13/cobra"
)

// runApp opens the store, loads content, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	paths, _ := cmd.Flags().GetStringSlice("content")
	if len(paths) == 0 {
		return errors.New("no content given (use --content FILE|DIR)")
	}
	contents, err := content.LoadAll(paths)
	if err != nil {
		return err
	}

	st, cfg, dbPath, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = defaultLogFile(dbPath)
	}
	logger, closeLog, err := logging.Open(logging.Options{
		File:   logFile,
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closeLog()

	fresh, _ := cmd.Flags().GetBool("fresh")
	logger.Info("starting", "db", dbPath, "sets", len(contents), "fresh", fresh)

	return app.Run(cmd.Context(), app.Options{
		Contents:   contents,
		Config:     cfg,
		States:     st.StateRepo(),
		Statements: st.StatementRepo(),
		Fresh:      fresh,
		Logger:     logger,
	})
}
