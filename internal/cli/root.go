// Package cli wires the cobra command tree. Every command builds its engine
// from the resolved config; nothing here holds state beyond flag values.
package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/frankyzip/moduspractica/internal/config"
	"github.com/frankyzip/moduspractica/internal/engine"
	"github.com/frankyzip/moduspractica/internal/flags"
	"github.com/frankyzip/moduspractica/internal/session"
	"github.com/frankyzip/moduspractica/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "moduspractica",
	Short: "Practice scheduling on a forgetting-curve memory model",
	Long: "ModusPractica tracks bar sections of the pieces you practice and schedules\n" +
		"when each one should be revisited, based on how fast your memory of it decays.",
}

var configPath string

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.moduspractica/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(piecesCmd)
	rootCmd.AddCommand(addPieceCmd)
	rootCmd.AddCommand(addSectionCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(flagsCmd)
}

// loadConfig resolves the config file and the data directory.
func loadConfig() (config.Config, error) {
	dataDir, err := config.DefaultDataDir()
	if err != nil {
		return config.Config{}, err
	}
	path := configPath
	if path == "" {
		path = filepath.Join(dataDir, "config.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	return cfg, nil
}

// openEngine builds a fully wired engine from the config. The caller must
// invoke the returned cleanup when done.
func openEngine(cfg config.Config) (*engine.Engine, func(), error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = filepath.Join(cfg.DataDir, "moduspractica.db")
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	mgr := session.NewManager(session.DefaultPath(cfg.DataDir, cfg.Profile))
	mgr.Load()

	eng := engine.New(db, mgr, flags.NewRegistry(cfg.Flags))
	eng.Age = cfg.Age()
	eng.Calibration = cfg.Personal.Calibration
	return eng, func() { db.Close() }, nil
}
