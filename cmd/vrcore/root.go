package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/analysis"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/config"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/logging"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/store"
	"github.com/Deltares-research/VrtoolDashboard-sub000/internal/traject"
)

// version is set at build time via -ldflags.
var version = "dev"

// #region root
// app carries what PersistentPreRunE wires for the subcommands.
type app struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
	store  *store.Store
	svc    *analysis.Service
}

// execute runs the command tree on args. Teardown is deferred here because cobra
// skips post-run hooks when a command fails.
func execute(args []string, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.teardown()
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.Execute()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "vrcore",
		Short: "Flood-defense reinforcement evaluation core",
		Long:  "vrcore aggregates section reliability into traject failure probability curves,\nreplays optimizer traces and ranks reinforcements by marginal risk per cost.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.Version = version

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML config file")
	f.StringVar(&a.dbPath, "db", "", "SQLite database (overrides config)")
	f.StringVar(&a.logLevel, "log-level", "", "debug|info|warn|error (overrides config)")

	root.AddCommand(newImportCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newSystemCmd(a))
	root.AddCommand(newGreedyCmd(a))
	root.AddCommand(newPriorityCmd(a))
	root.AddCommand(newProgramCmd(a))
	root.AddCommand(newRunsCmd(a))
	root.AddCommand(newServeCmd(a))
	return root
}

// #endregion root

// #region lifecycle
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.logger = logger

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store %s: %w", cfg.DBPath, err)
	}
	a.store = st
	a.svc = analysis.NewService(st, cfg, logger)
	logger.Debug("vrcore ready", zap.String("command", cmd.Name()), zap.String("db", cfg.DBPath))
	return nil
}

func (a *app) teardown() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
		a.logger = nil
	}
}

// #endregion lifecycle

// strategy resolves a --strategy flag, falling back to the configured default.
func (a *app) strategy(token string) (traject.Strategy, error) {
	if token == "" {
		return a.cfg.DefaultStrategy, nil
	}
	return traject.ParseStrategy(token)
}
