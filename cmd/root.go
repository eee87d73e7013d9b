package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/pylearn/internal/config"
	"github.com/abhisek/pylearn/internal/logging"
	"github.com/abhisek/pylearn/internal/progression"
	"github.com/abhisek/pylearn/internal/stats"
	"github.com/abhisek/pylearn/internal/store"
	"github.com/abhisek/pylearn/internal/validator"
)

var rootCmd = &cobra.Command{
	Use:   "pylearn",
	Short: "Learn Python step by step in the terminal",
	Long:  "PyLearn: Python modules, lessons and tasks unlocked one at a time.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PYLEARN_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Int64("user", 0, "Learner ID (overrides user.id)")

	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)
}

// env bundles the services every command works with.
type env struct {
	cfg       *config.Config
	log       *zap.Logger
	store     *store.Store
	engine    *progression.Engine
	validator *validator.Validator
	stats     *stats.Service
	userID    int64
}

func (e *env) Close() {
	e.store.Close()
	e.log.Sync()
}

// openEnv loads configuration, opens and seeds the store, and wires the
// progression, validation and statistics services.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if u, _ := cmd.Flags().GetInt64("user"); u > 0 {
		cfg.User.ID = u
	}

	logFile := cfg.Log.File
	if logFile == "" {
		if dir, err := store.DataDir(); err == nil {
			logFile = logging.DefaultFile(dir)
		}
	}
	log, err := logging.New(logging.Options{Level: cfg.Log.Level, File: logFile, Console: cfg.Log.Console})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath, store.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if _, err := st.Seed(cmd.Context()); err != nil {
		st.Close()
		return nil, fmt.Errorf("seed store: %w", err)
	}

	engine := progression.New(st, progression.WithLogger(log))
	v := validator.New(st, engine, validator.Config{
		Scorer:            validator.ScorerByName(cfg.Validator.Scorer),
		TypingThreshold:   cfg.Validator.TypingThreshold,
		ExerciseThreshold: cfg.Validator.ExerciseThreshold,
	}, log)

	log.Debug("environment ready", zap.String("db", dbPath), zap.Int64("user_id", cfg.User.ID))
	return &env{
		cfg:       cfg,
		log:       log,
		store:     st,
		engine:    engine,
		validator: v,
		stats:     stats.NewService(st),
		userID:    cfg.User.ID,
	}, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then db.path from config, then PYLEARN_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.DB.Path != "" {
		return cfg.DB.Path, store.EnsureDir(cfg.DB.Path)
	}
	return store.DefaultDBPath()
}
