package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizcraft/internal/config"
	"github.com/abhisek/quizcraft/internal/difficulty"
	"github.com/abhisek/quizcraft/internal/llm"
	"github.com/abhisek/quizcraft/internal/logging"
	"github.com/abhisek/quizcraft/internal/questiongen"
	"github.com/abhisek/quizcraft/internal/service"
	"github.com/abhisek/quizcraft/internal/store"
	"github.com/abhisek/quizcraft/internal/store/mongostore"
)

var rootCmd = &cobra.Command{
	Use:           "quizcraft",
	Short:         "AI-assisted quiz authoring and delivery",
	Long:          "quizcraft generates multiple-choice quizzes with an LLM, serves them over HTTP, and grades attempts.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZCRAFT_DB env var)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Optional dotenv file read before the environment")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads settings with the --db flag taking priority over
// QUIZCRAFT_DB.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return cfg, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	return cfg, nil
}

// resolveDBPath returns the configured SQLite path, or the default XDG
// path when none is set.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openBackend opens the persistence backend selected by cfg.Store.
func openBackend(ctx context.Context, cfg config.Config) (store.Backend, error) {
	switch cfg.Store {
	case config.StoreMongo:
		s, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		return s, nil
	default:
		dbPath, err := resolveDBPath(cfg)
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return s, nil
	}
}

// env is what every command needs: settings, a logger and an open backend.
type env struct {
	cfg     config.Config
	log     *slog.Logger
	backend store.Backend
}

func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.Env, cfg.LogLevel)
	backend, err := openBackend(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, backend: backend}, nil
}

func (e *env) Close() {
	if err := e.backend.Close(); err != nil {
		e.log.Warn("close backend", "error", err)
	}
}

// generator builds the LLM-backed question generator. Calls are recorded
// in the backend's event log.
func (e *env) generator(ctx context.Context) (questiongen.Generator, error) {
	provider, err := llm.NewProvider(ctx, llm.ConfigFromEnv(), e.backend.EventRepo(), e.log)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	return questiongen.New(provider, e.cfg.Generation), nil
}

// service builds a service over the backend. gen may be nil.
func (e *env) service(gen questiongen.Generator) *service.Service {
	return service.New(service.Deps{
		Quizzes:   e.backend.Quizzes(),
		Attempts:  e.backend.Attempts(),
		Generator: gen,
		Adjuster:  difficulty.New(e.cfg.Thresholds),
		Log:       e.log,
	})
}
