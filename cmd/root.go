// Package cmd implements the rubrica command line interface.
package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vmonsalve/rubrica/internal/config"
	"github.com/vmonsalve/rubrica/internal/evidence"
	"github.com/vmonsalve/rubrica/internal/llm"
	"github.com/vmonsalve/rubrica/internal/rubric"
	"github.com/vmonsalve/rubrica/internal/store"
)

var (
	flagDB      string
	flagEnvFile string
	flagRubric  string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "rubrica",
	Short: "Evaluación automática de repositorios contra una rúbrica ponderada",
	Long: `rubrica evalúa repositorios de proyectos contra una rúbrica ponderada
usando un LLM por criterio, agrega las notas en escala 1.0-7.0 y acumula
los resultados para análisis, recomendaciones y alertas.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "",
		"ruta de la base de datos (por defecto $RUBRICA_DB o el directorio de datos del usuario)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env", "",
		"archivo .env a cargar antes de leer la configuración")
	rootCmd.PersistentFlags().StringVar(&flagRubric, "rubric", "",
		"archivo YAML con la rúbrica (por defecto la rúbrica Kedro ML incorporada)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"logging detallado")
}

// loadConfig assembles configuration from the env file, the environment
// and the persistent flags, in increasing precedence.
func loadConfig() *config.Config {
	if flagEnvFile != "" {
		// Missing env file is not fatal; the environment may already
		// carry everything.
		_ = godotenv.Load(flagEnvFile)
	} else {
		_ = godotenv.Load()
	}

	cfg := config.Load()
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	if flagRubric != "" {
		cfg.RubricPath = flagRubric
	}
	cfg.Verbose = flagVerbose
	return cfg
}

func newLogger(verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	log, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func loadRubric(cfg *config.Config) (*rubric.Rubric, error) {
	if cfg.RubricPath == "" {
		return rubric.KedroML(), nil
	}
	return rubric.LoadFile(cfg.RubricPath)
}

// app bundles everything a command needs. Close releases the store.
// agentProvider retries transient failures; the evaluation pipeline
// keeps the unretried provider so a failed criterion call degrades to
// the parser fallback instead of stalling a batch.
type app struct {
	cfg           *config.Config
	log           *zap.Logger
	store         *store.Store
	rubric        *rubric.Rubric
	provider      llm.Provider
	agentProvider llm.Provider
	fetcher       evidence.Fetcher
}

func (a *app) Close() {
	a.store.Close()
	_ = a.log.Sync()
}

// buildApp wires the full stack. withLLM controls whether a provider is
// required; read-only commands over stored evaluations skip it.
func buildApp(cmd *cobra.Command, withLLM bool) (*app, error) {
	cfg := loadConfig()
	log := newLogger(cfg.Verbose)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	r, err := loadRubric(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	a := &app{cfg: cfg, log: log, store: st, rubric: r, fetcher: evidence.Local{}}

	if withLLM {
		if err := cfg.Validate(); err != nil {
			if discovered, ok := llm.DiscoverConfig(); ok {
				cfg.LLM = discovered
			} else {
				st.Close()
				return nil, fmt.Errorf("configuración incompleta: %w", err)
			}
		}
		provider, err := llm.NewProvider(cmd.Context(), cfg.LLM, st, log)
		if err != nil {
			st.Close()
			return nil, err
		}
		a.provider = provider
		a.agentProvider = llm.WithRetry(provider, cfg.LLM.Retry)
	}

	return a, nil
}
