package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/pipeline"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/store"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/config"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	botDir     string
	outputDir  string

	cfg       *config.Config
	log       *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "voxmgr",
	Short: "Fitness evaluation manager for voxcraft-sim experiments",
	Long: `voxmgr converts genomes into material palettes, runs the voxcraft-sim
physics simulator on them and reports fitness and behavioral descriptors.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		return setupLogger(cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Experiment config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config")
	rootCmd.PersistentFlags().StringVar(&botDir, "bot-dir", "", "Robot directory; overrides the config")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Output directory; overrides the config")
}

func loadConfig() (*config.Config, error) {
	var c *config.Config
	if configPath == "" {
		c = config.Default("./demo", "./experiment_data")
	} else {
		var err error
		if c, err = config.LoadConfig(configPath); err != nil {
			return nil, err
		}
	}
	if botDir != "" {
		c.BotDir = botDir
	}
	if outputDir != "" {
		c.OutputDir = outputDir
	}
	return c, nil
}

func setupLogger(stream io.Writer) error {
	if cfg.LogFile == "" {
		log = logger.NewText(cfg.LogLevel, stream)
	} else {
		l, closer, err := logger.NewTee(cfg.LogLevel, cfg.LogFile, stream)
		if err != nil {
			return err
		}
		log, logCloser = l, closer
	}
	logger.SetDefault(log)
	return nil
}

func closeLog() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// openStore opens the configured history backend. It may return a nil store.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewStore(cfg.Store.Kind, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if st == nil {
		return nil, nil
	}
	if err := st.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

// buildPipeline opens the store and wires the process-backed pipeline. The
// returned cleanup closes the store.
func buildPipeline(ctx context.Context) (*pipeline.Pipeline, store.Store, func(), error) {
	st, err := openStore(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		if st != nil {
			if err := st.Close(); err != nil {
				log.Warn("failed to close store", "error", err)
			}
		}
	}
	p, err := pipeline.FromConfig(cfg, st, log)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return p, st, cleanup, nil
}
