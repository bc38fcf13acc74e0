package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobloss/internal/api"
	"jobloss/internal/config"
	"jobloss/internal/engine"
)

var (
	cfg      *config.Config
	cfgFile  string
	dataPath string
	debug    bool
)

var rootCmd = &cobra.Command{
	Use:          "jobloss",
	Short:        "Job-loss choropleth dashboard by industry sector",
	Long:         "Loads a per-state job statistics table, averages the job-loss metric per state and serves a map shaded by the selected industry sector.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if cmd.Flags().Changed("data") {
			c.Data.Path = dataPath
		}
		if cmd.Flags().Changed("debug") {
			c.Server.Debug = debug
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "statistics table (default from config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug mode: verbose errors and POST /api/reload")
}

// loadDataset reads and aggregates the configured table.
func loadDataset() (*api.Dataset, error) {
	rows, stats, err := engine.Load(cfg.Data.Path, cfg.LoadOptions())
	if err != nil {
		return nil, err
	}
	return api.NewDataset(rows, stats), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
