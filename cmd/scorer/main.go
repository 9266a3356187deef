package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ccanomaly/internal/config"
	"ccanomaly/internal/models"
	"ccanomaly/internal/report"
	"ccanomaly/internal/training"
	"ccanomaly/pkg/utils"
)

func main() {
	var (
		configPath string
		in         string
		out        string
	)
	cmd := &cobra.Command{
		Use:          "scorer",
		Short:        "Score a processed dataset with the saved artifacts",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(configPath)
			if err != nil {
				utils.Logger("").Fatal("Failed to load config", zap.String("path", configPath), zap.Error(err))
			}
			logger := utils.Logger(cfg.Logging.File)
			defer logger.Sync()

			if in == "" {
				in = cfg.Paths.Processed
			}
			if out == "" {
				out = cfg.Paths.Scores
			}
			store := models.NewFileStore(cfg.Paths.ModelsDir)
			logger.Info("Scoring", zap.String("in", in), zap.String("models_dir", store.Dir))
			anomalies, err := training.ScoreFile(in, out, store, logger)
			if err != nil {
				logger.Fatal("Scoring failed", zap.Error(err))
			}
			if m, err := report.ReadMetrics(cfg.Paths.Metrics); err == nil {
				logger.Info("Compared with training run",
					zap.Int("trained_anomalies", m.NAnomalies),
					zap.Int("scored_anomalies", anomalies),
					zap.Float64("contamination", m.Contamination),
				)
			}
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding default paths and parameters")
	cmd.Flags().StringVar(&in, "in", "", "Processed CSV to score (default paths.processed)")
	cmd.Flags().StringVar(&out, "out", "", "Scores CSV to write (default paths.scores)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
