package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ccanomaly/internal/config"
	"ccanomaly/internal/features"
	"ccanomaly/pkg/utils"
)

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:          "preprocessor",
		Short:        "Impute, derive and clip the raw dataset",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(configPath)
			if err != nil {
				utils.Logger("").Fatal("Failed to load config", zap.String("path", configPath), zap.Error(err))
			}
			logger := utils.Logger(cfg.Logging.File)
			defer logger.Sync()

			logger.Info("Preprocessing", zap.String("in", cfg.Paths.Raw), zap.String("out", cfg.Paths.Processed))
			rep, err := features.PreprocessFile(cfg.Paths.Raw, cfg.Paths.Processed, cfg.Preprocess.ClipQuantile)
			if err != nil {
				logger.Fatal("Preprocessing failed", zap.Error(err))
			}

			logger.Info("Raw data loaded", zap.Int("rows", rep.RawRows), zap.Int("cols", rep.RawCols))
			for _, m := range rep.Medians {
				logger.Info("Imputed median", zap.String("column", m.Column), zap.Float64("median", m.Value))
			}
			logger.Info("Derived features added",
				zap.Strings("columns", []string{
					features.ColMonthlyAvgPurchase,
					features.ColMonthlyAvgCashAdvance,
					features.ColPurchaseToLimitRatio,
					features.ColBalanceToLimitRatio,
				}),
			)
			for _, c := range rep.ClipThresholds {
				logger.Info("Clipped column", zap.String("column", c.Column), zap.Float64("p99", c.Value))
			}
			logger.Info("Processed data saved",
				zap.String("path", cfg.Paths.Processed),
				zap.Int("rows", rep.ProcessedRows),
				zap.Int("cols", rep.ProcessedCols),
			)
			for _, name := range rep.Columns {
				logger.Info("Null count", zap.String("column", name), zap.Int("nulls", rep.Nulls[name]))
			}
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding default paths and parameters")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
