package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ccanomaly/internal/config"
	"ccanomaly/internal/models"
	"ccanomaly/internal/training"
	"ccanomaly/pkg/utils"
)

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:          "trainer",
		Short:        "Fit the PCA + isolation forest detector and write metrics, figures and artifacts",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(configPath)
			if err != nil {
				utils.Logger("").Fatal("Failed to load config", zap.String("path", configPath), zap.Error(err))
			}
			logger := utils.Logger(cfg.Logging.File)
			defer logger.Sync()

			store := models.NewFileStore(cfg.Paths.ModelsDir)
			res, err := training.Run(context.Background(), cfg, store, logger)
			if err != nil {
				logger.Fatal("Training failed", zap.Error(err))
			}
			logger.Info("Training complete",
				zap.String("model", res.Metrics.Model),
				zap.Int("anomalies", res.Metrics.NAnomalies),
				zap.String("models_dir", store.Dir),
			)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding default paths and parameters")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
