package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ccanomaly/internal/config"
	"ccanomaly/internal/data"
	"ccanomaly/pkg/utils"
)

func main() {
	var (
		configPath string
		version    int
	)
	cmd := &cobra.Command{
		Use:          "generator",
		Short:        "Generate the synthetic credit card customer dataset",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load(configPath)
			if err != nil {
				utils.Logger("").Fatal("Failed to load config", zap.String("path", configPath), zap.Error(err))
			}
			logger := utils.Logger(cfg.Logging.File)
			defer logger.Sync()

			t, ver, err := data.GenerateVersion(version)
			if err != nil {
				logger.Fatal("Failed to generate dataset", zap.Int("version", version), zap.Error(err))
			}
			logger.Info("Dataset generated",
				zap.Int("version", ver.Version),
				zap.Int("rows", ver.Rows),
				zap.Int64("seed", ver.Seed),
			)
			for _, name := range t.Names {
				if n := t.NullCount(name); n > 0 {
					logger.Info("Missing values injected", zap.String("column", name), zap.Int("count", n))
				}
			}

			if err := data.WriteCSV(cfg.Paths.Raw, t); err != nil {
				logger.Fatal("Failed to write dataset", zap.String("path", cfg.Paths.Raw), zap.Error(err))
			}
			rows, cols := t.Shape()
			logger.Info("Dataset saved", zap.String("path", cfg.Paths.Raw), zap.Int("rows", rows), zap.Int("cols", cols))
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding default paths and parameters")
	cmd.Flags().IntVar(&version, "version", 1, "Dataset version: 1 (8950 rows) or 2 (9500 rows)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
