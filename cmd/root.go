package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ohl-research/exposure-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "exposure",
	Short: "AI exposure analysis for college-major enrollment",
	Long:  "Matches survey occupation codes to AI exposure scores, builds major-by-year enrollment panels, and runs difference-in-differences regressions.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
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

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
