package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gadgetph/phone-catalog/internal/config"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Drive a batched catalog rebuild against a running server",
	Long: "Calls the server's batch rebuild endpoint with increasing offsets until\n" +
		"done, printing progress per step. The batch size must match the server's\n" +
		"configured catalog.batch_size so offsets line up.",
	RunE: runRebuild,
}

func init() {
	rebuildCmd.Flags().Int("batch-size", 0, "batch size (default: from config file)")
	rootCmd.AddCommand(rebuildCmd)
}

func runRebuild(cmd *cobra.Command, _ []string) error {
	batchSize, err := cmd.Flags().GetInt("batch-size")
	if err != nil {
		return err
	}
	if batchSize <= 0 {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config for batch size: %w", err)
		}
		batchSize = cfg.Catalog.BatchSize
	}

	c := newClient()

	progress, err := c.DriveRebuild(cmd.Context(), os.Stdout, batchSize)
	if err != nil {
		return err
	}

	fmt.Printf("done: %d products processed\n", progress.Processed)
	return nil
}
