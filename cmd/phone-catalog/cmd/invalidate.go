package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Drop the cached catalog snapshot on a running server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := newClient()
		if err := c.Invalidate(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("catalog snapshot invalidated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(invalidateCmd)
}
