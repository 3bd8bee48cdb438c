// Package cmd implements the CLI commands for the phone catalog service.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "phone-catalog",
	Short: "Smartphone catalog browsing service",
	Long: "An API-first service that materializes a smartphone catalog from the\n" +
		"product store, caches it behind a TTL snapshot, and serves filtered,\n" +
		"sorted, windowed views plus price-drop and best-value aggregations.",
}

func init() {
	cobra.OnInitialize(initEnv)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.PersistentFlags().
		String("server", "http://localhost:8080", "API server URL for client commands")
	rootCmd.PersistentFlags().
		String("output", "table", "output format for client commands (table, json)")

	cobra.CheckErr(viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")))
	cobra.CheckErr(viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output")))
}

func initEnv() {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	viper.SetEnvPrefix("SPC")
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
