package main

import (
	"github.com/spf13/cobra"

	"github.com/sqzls/waterwatch/internal/client"
	"github.com/sqzls/waterwatch/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "waterwatch",
	Short: "Poll water usage and billing data from the Guotou utility API",
	Long: `Waterwatch periodically fetches monthly water usage and billing records
for a house account, normalizes them into a summary plus history, and exposes
the result to Home Assistant over MQTT and to local consumers over HTTP.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// newClient creates the API client from config
func newClient(cfg *config.Config) *client.Client {
	return client.New(cfg.GetBillingURL(), cfg.GetHouseURL())
}
