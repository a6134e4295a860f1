package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/magenta-aps/raclients"
)

var rootCmd = &cobra.Command{
	Use:   "raload",
	Short: "raload bulk-loads model objects into OS2mo and LoRa",
	Long:  `raload reads model objects from YAML files and uploads them to OS2mo or LoRa, authenticating against Keycloak with the client-credentials grant.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a raclients config file (YAML)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Int("chunk-size", 0, "Objects per upload chunk (default 100)")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Parse and report the input without uploading")
}

// loadConfig reads the YAML config file when given and fills the blanks
// from the environment, matching the variable names the integrations use.
func loadConfig(path string) (raclients.Config, error) {
	var cfg raclients.Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	fill := func(dst *string, env string) {
		if *dst == "" {
			*dst = os.Getenv(env)
		}
	}
	fill(&cfg.MOURL, "MO_URL")
	fill(&cfg.LoRaURL, "LORA_URL")
	fill(&cfg.Auth.ClientID, "CLIENT_ID")
	fill(&cfg.Auth.ClientSecret, "CLIENT_SECRET")
	fill(&cfg.Auth.AuthRealm, "AUTH_REALM")
	fill(&cfg.Auth.AuthServer, "AUTH_SERVER")

	return cfg, nil
}
