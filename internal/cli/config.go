package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage claimresolve configuration",
	Long: `Manage claimresolve configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (CLAIMRESOLVE_*, OPENAI_API_KEY)
3. Config file (~/.claimresolve/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildConfig()

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		fmt.Print(string(yamlData))

		fmt.Println()
		if cfg.Extractor.APIKey == "" {
			fmt.Println("OPENAI_API_KEY is not set: the extract command is unavailable.")
		} else {
			fmt.Println("OPENAI_API_KEY is set.")
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a commented configuration file at ~/.claimresolve/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("find home directory: %w", err)
		}

		configDir := home + "/.claimresolve"
		configPath := configDir + "/config.yaml"

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s", configPath)
		}

		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
		if err := os.WriteFile(configPath, []byte(defaultConfigYAML), 0o644); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		fmt.Printf("Created: %s\n", configPath)
		return nil
	},
}

const defaultConfigYAML = `# claimresolve configuration

search:
  # Minimum interval between outbound web searches, shared by every worker.
  delay: 1s
  # Fall back to HTML scraping when the instant-answer API returns nothing.
  scrape_fallback: true
  # Check robots.txt before scraping.
  respect_robots: true

resolver:
  # Candidates scoring at or above this are surfaced for human review.
  surface_threshold: 0.3
  # Known organizations scoring at or above this skip review entirely.
  auto_accept_threshold: 0.95

cache:
  enabled: true
  # Non-empty enables the disk cache layer.
  # dir: ~/.claimresolve/cache

store:
  # Verified organization URLs (survives restarts).
  # path: ~/.claimresolve/organizations.json
  # Review queue snapshot.
  # candidates_path: ~/.claimresolve/candidates.json

extractor:
  model: gpt-4o-mini
  # base_url: https://my-openai-compatible-endpoint/v1

link_check:
  # Probe candidate URLs and annotate unreachable ones.
  enabled: false
`

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd)
}
