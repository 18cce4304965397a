package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"threadlens/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage threadlens configuration",
	Long: `Manage threadlens configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (THREADLENS_*)
3. Config file (~/.threadlens/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration including all sources (defaults, config file, env vars, flags).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadBaseConfig()

		configFile := viper.ConfigFileUsed()
		if configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		fmt.Println(string(yamlData))
		fmt.Println("Configuration hierarchy (highest to lowest priority):")
		fmt.Println("  1. CLI flags")
		fmt.Println("  2. Environment variables (THREADLENS_*, OPENAI_API_KEY)")
		fmt.Println("  3. Config file (~/.threadlens/config.yaml)")
		fmt.Println("  4. Defaults")

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.threadlens/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := home + "/.threadlens"
		configPath := configDir + "/config.yaml"

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'threadlens config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		yamlData, err := yaml.Marshal(model.DefaultConfig())
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		content := "# threadlens configuration file\n" +
			"#\n" +
			"# Configuration hierarchy (highest to lowest priority):\n" +
			"#   1. CLI flags\n" +
			"#   2. Environment variables (THREADLENS_*)\n" +
			"#   3. This config file\n" +
			"#   4. Built-in defaults\n\n" +
			string(yamlData) +
			"\n# API keys (recommended to use environment variables instead):\n" +
			"#   export OPENAI_API_KEY=sk-...\n" +
			"#   export THREADLENS_HOST=http://localhost:11434\n"

		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			return fmt.Errorf("error writing config: %w", err)
		}

		fmt.Printf("Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n  threadlens config show\n")

		return nil
	},
}

// loadBaseConfig builds the effective base configuration from defaults,
// config file and THREADLENS_* environment variables
func loadBaseConfig() model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("provider"); v != "" {
		cfg.Provider = v
	}
	if v := viper.GetString("host"); v != "" {
		cfg.Host = v
	}
	if v := viper.GetString("chat_model"); v != "" {
		cfg.ChatModel = v
	}
	if v := viper.GetString("embed_model"); v != "" {
		cfg.EmbedModel = v
	}
	if v := viper.GetInt("topk"); v != 0 {
		cfg.TopK = v
	}
	if v := viper.GetInt("max_summary_comments"); v != 0 {
		cfg.MaxSummaryComments = v
	}
	if v := viper.GetInt("classify_workers"); v != 0 {
		cfg.ClassifyWorkers = v
	}
	if v := viper.GetDuration("timeout"); v != 0 {
		cfg.Timeout = v
	}
	return cfg
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
