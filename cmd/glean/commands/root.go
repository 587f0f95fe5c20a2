// Package commands implements the CLI commands for glean.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gleanhq/glean/internal/logger"
	"github.com/gleanhq/glean/pkg/glean"
)

var rootCmd = &cobra.Command{
	Use:   "glean",
	Short: "LLM-powered structured data extraction",
	Long: `Glean extracts structured, schema-validated records from content
using LLM providers.

Define a schema for the data you want, feed it content, and get
validated output in JSON, JSONL, or YAML.

Examples:
  # Extract from a saved page using the default provider
  glean extract -i page.html -s schema.yaml

  # Extract from stdin with a specific provider and model
  cat article.md | glean extract -s schema.json --kind plain \
      -p anthropic -m claude-3-5-haiku-20241022

  # List configured providers and their models
  glean providers`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			JSON:  viper.GetBool("log_json"),
		})
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.glean.yaml)")
	rootCmd.PersistentFlags().String("providers", "", "provider config file (default providers.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().Bool("log-json", false, "log in JSON format")

	_ = viper.BindPFlag("providers", rootCmd.PersistentFlags().Lookup("providers"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".glean")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GLEAN")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newGlean builds the library handle from the provider config file.
func newGlean() (*glean.Glean, error) {
	path := viper.GetString("providers")
	if path == "" {
		path = "providers.yaml"
	}
	return glean.NewFromFile(path)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// logInfo prints an info message to stderr (unless quiet mode).
func logInfo(format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
