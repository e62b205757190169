package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/truthquest/internal/model"
)

// Version is set at build time
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "truthquest",
	Short: "Truth Quest - fact-check the claims made in a video transcript",
	Long: `Truth Quest extracts the factual claims from a YouTube transcript, checks
a sample of them (or all of them) against web evidence, and grades the
transcript's overall credibility.

Verdicts are produced by a language model reading search results. They are
a starting point for your own judgement, not a replacement for it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number for Truth Quest.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("truthquest v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.truthquest/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := setDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".truthquest"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TRUTHQUEST_* (llm.model -> TRUTHQUEST_LLM_MODEL)
	viper.SetEnvPrefix("TRUTHQUEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range secretKeys {
		_ = viper.BindEnv(key)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// secretKeys are omitted from the defaults tree when empty, so they are
// bound to the environment explicitly
var secretKeys = []string{
	"llm.api_key", "llm.base_url",
	"judge.api_key", "judge.base_url",
	"search.api_key", "search.base_url",
	"cache.redis_url",
	"http.http_proxy", "http.https_proxy", "http.no_proxy",
}

// setDefaults registers every key of cfg with v so that AutomaticEnv can
// override keys that appear in no config file
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}
	setDefaultTree(v, "", tree)
	return nil
}

func setDefaultTree(v *viper.Viper, prefix string, tree map[string]interface{}) {
	for key, value := range tree {
		if sub, ok := value.(map[string]interface{}); ok {
			setDefaultTree(v, prefix+key+".", sub)
			continue
		}
		v.SetDefault(prefix+key, value)
	}
}

// loadConfig resolves the effective configuration: viper (file, env,
// defaults) first, then well-known provider environment variables for
// anything still unset
func loadConfig() (*model.Config, error) {
	return loadConfigFrom(viper.GetViper(), os.Getenv)
}

func loadConfigFrom(v *viper.Viper, getenv func(string) string) (*model.Config, error) {
	// Defaults already live in viper; decoding onto a populated struct would
	// keep trailing default list entries
	cfg := &model.Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyProviderEnv(cfg, getenv)
	return cfg, nil
}

// applyProviderEnv fills API keys and endpoints from the variables each
// provider's own tooling uses
func applyProviderEnv(cfg *model.Config, getenv func(string) string) {
	for _, llmCfg := range []*model.LLMConfig{&cfg.LLM, &cfg.Judge} {
		switch strings.ToLower(llmCfg.Provider) {
		case "openai":
			if llmCfg.APIKey == "" {
				llmCfg.APIKey = getenv("OPENAI_API_KEY")
			}
		case "anthropic", "claude":
			if llmCfg.APIKey == "" {
				llmCfg.APIKey = getenv("ANTHROPIC_API_KEY")
			}
		case "ollama":
			if llmCfg.BaseURL == "" {
				llmCfg.BaseURL = getenv("OLLAMA_BASE_URL")
			}
		}
	}

	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = getenv("BRAVE_API_KEY")
	}
}
