// Package cli implements the claimresolve command tree.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/linkedclaims/claimresolve/internal/model"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "claimresolve",
	Short: "claimresolve - resolve organization URLs in extracted claims",
	Long: `claimresolve turns URN placeholders in extracted impact claims into real,
verifiable URLs.

Organizations are resolved through a verified store, a result cache, a
small allowlist, and web search; anything uncertain is queued for human
review rather than guessed silently. People and populations are anchored
to the document that mentions them.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("claimresolve v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.claimresolve/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the config file and CLAIMRESOLVE_* environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.claimresolve")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("CLAIMRESOLVE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// buildConfig assembles runtime configuration from defaults, the config
// file, and environment variables.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()

	if viper.IsSet("search.delay") {
		cfg.Search.Delay = viper.GetDuration("search.delay")
	}
	if viper.IsSet("search.scrape_fallback") {
		cfg.Search.ScrapeFallback = viper.GetBool("search.scrape_fallback")
	}
	if viper.IsSet("search.respect_robots") {
		cfg.Search.RespectRobots = viper.GetBool("search.respect_robots")
	}
	if viper.IsSet("resolver.surface_threshold") {
		cfg.Resolver.SurfaceThreshold = viper.GetFloat64("resolver.surface_threshold")
	}
	if viper.IsSet("resolver.auto_accept_threshold") {
		cfg.Resolver.AutoAcceptThreshold = viper.GetFloat64("resolver.auto_accept_threshold")
	}
	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("cache.dir") {
		cfg.Cache.Dir = viper.GetString("cache.dir")
	}
	// Verification state defaults to the user's config directory so the
	// review queue survives between invocations.
	if home, err := os.UserHomeDir(); err == nil {
		cfg.Store.Path = home + "/.claimresolve/organizations.json"
		cfg.Store.CandidatesPath = home + "/.claimresolve/candidates.json"
	}
	if viper.IsSet("store.path") {
		cfg.Store.Path = viper.GetString("store.path")
	}
	if viper.IsSet("store.candidates_path") {
		cfg.Store.CandidatesPath = viper.GetString("store.candidates_path")
	}
	if viper.IsSet("link_check.enabled") {
		cfg.LinkCheck.Enabled = viper.GetBool("link_check.enabled")
	}
	if viper.IsSet("extractor.model") {
		cfg.Extractor.Model = viper.GetString("extractor.model")
	}
	if viper.IsSet("extractor.base_url") {
		cfg.Extractor.BaseURL = viper.GetString("extractor.base_url")
	}

	// The API key only ever comes from the environment.
	cfg.Extractor.APIKey = os.Getenv("OPENAI_API_KEY")

	cfg.HTTP.HTTPProxy = os.Getenv("HTTP_PROXY")
	cfg.HTTP.HTTPSProxy = os.Getenv("HTTPS_PROXY")
	cfg.HTTP.NoProxy = os.Getenv("NO_PROXY")

	cfg.Output.Verbose = verbose
	return cfg
}

// newLogger builds the CLI logger. Verbose mode gets human-readable debug
// output; otherwise only warnings and errors reach the terminal.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return cfg.Build()
}

// commandTimeout bounds a whole CLI invocation.
const commandTimeout = 10 * time.Minute
