// Package cmd provides the command-line interface for gryadka
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zelena-gryadka/gryadka/internal/config"
	"github.com/zelena-gryadka/gryadka/internal/logger"
)

var (
	logLevel    string
	configFile  string
	apiURL      string
	apiToken    string
	pageSize    int
	cartBackend string

	// cfg is loaded once per run by the root PersistentPreRunE.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gryadka",
	Short: "Browse the Zelena Gryadka plant catalog from the terminal",
	Long: `gryadka browses the Zelena Gryadka storefront catalog: seeds, fertilizers,
substrates and garden tools. Search and filter interactively, keep a cart,
export listings, or run a local catalog server for development.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		if err := logger.SetLevel(loaded.Log.Level); err != nil {
			return fmt.Errorf("invalid log level '%s': %w", loaded.Log.Level, err)
		}

		cfg = loaded
		logger.Log.Debugf("Log level set to: %s", loaded.Log.Level)

		return nil
	},
}

// loadConfig merges defaults, the config file, GRYADKA_* variables and the flags of cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.New()

	if err := config.BindFlags(v, cmd); err != nil {
		return nil, err
	}

	return config.Load(v, configFile)
}

// currentConfig returns the loaded configuration, loading it for code paths
// such as shell completion that skip the persistent hooks.
func currentConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}

	return loadConfig(cmd)
}

func Execute() error {
	return ExecuteContext(context.Background())
}

func ExecuteContext(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "info", "Set the logging level (trace, debug, info, warn, error)")
	flags.StringVar(&configFile, "config", "", "Config file (default ~/.gryadka/config.yaml)")
	flags.StringVar(&apiURL, "api-url", "", "Storefront API base URL (default http://localhost:8000)")
	flags.StringVar(&apiToken, "token", "", "Bearer token sent to the catalog API")
	flags.IntVar(&pageSize, "page-size", 0, "Products per page (default 24)")
	flags.StringVar(&cartBackend, "cart-backend", "", "Cart storage: sqlite, memory or redis (default sqlite)")
}
