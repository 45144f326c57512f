package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
	"github.com/zelena-gryadka/gryadka/internal/devserver"
	"github.com/zelena-gryadka/gryadka/internal/logger"
)

var (
	devAddr     string
	devBasePath string
	devLatency  time.Duration
)

var devServerCmd = &cobra.Command{
	Use:   "dev-server",
	Short: "Serve a local catalog API from built-in sample products",
	Long: `Run a catalog API compatible with the storefront on a local address, backed by
sample products embedded in the binary. --latency adds a random delay per request,
which makes out-of-order responses easy to reproduce in the browser.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		products, err := devserver.SeedProducts()
		if err != nil {
			return fmt.Errorf("failed to load sample catalog: %w", err)
		}

		store := devserver.NewStore(products)
		logger.Log.Infof("Serving %d products on http://%s%s", store.Len(), devAddr, devBasePath)

		return devserver.Run(cmd.Context(), store, devserver.Config{
			Addr:     devAddr,
			BasePath: devBasePath,
			Latency:  devLatency,
		})
	},
}

func init() {
	devServerCmd.Flags().StringVar(&devAddr, "addr", "localhost:8000", "Listen address")
	devServerCmd.Flags().StringVar(&devBasePath, "base-path", catalog.DefaultCatalogPath, "Path the catalog is served under")
	devServerCmd.Flags().DurationVar(&devLatency, "latency", 0, "Random delay of up to this long per request")

	rootCmd.AddCommand(devServerCmd)
}
