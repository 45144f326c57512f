package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zelena-gryadka/gryadka/internal/browse"
	"github.com/zelena-gryadka/gryadka/internal/logger"
	"github.com/zelena-gryadka/gryadka/internal/tui"
)

var browseFilters filterFlags

var browseCmd = &cobra.Command{
	Use:     "browse [query]",
	Aliases: []string{"b", "ui"},
	Short:   "Browse the catalog interactively",
	Long: `Open the terminal catalog browser. Type in the search box to filter by name or
description, pick a category, supplier and price range, and page through the results.

Press '?' at any time to see keyboard shortcuts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		initial, err := browseFilters.state(args)
		if err != nil {
			return err
		}

		client, err := newCatalogClient(cfg)
		if err != nil {
			return err
		}

		db, err := openStorage(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to open local database: %w", err)
		}
		defer func() { _ = db.Close() }()

		store, closeCart, err := openCart(cfg, db)
		if err != nil {
			return err
		}
		defer closeCart()

		logger.Log.Debugf("Starting browser at page %d of %s", initial.Page, client.BaseURL())

		return tui.RunBrowser(cmd.Context(), tui.Deps{
			API:      client,
			Products: client,
			Cart:     store,
			History:  db,
			Initial:  initial,
			Options: browse.Options{
				PageSize:      cfg.Browse.PageSize,
				QueryDebounce: cfg.Browse.QueryDebounce,
				FetchTimeout:  cfg.API.Timeout,
			},
			HistoryLimit: cfg.History.Limit,
			LogFile:      logFilePath(db),
		})
	},
}

func init() {
	browseFilters.register(browseCmd, true)
	rootCmd.AddCommand(browseCmd)
}
