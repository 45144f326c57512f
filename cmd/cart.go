package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/zelena-gryadka/gryadka/internal/cart"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
	"github.com/zelena-gryadka/gryadka/internal/config"
	"github.com/zelena-gryadka/gryadka/internal/output"
	"github.com/zelena-gryadka/gryadka/internal/storage"
)

var (
	cartOutputFormat string
	cartAddQty       int
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
	Long: `Show and edit the cart kept by the configured backend (cart.backend):
sqlite (default, next to the search history), memory or redis.`,
}

var cartListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show the cart contents and total",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output.SetFormat(cartOutputFormat)

		return withCart(cmd, func(ctx context.Context, store cart.Store) error {
			items, err := store.Items(ctx)
			if err != nil {
				return err
			}

			return output.DisplayCart(cmd.OutOrStdout(), items, cartOutputFormat)
		})
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <slug>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newCatalogClient(cfg)
		if err != nil {
			return err
		}

		return withCart(cmd, func(ctx context.Context, store cart.Store) error {
			return addToCart(ctx, cmd.OutOrStdout(), client, store, args[0], cartAddQty)
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:     "remove <product-id>",
	Aliases: []string{"rm"},
	Short:   "Remove a product line from the cart",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}

		return withCart(cmd, func(ctx context.Context, store cart.Store) error {
			if err := store.Remove(ctx, id); err != nil {
				if errors.Is(err, cart.ErrItemNotFound) {
					return fmt.Errorf("product %d is not in the cart", id)
				}

				return err
			}

			pterm.Success.Printfln("Removed product %d", id)

			return nil
		})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(ctx context.Context, store cart.Store) error {
			if err := store.Clear(ctx); err != nil {
				return err
			}

			pterm.Success.Println("Cart cleared")

			return nil
		})
	},
}

// withCart opens the configured cart store around fn.
func withCart(cmd *cobra.Command, fn func(ctx context.Context, store cart.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var db *storage.DB

	if cfg.Cart.Backend == config.BackendSQLite {
		opened, err := openStorage(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to open local database: %w", err)
		}
		defer func() { _ = opened.Close() }()

		db = opened
	}

	store, closeCart, err := openCart(cfg, db)
	if err != nil {
		return err
	}
	defer closeCart()

	return fn(ctx, store)
}

func addToCart(ctx context.Context, w io.Writer, api productAPI, store cart.Store, slug string, qty int) error {
	if qty < 1 {
		return cart.ErrInvalidCount
	}

	p, err := api.Product(ctx, slug)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return fmt.Errorf("product %q not found", slug)
		}

		return err
	}

	if err := store.Add(ctx, cart.FromProduct(p, qty)); err != nil {
		return err
	}

	items, err := store.Items(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "Added %d × %s. Cart: %d item(s), total %s\n",
		qty, p.Name, cart.Count(items), output.FormatPrice(cart.Total(items)))

	return err
}

func init() {
	cartListCmd.Flags().StringVarP(&cartOutputFormat, "output", "o",
		output.DefaultFormat(output.FormatTable, []string{output.FormatTable, output.FormatJSON}),
		"Output format: table, json")
	cartAddCmd.Flags().IntVarP(&cartAddQty, "qty", "q", 1, "How many to add")

	cartCmd.AddCommand(cartListCmd, cartAddCmd, cartRemoveCmd, cartClearCmd)
	rootCmd.AddCommand(cartCmd)
}
