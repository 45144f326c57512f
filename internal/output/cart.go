package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	"github.com/zelena-gryadka/gryadka/internal/cart"
	"github.com/zelena-gryadka/gryadka/internal/storage"
)

type cartJSON struct {
	Items []cart.Item `json:"items"`
	Count int         `json:"count"`
	Total string      `json:"total"`
}

// DisplayCart renders the cart lines with a total.
func DisplayCart(w io.Writer, items []cart.Item, format string) error {
	if strings.EqualFold(format, FormatJSON) {
		if items == nil {
			items = []cart.Item{}
		}

		return DisplayJSON(w, cartJSON{Items: items, Count: cart.Count(items), Total: cart.Total(items).StringFixed(2)})
	}

	if len(items) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")

		return nil
	}

	width := nameWidth()
	data := pterm.TableData{{"ID", "Name", "Qty", "Price", "Subtotal"}}

	for _, item := range items {
		data = append(data, []string{
			strconv.FormatInt(item.ProductID, 10),
			Truncate(item.Name, width),
			strconv.Itoa(item.Count),
			FormatPrice(item.Price),
			FormatPrice(item.Subtotal()),
		})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d item(s), total %s\n", cart.Count(items), pterm.Bold.Sprint(FormatPrice(cart.Total(items))))

	return nil
}

// DisplayHistory renders remembered searches, most recent first.
func DisplayHistory(w io.Writer, entries []storage.SearchEntry, format string) error {
	if strings.EqualFold(format, FormatJSON) {
		if entries == nil {
			entries = []storage.SearchEntry{}
		}

		return DisplayJSON(w, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No searches yet.")

		return nil
	}

	data := pterm.TableData{{"Search", "Uses", "Last used"}}

	for _, e := range entries {
		data = append(data, []string{e.Term, strconv.Itoa(e.UseCount), relativeTime(e.LastUsed)})
	}

	return pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render()
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return humanize.Time(t)
}
