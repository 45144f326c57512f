// Package tui implements the interactive catalog browser.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/zelena-gryadka/gryadka/internal/browse"
	"github.com/zelena-gryadka/gryadka/internal/cart"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
	"github.com/zelena-gryadka/gryadka/internal/logger"
	"github.com/zelena-gryadka/gryadka/internal/tui/widgets"
)

const (
	statusFlashDuration = 2 * time.Second
	spinnerInterval     = 120 * time.Millisecond
)

// ProductLoader fetches the full record behind a listing row.
type ProductLoader interface {
	Product(ctx context.Context, slug string) (catalog.ProductSummary, error)
}

// HistoryStore remembers submitted searches.
type HistoryStore interface {
	AddSearch(ctx context.Context, term string) error
	SearchTerms(ctx context.Context, limit int) ([]string, error)
}

// Deps is everything the browser screen talks to. Products and History are optional.
type Deps struct {
	API          browse.API
	Products     ProductLoader
	Cart         cart.Store
	History      HistoryStore
	Initial      browse.FilterState
	Options      browse.Options
	HistoryLimit int
	// LogFile receives log output while the screen is up. Empty discards it.
	LogFile string
	// Screen overrides the terminal, mostly for tests.
	Screen tcell.Screen
}

type browserView struct {
	ctx      context.Context
	deps     Deps
	app      *tview.Application
	browser  *browse.Browser
	keys     *KeyBindings
	styles   *Styles
	history  *historyCursor
	facets   catalog.Facets
	applied  uint64
	view     browse.View
	syncing  bool
	overlay  bool
	frame    int
	flashGen int

	query      *tview.InputField
	category   *tview.DropDown
	supplier   *tview.DropDown
	minPrice   *tview.InputField
	maxPrice   *tview.InputField
	sortBy     *tview.DropDown
	table      *widgets.Table
	status     *tview.TextView
	progress   *tview.TextView
	layout     *tview.Flex
	focusOrder []tview.Primitive
}

// RunBrowser shows the catalog browser until the user quits or ctx is cancelled.
func RunBrowser(ctx context.Context, deps Deps) error {
	if deps.API == nil {
		return errors.New("catalog API is required")
	}

	if deps.Cart == nil {
		deps.Cart = cart.NewMemoryStore()
	}

	restore, err := redirectLogs(deps.LogFile)
	if err != nil {
		return err
	}
	defer restore()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	v := newBrowserView(ctx, deps)
	defer v.browser.Close()

	if deps.Screen != nil {
		v.app.SetScreen(deps.Screen)
	}

	go func() {
		<-ctx.Done()
		v.app.Stop()
	}()

	go v.animate()

	v.loadHistory()
	v.browser.Mount()

	logger.Log.Debugf("Catalog browser started with state %+v", v.browser.State())

	if err := v.app.SetRoot(v.layout, true).EnableMouse(true).SetFocus(v.table).Run(); err != nil {
		return fmt.Errorf("catalog browser: %w", err)
	}

	return nil
}

func redirectLogs(path string) (func(), error) {
	if path == "" {
		return logger.SetOutput(io.Discard), nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	restore := logger.SetOutput(f)

	return func() {
		restore()
		_ = f.Close()
	}, nil
}

func newBrowserView(ctx context.Context, deps Deps) *browserView {
	v := &browserView{
		ctx:     ctx,
		deps:    deps,
		app:     tview.NewApplication(),
		keys:    NewKeyBindings(),
		styles:  DefaultStyles(),
		history: newHistoryCursor(nil),
	}

	opts := deps.Options
	onUpdate, onFacets := opts.OnUpdate, opts.OnFacets
	opts.OnUpdate = func(snap browse.Snapshot) {
		if onUpdate != nil {
			onUpdate(snap)
		}
		// Setters run on the UI goroutine, so never block it here.
		go v.app.QueueUpdateDraw(func() { v.applySnapshot(snap) })
	}
	opts.OnFacets = func(f catalog.Facets) {
		if onFacets != nil {
			onFacets(f)
		}
		go v.app.QueueUpdateDraw(func() { v.applyFacets(f) })
	}

	v.browser = browse.New(ctx, deps.API, deps.Initial, opts)
	v.view = v.browser.View()

	v.buildWidgets()
	v.registerKeys()
	v.syncWidgets(v.browser.State())

	v.app.SetInputCapture(v.capture)

	return v
}

func (v *browserView) buildWidgets() {
	s := v.styles

	v.query = tview.NewInputField().
		SetLabel(" Search: ").
		SetFieldWidth(0).
		SetFieldBackgroundColor(s.FieldBg).
		SetLabelColor(s.LabelFg).
		SetPlaceholder("name or description, ↑/↓ recalls recent searches")
	v.query.SetChangedFunc(func(text string) {
		if !v.syncing {
			v.browser.SetQuery(text)
		}
	})
	v.query.SetInputCapture(v.queryKeys)
	v.query.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			v.rememberSearch(v.query.GetText())
		}

		v.leaveField(key)
	})

	v.category = v.dropDown(" Category: ", facetOptions(allCategories, nil), func(index int) {
		v.browser.SetCategory(facetValue(v.facets.Categories, index))
	})
	v.supplier = v.dropDown(" Supplier: ", facetOptions(allSuppliers, nil), func(index int) {
		v.browser.SetSupplier(facetValue(v.facets.Suppliers, index))
	})
	v.sortBy = v.dropDown(" Sort: ", sortLabels(), func(index int) {
		keys := catalog.SortKeys()
		if index >= 0 && index < len(keys) {
			v.browser.SetSort(keys[index])
		}
	})

	v.minPrice = v.priceField(" Min price: ", func(s browse.FilterState) string { return s.MinPrice }, v.browser.SetMinPrice)
	v.maxPrice = v.priceField(" Max price: ", func(s browse.FilterState) string { return s.MaxPrice }, v.browser.SetMaxPrice)

	v.table = widgets.NewTable()
	v.table.SetHeaders([]string{"ID", "Name", "Category", "Supplier", "Price"}, 0, 4, 2, 2, 1)
	v.table.SetBorder(true).SetBorderColor(s.BorderColor)
	v.table.SetSelectedFunc(func(row, _ int) {
		v.showDetail()
	})

	v.status = tview.NewTextView().SetDynamicColors(true)
	v.progress = tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignRight)

	filters := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(v.category, 0, 2, false).
		AddItem(v.supplier, 0, 2, false).
		AddItem(v.minPrice, 0, 1, false).
		AddItem(v.maxPrice, 0, 1, false).
		AddItem(v.sortBy, 0, 2, false)

	statusFlex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(v.status, 0, 4, false).
		AddItem(v.progress, 0, 1, false)

	v.layout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.query, 1, 0, false).
		AddItem(filters, 1, 0, false).
		AddItem(v.table, 0, 1, true).
		AddItem(statusFlex, 1, 0, false)

	v.focusOrder = []tview.Primitive{v.query, v.category, v.supplier, v.minPrice, v.maxPrice, v.sortBy, v.table}

	v.renderView()
}

func (v *browserView) dropDown(label string, options []string, selected func(index int)) *tview.DropDown {
	dd := tview.NewDropDown().
		SetLabel(label).
		SetLabelColor(v.styles.LabelFg).
		SetFieldBackgroundColor(v.styles.FieldBg).
		SetOptions(options, nil)

	dd.SetSelectedFunc(func(_ string, index int) {
		if !v.syncing {
			selected(index)
		}
	})
	dd.SetDoneFunc(v.leaveField)

	return dd
}

// priceField applies its text as typed when the user leaves it, by key or by
// mouse. Esc puts back the applied value.
func (v *browserView) priceField(label string, current func(browse.FilterState) string, apply func(string) browse.FilterState) *tview.InputField {
	field := tview.NewInputField().
		SetLabel(label).
		SetFieldWidth(10).
		SetFieldBackgroundColor(v.styles.FieldBg).
		SetLabelColor(v.styles.LabelFg)

	field.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEscape {
			field.SetText(current(v.browser.State()))
		} else {
			apply(field.GetText())
		}

		v.leaveField(key)
	})
	field.SetBlurFunc(func() {
		if v.syncing {
			return
		}

		if text := field.GetText(); text != current(v.browser.State()) {
			apply(text)
		}
	})

	return field
}

func (v *browserView) registerKeys() {
	results := []ViewMode{ModeResults}

	v.keys.RegisterKey('n', "Next page", results, v.nextPage)
	v.keys.RegisterSpecial(tcell.KeyRight, "Next page", results, v.nextPage)
	v.keys.RegisterKey('p', "Previous page", results, v.prevPage)
	v.keys.RegisterSpecial(tcell.KeyLeft, "Previous page", results, v.prevPage)
	v.keys.RegisterKey('r', "Reload current page", results, func() bool {
		v.browser.Refresh()

		return true
	})
	v.keys.RegisterSpecial(tcell.KeyCtrlR, "Reload current page", nil, func() bool {
		v.browser.Refresh()

		return true
	})
	v.keys.RegisterKey('/', "Edit search", results, func() bool {
		v.focus(v.query)

		return true
	})
	v.keys.RegisterSpecial(tcell.KeyTab, "Next filter", results, func() bool {
		v.focus(v.query)

		return true
	})
	v.keys.RegisterKey('x', "Clear all filters", results, v.resetFilters)
	v.keys.RegisterKey('d', "Product details", results, func() bool {
		v.showDetail()

		return true
	})
	v.keys.RegisterKey('a', "Add to cart", results, func() bool {
		v.addSelected()

		return true
	})
	v.keys.RegisterKey('c', "Show cart", results, func() bool {
		v.showCart()

		return true
	})
	v.keys.RegisterKey('?', "Show help", results, func() bool {
		v.showHelp()

		return true
	})
	v.keys.RegisterKey('q', "Quit", results, func() bool {
		v.app.Stop()

		return true
	})
	v.keys.RegisterSpecial(tcell.KeyEscape, "Quit", results, func() bool {
		v.app.Stop()

		return true
	})

	editing := []ViewMode{ModeEditing}
	v.keys.RegisterSpecial(tcell.KeyEnter, "Apply and return to results", editing, func() bool { return false })
	v.keys.RegisterSpecial(tcell.KeyTab, "Next filter", editing, func() bool { return false })
	v.keys.RegisterSpecial(tcell.KeyBacktab, "Previous filter", editing, func() bool { return false })
	v.keys.RegisterSpecial(tcell.KeyEscape, "Back to results", editing, func() bool { return false })
	v.keys.RegisterSpecial(tcell.KeyUp, "Older search (search box)", editing, func() bool { return false })
	v.keys.RegisterSpecial(tcell.KeyDown, "Newer search (search box)", editing, func() bool { return false })
	v.keys.RegisterSpecial(tcell.KeyCtrlC, "Quit", nil, func() bool {
		v.app.Stop()

		return true
	})
}

func (v *browserView) capture(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		v.app.Stop()

		return nil
	}

	if v.overlay {
		return event
	}

	if v.app.GetFocus() == v.table {
		v.keys.SetMode(ModeResults)
	} else {
		v.keys.SetMode(ModeEditing)
	}

	if v.keys.Handle(event) {
		return nil
	}

	return event
}

func (v *browserView) queryKeys(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp:
		if text, ok := v.history.Older(v.query.GetText()); ok {
			v.query.SetText(text)
		}

		return nil
	case tcell.KeyDown:
		if text, ok := v.history.Newer(); ok {
			v.query.SetText(text)
		}

		return nil
	}

	return event
}

// leaveField moves focus after Tab, Shift+Tab, Enter or Esc in a filter widget.
func (v *browserView) leaveField(key tcell.Key) {
	switch key {
	case tcell.KeyTab:
		v.focusStep(1)
	case tcell.KeyBacktab:
		v.focusStep(-1)
	case tcell.KeyEnter, tcell.KeyEscape:
		v.focus(v.table)
	}
}

func (v *browserView) focusStep(delta int) {
	current := v.app.GetFocus()
	n := len(v.focusOrder)

	for i, p := range v.focusOrder {
		if p == current {
			v.focus(v.focusOrder[(i+delta+n)%n])

			return
		}
	}

	v.focus(v.table)
}

func (v *browserView) focus(p tview.Primitive) {
	v.app.SetFocus(p)

	if p == v.table {
		v.keys.SetMode(ModeResults)
	} else {
		v.keys.SetMode(ModeEditing)
	}
}

func (v *browserView) resetFilters() bool {
	if v.browser.State().IsDefault() {
		v.flash(" [yellow]No filters to clear[-]")

		return true
	}

	v.syncWidgets(v.browser.Reset())
	v.history.Remember("", 0)

	return true
}

func (v *browserView) nextPage() bool {
	if !v.browser.NextPage() {
		v.flash(" [yellow]This is the last page[-]")
	}

	return true
}

func (v *browserView) prevPage() bool {
	if !v.browser.PrevPage() {
		v.flash(" [yellow]Already on the first page[-]")
	}

	return true
}

// applySnapshot runs on the UI goroutine. Snapshots can arrive out of order, so older versions are ignored.
func (v *browserView) applySnapshot(snap browse.Snapshot) {
	if snap.Version < v.applied {
		return
	}

	pageChanged := snap.State.Page != v.view.Page || len(snap.Items) != len(v.view.Items)
	v.applied = snap.Version
	v.view = snap.View()

	v.renderView()

	if pageChanged {
		v.table.SelectFirst()
		v.table.ScrollToBeginning()
	}
}

func (v *browserView) renderView() {
	row, _ := v.table.GetSelection()
	query := v.browser.State().Query

	v.table.ClearRows()

	for _, p := range v.view.Items {
		v.table.AddRow(productCells(p, query), p)
	}

	if row > 0 && row <= v.table.DataRows() {
		v.table.Select(row, 0)
	} else {
		v.table.SelectFirst()
	}

	v.table.SetTitle(resultsTitle(v.view))

	if v.view.Err != "" {
		v.table.SetBorderColor(v.styles.Error)
	} else {
		v.table.SetBorderColor(v.styles.BorderColor)
	}

	v.status.SetText(statusText(v.view))
	v.progress.SetText(progressText(v.view, v.frame))
}

func (v *browserView) applyFacets(f catalog.Facets) {
	v.facets = f
	state := v.browser.State()

	v.syncing = true
	v.category.SetOptions(facetOptions(allCategories, f.Categories), nil)
	v.category.SetCurrentOption(facetIndex(f.Categories, state.Category))
	v.supplier.SetOptions(facetOptions(allSuppliers, f.Suppliers), nil)
	v.supplier.SetCurrentOption(facetIndex(f.Suppliers, state.Supplier))
	v.syncing = false

	logger.Log.Debugf("Loaded %d categories and %d suppliers", len(f.Categories), len(f.Suppliers))
}

// syncWidgets shows state in the filter widgets without feeding it back to the browser.
func (v *browserView) syncWidgets(state browse.FilterState) {
	v.syncing = true
	defer func() { v.syncing = false }()

	v.query.SetText(state.Query)
	v.minPrice.SetText(state.MinPrice)
	v.maxPrice.SetText(state.MaxPrice)
	v.category.SetCurrentOption(facetIndex(v.facets.Categories, state.Category))
	v.supplier.SetCurrentOption(facetIndex(v.facets.Suppliers, state.Supplier))
	v.sortBy.SetCurrentOption(sortIndex(state.Sort))
}

// animate advances the progress spinner while a fetch is running.
func (v *browserView) animate() {
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-v.ctx.Done():
			return
		case <-ticker.C:
			v.app.QueueUpdateDraw(func() {
				if !v.view.Busy {
					return
				}

				v.frame++
				v.progress.SetText(progressText(v.view, v.frame))
			})
		}
	}
}

// flash shows a message in the status bar, then restores the normal status.
func (v *browserView) flash(msg string) {
	v.flashGen++
	gen := v.flashGen

	v.status.SetText(msg)

	time.AfterFunc(statusFlashDuration, func() {
		v.app.QueueUpdateDraw(func() {
			if gen == v.flashGen {
				v.status.SetText(statusText(v.view))
			}
		})
	})
}

func (v *browserView) selected() (catalog.ProductSummary, bool) {
	p, ok := v.table.SelectedReference().(catalog.ProductSummary)

	return p, ok
}

func (v *browserView) addSelected() {
	p, ok := v.selected()
	if !ok {
		v.flash(" [red]No product selected[-]")

		return
	}

	v.addToCart(p)
}

func (v *browserView) addToCart(p catalog.ProductSummary) {
	go func() {
		err := v.deps.Cart.Add(v.ctx, cart.FromProduct(p, 1))

		var count int
		if err == nil {
			if items, listErr := v.deps.Cart.Items(v.ctx); listErr == nil {
				count = cart.Count(items)
			}
		}

		v.app.QueueUpdateDraw(func() {
			if err != nil {
				logger.Log.Warnf("Failed to add %s to cart: %v", p.Slug, err)
				v.flash(fmt.Sprintf(" [red]Could not add to cart: %s[-]", tview.Escape(err.Error())))

				return
			}

			v.flash(fmt.Sprintf(" [green]Added %s to cart (%d in cart)[-]", tview.Escape(p.Name), count))
		})
	}()
}

func (v *browserView) loadHistory() {
	if v.deps.History == nil {
		return
	}

	terms, err := v.deps.History.SearchTerms(v.ctx, v.historyLimit())
	if err != nil {
		logger.Log.Warnf("Failed to load search history: %v", err)

		return
	}

	v.history = newHistoryCursor(terms)
}

func (v *browserView) historyLimit() int {
	if v.deps.HistoryLimit > 0 {
		return v.deps.HistoryLimit
	}

	return 10
}

func (v *browserView) rememberSearch(term string) {
	term = strings.TrimSpace(term)
	v.history.Remember(term, v.historyLimit())

	if term == "" || v.deps.History == nil {
		return
	}

	go func() {
		if err := v.deps.History.AddSearch(v.ctx, term); err != nil {
			logger.Log.Warnf("Failed to save search %q: %v", term, err)
		}
	}()
}

// showOverlay replaces the screen with a fullscreen text page until Esc.
func (v *browserView) showOverlay(title, text, hints string, keys func(event *tcell.EventKey) bool) *tview.TextView {
	page := tview.NewTextView().
		SetDynamicColors(true).
		SetText(text).
		SetScrollable(true).
		SetWordWrap(true)
	page.SetBorder(true).SetTitle(title)

	pageStatus := tview.NewTextView().
		SetDynamicColors(true).
		SetText(hints)

	pageFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(page, 0, 1, true).
		AddItem(pageStatus, 1, 0, false)

	page.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			v.closeOverlay()

			return nil
		}

		if keys != nil && keys(event) {
			return nil
		}

		return event
	})

	v.overlay = true
	v.keys.SetMode(ModeOverlay)
	v.app.SetRoot(pageFlex, true).SetFocus(page)

	return page
}

func (v *browserView) closeOverlay() {
	v.overlay = false
	v.app.SetRoot(v.layout, true)
	v.focus(v.table)
	v.status.SetText(statusText(v.view))
}

func (v *browserView) showDetail() {
	p, ok := v.selected()
	if !ok {
		v.flash(" [red]No product selected[-]")

		return
	}

	page := v.showOverlay(" "+tview.Escape(p.Name)+" ", detailText(p), " [yellow]Esc[-] back  [yellow]a[-] add to cart  [yellow]↑/↓[-] scroll",
		func(event *tcell.EventKey) bool {
			if event.Key() == tcell.KeyRune && event.Rune() == 'a' {
				v.addToCart(p)

				return true
			}

			return false
		})

	if v.deps.Products == nil || p.Slug == "" {
		return
	}

	go func() {
		full, err := v.deps.Products.Product(v.ctx, p.Slug)
		if err != nil {
			logger.Log.Debugf("Failed to refresh product %s: %v", p.Slug, err)

			return
		}

		v.app.QueueUpdateDraw(func() {
			if v.overlay {
				page.SetText(detailText(full))
			}
		})
	}()
}

func (v *browserView) showCart() {
	var page *tview.TextView

	refresh := func() {
		go func() {
			items, err := v.deps.Cart.Items(v.ctx)

			v.app.QueueUpdateDraw(func() {
				if !v.overlay || page == nil {
					return
				}

				if err != nil {
					page.SetText(fmt.Sprintf("[red]Failed to load cart: %s[-]", tview.Escape(err.Error())))

					return
				}

				page.SetText(cartText(items))
				page.SetTitle(fmt.Sprintf(" Cart (%d) ", cart.Count(items)))
			})
		}()
	}

	page = v.showOverlay(" Cart ", "[yellow]Loading cart...[-]", " [yellow]Esc[-] back  [yellow]1-9[-] remove line  [yellow]Shift+X[-] clear",
		func(event *tcell.EventKey) bool {
			if event.Key() != tcell.KeyRune {
				return false
			}

			r := event.Rune()

			switch {
			case r == 'X':
				go func() {
					if err := v.deps.Cart.Clear(v.ctx); err != nil {
						logger.Log.Warnf("Failed to clear cart: %v", err)
					}

					refresh()
				}()

				return true
			case r >= '1' && r <= '9':
				line := int(r - '1')

				go func() {
					items, err := v.deps.Cart.Items(v.ctx)
					if err == nil && line < len(items) {
						err = v.deps.Cart.Remove(v.ctx, items[line].ProductID)
					}

					if err != nil {
						logger.Log.Warnf("Failed to remove cart line %d: %v", line+1, err)
					}

					refresh()
				}()

				return true
			}

			return false
		})

	refresh()
}

func (v *browserView) showHelp() {
	sections := []helpSection{
		{title: "Results", entries: v.keys.HelpEntries(ModeResults)},
		{title: "Filters", entries: v.keys.HelpEntries(ModeEditing)},
	}

	v.showOverlay(" Help ", helpText(sections), " [yellow]Esc[-] back  [yellow]↑/↓[-] scroll", func(event *tcell.EventKey) bool {
		if event.Key() == tcell.KeyRune && event.Rune() == '?' {
			v.closeOverlay()

			return true
		}

		return false
	})
}
