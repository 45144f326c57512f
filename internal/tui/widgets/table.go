// Package widgets holds reusable tview components.
package widgets

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Table is a tview table with a fixed header row and a reference per data row.
type Table struct {
	*tview.Table
	headers []string
	expand  []int
}

// NewTable creates a new table widget
func NewTable() *Table {
	table := &Table{
		Table: tview.NewTable(),
	}

	table.SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)

	return table
}

// SetHeaders sets the table headers. expansion gives each column's share of
// spare width; missing entries default to 1.
func (t *Table) SetHeaders(headers []string, expansion ...int) *Table {
	t.headers = headers
	t.expand = expansion

	for col, header := range headers {
		cell := tview.NewTableCell(header).
			SetTextColor(tcell.ColorBlack).
			SetBackgroundColor(tcell.ColorDarkCyan).
			SetAlign(tview.AlignLeft).
			SetSelectable(false).
			SetExpansion(t.expansion(col))
		t.SetCell(0, col, cell)
	}

	return t
}

func (t *Table) expansion(col int) int {
	if col < len(t.expand) {
		return t.expand[col]
	}

	return 1
}

// AddRow adds a data row to the table
func (t *Table) AddRow(cells []string, reference interface{}) {
	row := t.GetRowCount()
	for col, cellText := range cells {
		cell := tview.NewTableCell(cellText).
			SetAlign(tview.AlignLeft).
			SetReference(reference).
			SetExpansion(t.expansion(col))
		t.SetCell(row, col, cell)
	}
}

// ClearRows clears all rows except headers
func (t *Table) ClearRows() {
	for row := t.GetRowCount() - 1; row > 0; row-- {
		t.RemoveRow(row)
	}
}

// DataRows is the number of rows below the header.
func (t *Table) DataRows() int {
	if n := t.GetRowCount() - 1; n > 0 {
		return n
	}

	return 0
}

// SelectFirst selects the first data row when there is one.
func (t *Table) SelectFirst() {
	if t.DataRows() > 0 {
		t.Select(1, 0)
	}
}

// SelectedReference returns the reference of the selected row
func (t *Table) SelectedReference() interface{} {
	row, _ := t.GetSelection()
	if row <= 0 || row >= t.GetRowCount() {
		return nil
	}

	cell := t.GetCell(row, 0)
	if cell == nil {
		return nil
	}

	return cell.GetReference()
}
