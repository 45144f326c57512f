package tui

import (
	"github.com/gdamore/tcell/v2"
)

// Styles holds the color scheme for the TUI
type Styles struct {
	BgColor     tcell.Color
	FgColor     tcell.Color
	BorderColor tcell.Color

	FieldBg tcell.Color
	LabelFg tcell.Color

	TableHeaderBg tcell.Color
	TableHeaderFg tcell.Color

	Busy  tcell.Color
	Error tcell.Color
	OK    tcell.Color
	Price tcell.Color
}

// DefaultStyles returns the default dark color scheme
func DefaultStyles() *Styles {
	return &Styles{
		BgColor:     tcell.ColorBlack,
		FgColor:     tcell.ColorWhite,
		BorderColor: tcell.ColorDarkCyan,

		FieldBg: tcell.ColorBlack,
		LabelFg: tcell.ColorYellow,

		TableHeaderBg: tcell.ColorDarkCyan,
		TableHeaderFg: tcell.ColorBlack,

		Busy:  tcell.ColorYellow,
		Error: tcell.ColorRed,
		OK:    tcell.ColorGreen,
		Price: tcell.ColorAqua,
	}
}

// ColorName converts tcell.Color to tview color name
func ColorName(color tcell.Color) string {
	switch color {
	case tcell.ColorGreen:
		return "green"
	case tcell.ColorRed:
		return "red"
	case tcell.ColorYellow:
		return "yellow"
	case tcell.ColorWhite:
		return "white"
	case tcell.ColorGray:
		return "gray"
	case tcell.ColorAqua:
		return "aqua"
	case tcell.ColorDarkCyan:
		return "darkcyan"
	default:
		return "white"
	}
}

// Tag wraps text in a tview color tag.
func Tag(color tcell.Color, text string) string {
	return "[" + ColorName(color) + "]" + text + "[-]"
}
