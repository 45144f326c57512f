package tui

import (
	"github.com/gdamore/tcell/v2"
)

// ViewMode represents what currently owns the keyboard.
type ViewMode int

const (
	// ModeResults is the product table.
	ModeResults ViewMode = iota
	// ModeEditing is any filter input or dropdown.
	ModeEditing
	// ModeOverlay is a fullscreen detail, cart or help page.
	ModeOverlay
)

// KeyBinding defines a keyboard shortcut
type KeyBinding struct {
	Key         tcell.Key   // For special keys (Enter, Escape, etc.)
	Rune        rune        // For character keys ('n', 'a', etc.)
	Description string      // For help display
	Modes       []ViewMode  // Which modes this binding is active in (empty = all modes)
	Handler     func() bool // Returns true if event was handled
}

// KeyBindings manages all keyboard shortcuts
type KeyBindings struct {
	bindings []KeyBinding
	mode     ViewMode
}

// NewKeyBindings creates a new keybinding manager
func NewKeyBindings() *KeyBindings {
	return &KeyBindings{
		bindings: make([]KeyBinding, 0),
		mode:     ModeResults,
	}
}

// SetMode changes the current input mode
func (kb *KeyBindings) SetMode(mode ViewMode) {
	kb.mode = mode
}

// Mode returns the current input mode
func (kb *KeyBindings) Mode() ViewMode {
	return kb.mode
}

// Register adds a new keybinding
func (kb *KeyBindings) Register(binding KeyBinding) {
	kb.bindings = append(kb.bindings, binding)
}

// RegisterKey is a convenience method for registering a character key
func (kb *KeyBindings) RegisterKey(r rune, description string, modes []ViewMode, handler func() bool) {
	kb.Register(KeyBinding{
		Key:         tcell.KeyRune,
		Rune:        r,
		Description: description,
		Modes:       modes,
		Handler:     handler,
	})
}

// RegisterSpecial is a convenience method for registering a special key
func (kb *KeyBindings) RegisterSpecial(key tcell.Key, description string, modes []ViewMode, handler func() bool) {
	kb.Register(KeyBinding{
		Key:         key,
		Description: description,
		Modes:       modes,
		Handler:     handler,
	})
}

func (b KeyBinding) activeIn(mode ViewMode) bool {
	if len(b.Modes) == 0 {
		return true
	}

	for _, m := range b.Modes {
		if m == mode {
			return true
		}
	}

	return false
}

// Handle processes a key event and returns true if it was handled
func (kb *KeyBindings) Handle(event *tcell.EventKey) bool {
	for _, binding := range kb.bindings {
		if !binding.activeIn(kb.mode) {
			continue
		}

		if event.Key() == tcell.KeyRune {
			if binding.Key != tcell.KeyRune || binding.Rune != event.Rune() {
				continue
			}
		} else if binding.Key != event.Key() {
			continue
		}

		if binding.Handler() {
			return true
		}
	}

	return false
}

// HelpEntry represents a single help item
type HelpEntry struct {
	Key         string
	Description string
}

// HelpEntries returns the described bindings of mode in registration order.
// Bindings sharing a description are merged into one entry, e.g. "n/→".
func (kb *KeyBindings) HelpEntries(mode ViewMode) []HelpEntry {
	entries := make([]HelpEntry, 0, len(kb.bindings))
	index := make(map[string]int)

	for _, b := range kb.bindings {
		if b.Description == "" || !b.activeIn(mode) {
			continue
		}

		if i, ok := index[b.Description]; ok {
			entries[i].Key += "/" + formatKey(b)

			continue
		}

		index[b.Description] = len(entries)
		entries = append(entries, HelpEntry{Key: formatKey(b), Description: b.Description})
	}

	return entries
}

func formatKey(b KeyBinding) string {
	if b.Key == tcell.KeyRune {
		if b.Rune >= 'A' && b.Rune <= 'Z' {
			return "Shift+" + string(b.Rune)
		}

		return string(b.Rune)
	}

	switch b.Key {
	case tcell.KeyEnter:
		return "Enter"
	case tcell.KeyEscape:
		return "Esc"
	case tcell.KeyTab:
		return "Tab"
	case tcell.KeyBacktab:
		return "Shift+Tab"
	case tcell.KeyCtrlC:
		return "Ctrl+C"
	case tcell.KeyCtrlR:
		return "Ctrl+R"
	case tcell.KeyUp:
		return "↑"
	case tcell.KeyDown:
		return "↓"
	case tcell.KeyLeft:
		return "←"
	case tcell.KeyRight:
		return "→"
	default:
		return "?"
	}
}
