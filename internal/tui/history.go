package tui

// historyCursor walks remembered searches with Up (older) and Down (newer).
// Position -1 is the text being typed, which is restored when walking back past the newest entry.
type historyCursor struct {
	terms []string
	pos   int
	draft string
}

func newHistoryCursor(terms []string) *historyCursor {
	return &historyCursor{terms: terms, pos: -1}
}

// Older moves one entry back in time and returns the text to show.
func (h *historyCursor) Older(current string) (string, bool) {
	if h.pos+1 >= len(h.terms) {
		return current, false
	}

	if h.pos == -1 {
		h.draft = current
	}

	h.pos++

	return h.terms[h.pos], true
}

// Newer moves one entry forward, ending at the saved draft.
func (h *historyCursor) Newer() (string, bool) {
	if h.pos < 0 {
		return "", false
	}

	h.pos--
	if h.pos == -1 {
		return h.draft, true
	}

	return h.terms[h.pos], true
}

// Remember puts term at the front, dropping an older copy, and resets the cursor.
func (h *historyCursor) Remember(term string, limit int) {
	h.pos = -1
	h.draft = ""

	if term == "" {
		return
	}

	out := []string{term}

	for _, t := range h.terms {
		if t != term {
			out = append(out, t)
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	h.terms = out
}
