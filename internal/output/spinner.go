package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

// Spinner wraps a pterm spinner that degrades to plain lines when stderr isn't a TTY.
type Spinner struct {
	mu       sync.Mutex
	active   bool
	enabled  bool
	jsonMode bool
	sp       *pterm.SpinnerPrinter
	message  string
	writer   io.Writer
	stopped  bool
}

// NewSpinner creates a new spinner with the provided message. Call Start before using.
func NewSpinner(message string) *Spinner {
	json := IsJSONMode()

	return &Spinner{
		enabled:  !json && term.IsTerminal(int(os.Stderr.Fd())),
		jsonMode: json,
		message:  message,
		writer:   os.Stderr,
	}
}

// Start begins rendering the spinner.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.active {
		return
	}

	s.active = true

	if s.enabled {
		sp, err := pterm.DefaultSpinner.WithWriter(s.writer).WithRemoveWhenDone(true).Start(s.message)
		if err == nil {
			s.sp = sp

			return
		}

		s.enabled = false
	}

	if !s.jsonMode {
		fmt.Fprintf(s.writer, "%s...\n", s.message)
	}
}

// Update updates the spinner message. It is a no-op until Start.
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || s.stopped {
		return
	}

	s.message = message

	if s.sp != nil {
		s.sp.UpdateText(message)
	} else if !s.jsonMode {
		fmt.Fprintf(s.writer, "%s...\n", message)
	}
}

// Stop stops the spinner without printing an additional message.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	s.stopped = true

	if s.sp != nil {
		_ = s.sp.Stop()
	}
}

// Success stops the spinner and prints a success message.
func (s *Spinner) Success(message string) {
	s.stopWithMessage("✓", message)
}

// Fail stops the spinner and prints a failure message.
func (s *Spinner) Fail(message string) {
	s.stopWithMessage("✗", message)
}

func (s *Spinner) stopWithMessage(prefix, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasStopped := s.stopped
	s.stopped = true

	if !wasStopped && s.sp != nil {
		_ = s.sp.Stop()
	}

	if message != "" && !s.jsonMode {
		fmt.Fprintf(s.writer, "%s %s\n", prefix, message)
	}
}
