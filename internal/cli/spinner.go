package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a status message on a terminal while a long operation
// runs. On anything but a terminal it prints nothing, so redirected output
// and log lines stay clean.
type spinner struct {
	w       io.Writer
	message string
	enabled bool

	mu      sync.Mutex
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// newSpinner creates a spinner writing to stderr when stderr is a terminal
// and the logger is not in debug mode.
func newSpinner(message string, verbose bool) *spinner {
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return newSpinnerTo(os.Stderr, message, tty && !verbose)
}

func newSpinnerTo(w io.Writer, message string, enabled bool) *spinner {
	return &spinner{
		w:       w,
		message: message,
		enabled: enabled,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start animates until Stop is called or ctx is done.
func (s *spinner) Start(ctx context.Context) {
	if !s.enabled {
		close(s.stopped)
		return
	}
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				s.clearLine()
				return
			case <-s.stop:
				s.clearLine()
				return
			case <-ticker.C:
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop ends the animation and clears the line. It is safe to call more
// than once.
func (s *spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	<-s.stopped
}

func (s *spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}
