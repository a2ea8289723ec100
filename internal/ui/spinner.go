package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 100 * time.Millisecond

// Spinner animates a single in-flight activity on a terminal. On
// non-terminal writers it degrades to plain start and finish lines so
// logs stay readable in CI.
type Spinner struct {
	w     io.Writer
	label string
	tty   bool

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner returns a spinner that reports progress for label on w.
func NewSpinner(w io.Writer, label string) *Spinner {
	if w == nil {
		w = os.Stdout
	}
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &Spinner{w: w, label: label, tty: tty}
}

// Start begins the animation, or prints a single activity line when the
// writer is not a terminal.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	if !s.tty {
		fmt.Fprintf(s.w, "► %s\n", s.label)
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.animate()
}

// Stop ends the animation and prints the final status line for the
// activity: a success mark, or a failure mark when err is non-nil.
func (s *Spinner) Stop(err error) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	if s.tty {
		close(s.stop)
		s.mu.Unlock()
		<-s.done
		s.mu.Lock()
		s.clearLine()
	}
	s.mu.Unlock()

	if err != nil {
		Errorf(s.w, "%s failed", s.label)
		return
	}
	Successf(s.w, "%s", s.label)
}

func (s *Spinner) animate() {
	defer close(s.done)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	frame := 0
	cyan := color.New(color.FgCyan)
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.clearLine()
			cyan.Fprintf(s.w, "%s %s", spinnerFrames[frame%len(spinnerFrames)], s.label)
			s.mu.Unlock()
			frame++
		}
	}
}

// clearLine erases the current terminal line. Callers hold s.mu.
func (s *Spinner) clearLine() {
	fmt.Fprint(s.w, "\r\033[K")
}
