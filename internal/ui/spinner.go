package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner animates a loading indicator on a terminal line while a
// transaction waits for its receipt.
type Spinner struct {
	out      io.Writer
	frames   []string
	msg      string
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// NewSpinner creates a spinner that writes to out.
func NewSpinner(out io.Writer, msg string) *Spinner {
	return &Spinner{
		out:    out,
		frames: spinnerFrames,
		msg:    msg,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins the animation in a goroutine.
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.out, "\r%s  %s", StyleWarning.Render(s.frames[i%len(s.frames)]), s.msg)
			select {
			case <-s.stop:
				fmt.Fprintf(s.out, "\r%-60s\r", "") // clear line
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop halts the animation and waits for the line to be cleared. Safe to call twice.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}
