package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner animates a progress line on errOut while a long operation runs.
// It steps a bubbles spinner.Model by hand since no tea.Program owns the
// terminal during an import.
type Spinner struct {
	r       *Renderer
	model   spinner.Model
	message string

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewSpinner creates a stopped spinner with the given message.
func (r *Renderer) NewSpinner(message string) *Spinner {
	return &Spinner{
		r:       r,
		model:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(r.styles.Info)),
		message: message,
	}
}

// next renders the current frame and advances the model. Only the
// animation goroutine calls it once Start has run.
func (s *Spinner) next() string {
	view := s.model.View()
	s.model, _ = s.model.Update(s.model.Tick())
	return view
}

// Start begins animating. Calling Start twice is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func(stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.model.Spinner.FPS)
		defer ticker.Stop()
		for {
			_, _ = fmt.Fprintf(s.r.errOut, "\r%s %s", s.next(), s.message)
			select {
			case <-stop:
				return
			case <-ticker.C:
			}
		}
	}(s.stop, s.done)
}

// Success stops the spinner and prints a success line.
func (s *Spinner) Success(msg string) {
	s.finish(s.r.styles.StatusSuccess.String() + " " + msg)
}

// Fail stops the spinner and prints a failure line.
func (s *Spinner) Fail(msg string) {
	s.finish(s.r.styles.StatusFailed.String() + " " + msg)
}

func (s *Spinner) finish(line string) {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
		_, _ = fmt.Fprint(s.r.errOut, "\r\033[K")
	}
	_, _ = fmt.Fprintln(s.r.errOut, line)
}
