package watch

import (
	"context"
	"sync"
	"time"
)

// DefaultQuietWindow is how long changes must settle before a rebuild.
const DefaultQuietWindow = 300 * time.Millisecond

// Debouncer coalesces bursts of triggers into one call.
type Debouncer struct {
	quiet time.Duration
	fire  func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer calls fire once quiet has passed without a new trigger.
func NewDebouncer(quiet time.Duration, fire func()) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietWindow
	}
	return &Debouncer{quiet: quiet, fire: fire}
}

// Trigger restarts the quiet window.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fire)
}

// Stop cancels a pending request.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// Worker runs one rebuild at a time. A request arriving while a rebuild runs
// schedules exactly one follow-up.
type Worker struct {
	requests chan struct{}
	rebuild  func(ctx context.Context)

	mu      sync.Mutex
	running bool
	pending bool
}

// NewWorker creates a worker around rebuild.
func NewWorker(rebuild func(ctx context.Context)) *Worker {
	return &Worker{requests: make(chan struct{}, 1), rebuild: rebuild}
}

// Request asks for a rebuild without blocking. While a rebuild runs the
// request is remembered and served once it finishes.
func (w *Worker) Request() {
	w.mu.Lock()
	if w.running {
		w.pending = true
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

// Running reports whether a rebuild is in progress.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Run processes requests until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			w.mu.Lock()
			w.running = true
			w.mu.Unlock()

			w.rebuild(ctx)

			w.mu.Lock()
			w.running = false
			again := w.pending
			w.pending = false
			w.mu.Unlock()
			if again {
				select {
				case w.requests <- struct{}{}:
				default:
				}
			}
		}
	}
}
