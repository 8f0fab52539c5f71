package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// Tracker draws a progress bar for file analysis. The total may be set
// late by Update, since discovery runs before the count is known.
type Tracker struct {
	mu    sync.Mutex
	bar   *progressbar.ProgressBar
	w     io.Writer
	label string
	total int
}

// NewTracker creates a tracker that writes to stderr.
func NewTracker(label string, total int) *Tracker {
	return NewWriterTracker(os.Stderr, label, total)
}

// NewWriterTracker creates a tracker that writes to w.
func NewWriterTracker(w io.Writer, label string, total int) *Tracker {
	t := &Tracker{w: w, label: label, total: total}
	t.bar = t.newBar(total)
	return t
}

func (t *Tracker) newBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(t.w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(t.label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Update moves the bar to current of total. Its signature matches the
// analyzer's progress callback. Safe for concurrent use.
func (t *Tracker) Update(current, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if total != t.total {
		t.total = total
		t.bar.ChangeMax(total)
	}
	_ = t.bar.Set(current)
}

// Tick increments the progress by 1. Safe for concurrent use.
func (t *Tracker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.bar.Add(1)
}

// Current returns the number of completed steps.
func (t *Tracker) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return int(t.bar.State().CurrentNum)
}

// Finish clears the bar.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.bar.Finish()
	_ = t.bar.Clear()
}

// FinishError clears the bar and prints err.
func (t *Tracker) FinishError(err error) {
	t.Finish()
	fmt.Fprintf(t.w, "  %s error: %v\n", t.label, err)
}
