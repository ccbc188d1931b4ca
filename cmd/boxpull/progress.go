package main

import (
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"boxpull/internal/box"
)

// newProgressObserver returns a byte-progress renderer for interactive
// terminals, or nil when output is piped or multiple workers would
// interleave bars.
func newProgressObserver(workers int) box.ProgressObserver {
	if workers > 1 {
		return nil
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return nil
	}
	return &barObserver{}
}

type barObserver struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func (o *barObserver) Start(name string, totalBytes int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.bar = progressbar.DefaultBytes(totalBytes, name)
}

func (o *barObserver) Advance(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.bar != nil {
		_ = o.bar.Add(n)
	}
}

func (o *barObserver) Finish() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.bar != nil {
		_ = o.bar.Finish()
		o.bar = nil
	}
}
