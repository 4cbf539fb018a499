// Package system probes the host OS: which application has focus, whether
// the screen is locked, and opening new terminal sessions.
package system

import (
	"context"
	"log/slog"
	"time"
)

// probeTimeout bounds one focus/lock probe. The probes shell out; a wedged
// helper process must not pile up goroutines.
const probeTimeout = 2 * time.Second

// Result is one completed probe.
type Result struct {
	// App is the focused application name, empty when unknown.
	App string
	// Locked reports whether the screen is locked.
	Locked bool
}

// Prober runs focus/lock probes in the background. The scheduler kicks it on
// its housekeeping cadence and polls for results without blocking; a new
// probe is never started while one is outstanding.
//
// Kick and Poll are called from the scheduler loop only and need no lock.
type Prober struct {
	logger  *slog.Logger
	focus   func(context.Context) (string, error)
	locked  func(context.Context) (bool, error)
	results chan Result
	pending bool
}

// NewProber wires the platform probes.
func NewProber(logger *slog.Logger) *Prober {
	return NewProberWith(logger, focusedApp, screenLocked)
}

// NewProberWith uses custom probe functions; tests inject fakes.
func NewProberWith(logger *slog.Logger, focus func(context.Context) (string, error), locked func(context.Context) (bool, error)) *Prober {
	return &Prober{
		logger:  logger,
		focus:   focus,
		locked:  locked,
		results: make(chan Result, 1),
	}
}

// Kick starts a probe unless one is already in flight.
func (p *Prober) Kick() {
	if p.pending {
		return
	}
	p.pending = true

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
		defer cancel()

		var res Result
		app, err := p.focus(ctx)
		if err != nil {
			p.logger.Debug("focus probe failed", "error", err)
		} else {
			res.App = app
		}

		locked, err := p.locked(ctx)
		if err != nil {
			p.logger.Debug("lock probe failed", "error", err)
		} else {
			res.Locked = locked
		}

		p.results <- res
	}()
}

// Poll returns a completed probe result without blocking.
func (p *Prober) Poll() (Result, bool) {
	select {
	case res := <-p.results:
		p.pending = false
		return res, true
	default:
		return Result{}, false
	}
}
