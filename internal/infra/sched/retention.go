// Package sched owns time-based cleanup for the job lifecycle.
package sched

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Retention arms one deletion timer per job id. Timers are owned here, not
// fired off unsupervised: a manual delete cancels the timer, and Stop
// cancels everything on shutdown. Whichever of the timer or a manual delete
// runs first wins; the loser becomes a no-op because the deletion callback
// itself is idempotent.
type Retention struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
	log    *zerolog.Logger
}

func NewRetention(logger *zerolog.Logger) *Retention {
	retLog := logger.With().Str("component", "Retention").Logger()
	return &Retention{timers: make(map[string]*time.Timer), log: &retLog}
}

// Schedule arms expire for the id after d. A second Schedule for an id that
// is already armed is a no-op; the retention window is fixed at the first
// successful retrieval, not extended by later ones.
func (r *Retention) Schedule(id string, d time.Duration, expire func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if _, ok := r.timers[id]; ok {
		return
	}
	r.timers[id] = time.AfterFunc(d, func() {
		r.forget(id)
		r.log.Debug().Str("job_id", id).Msg("retention window elapsed")
		expire()
	})
	r.log.Debug().Str("job_id", id).Dur("window", d).Msg("retention armed")
}

// Cancel disarms the id's timer if one is pending. Safe to call for ids that
// were never scheduled or already fired.
func (r *Retention) Cancel(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[id]; ok {
		t.Stop()
		delete(r.timers, id)
	}
}

// Stop disarms all pending timers. Further Schedule calls are ignored.
func (r *Retention) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
}

func (r *Retention) forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.timers, id)
}
