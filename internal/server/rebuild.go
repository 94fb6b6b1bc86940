package server

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Rebuilder coalesces bursts of change notifications into one rebuild and
// never runs two rebuilds at the same time.
type Rebuilder struct {
	delay     time.Duration
	build     func() error
	onSuccess func()
	log       zerolog.Logger

	buildMu sync.Mutex

	timerMu sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewRebuilder returns a Rebuilder that runs build delay after the last
// Trigger and calls onSuccess when it succeeds.
func NewRebuilder(delay time.Duration, build func() error, onSuccess func(), log zerolog.Logger) *Rebuilder {
	if onSuccess == nil {
		onSuccess = func() {}
	}
	return &Rebuilder{delay: delay, build: build, onSuccess: onSuccess, log: log}
}

// Trigger schedules a rebuild, pushing back one that is already pending.
func (r *Rebuilder) Trigger(reason string) {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	if r.stopped {
		return
	}
	r.log.Debug().Str("reason", reason).Msg("Rebuild scheduled")
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, r.run)
}

// Stop cancels any pending rebuild and ignores later triggers. A rebuild
// already running is allowed to finish.
func (r *Rebuilder) Stop() {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
	}
}

func (r *Rebuilder) run() {
	r.buildMu.Lock()
	defer r.buildMu.Unlock()

	start := time.Now()
	if err := r.build(); err != nil {
		r.log.Error().Err(err).Msg("Error rebuilding site")
		return
	}
	r.log.Info().Dur("duration", time.Since(start)).Msg("Site rebuilt, triggering reload")
	r.onSuccess()
}
