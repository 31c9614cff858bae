// Package scheduler drives the live view refresh loop.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"statreporter/internal/logger"
	"statreporter/internal/sender"
	"statreporter/internal/snapshot"
)

const sendTimeout = 10 * time.Second

// Source produces one snapshot per call.
type Source interface {
	Collect(ctx context.Context) *snapshot.Snapshot
}

// Display shows a snapshot. An error stops the loop.
type Display interface {
	Show(snap *snapshot.Snapshot) error
}

// Scheduler re-collects and redraws at a fixed interval. The first cycle
// runs immediately. A display error or a panic ends the loop (fail-stop);
// publishing errors are only logged.
type Scheduler struct {
	source  Source
	display Display
	sender  sender.Sender // nil when publishing is off
	clock   clock.Clock

	mu       sync.Mutex
	interval time.Duration
	reset    chan struct{}
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	err      error
}

// New creates a scheduler. snd may be nil.
func New(src Source, display Display, snd sender.Sender, clk clock.Clock, interval time.Duration) *Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &Scheduler{
		source:   src,
		display:  display,
		sender:   snd,
		clock:    clk,
		interval: interval,
		reset:    make(chan struct{}, 1),
	}
}

// Interval returns the current refresh interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval changes the refresh interval. It takes effect from the next tick.
func (s *Scheduler) SetInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("invalid refresh interval %v", d)
	}
	s.mu.Lock()
	s.interval = d
	s.mu.Unlock()

	select {
	case s.reset <- struct{}{}:
	default:
	}
	return nil
}

// Run blocks until ctx is done (returning nil) or a cycle fails.
func (s *Scheduler) Run(ctx context.Context) error {
	log := logger.WithComponent("scheduler")

	interval := s.Interval()
	if interval <= 0 {
		return fmt.Errorf("invalid refresh interval %v", interval)
	}
	log.Info().Dur("interval", interval).Msg("Starting refresh loop")

	ticker := s.clock.Ticker(interval)
	defer ticker.Stop()

	if err := s.cycle(ctx); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Refresh loop stopped")
			return nil
		case <-s.reset:
			interval = s.Interval()
			ticker.Reset(interval)
			log.Info().Dur("interval", interval).Msg("Refresh interval updated")
		case <-ticker.C:
			if err := s.cycle(ctx); err != nil {
				return err
			}
		}
	}
}

// Start runs the loop in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.err = nil
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.Run(ctx)

		s.mu.Lock()
		s.running = false
		s.err = err
		s.mu.Unlock()
	}()
	return nil
}

// Stop cancels the loop and waits for it to return. It returns the error
// that ended the loop, if any.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// IsRunning returns whether the loop is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) cycle(ctx context.Context) (err error) {
	log := logger.WithComponent("scheduler")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh cycle panicked: %v", r)
			log.Error().Err(err).Msg("Refresh cycle failed")
		}
	}()

	start := s.clock.Now()
	snap := s.source.Collect(ctx)
	if snap == nil {
		return errors.New("source returned no snapshot")
	}

	if err := s.display.Show(snap); err != nil {
		log.Error().Err(err).Msg("Refresh cycle failed")
		return fmt.Errorf("failed to display snapshot: %w", err)
	}

	if s.sender != nil {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		if err := s.sender.Send(sendCtx, snap); err != nil {
			log.Error().Err(err).Msg("Failed to publish snapshot")
		}
	}

	log.Debug().Dur("duration", s.clock.Since(start)).Msg("Refresh cycle completed")
	return nil
}
