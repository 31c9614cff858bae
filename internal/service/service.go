// Package service runs the reporter until it returns or a shutdown signal
// arrives.
package service

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"statreporter/internal/logger"
)

// RunFunc is the main function that runs the reporter logic.
type RunFunc func(ctx context.Context) error

// Service cancels RunFunc's context on SIGINT or SIGTERM and waits for it
// to return. A second signal abandons the wait.
type Service struct {
	runFunc RunFunc
	notify  func(c chan<- os.Signal, sig ...os.Signal)
	release func(c chan<- os.Signal)

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// New creates a service around runFunc.
func New(runFunc RunFunc) *Service {
	return &Service{
		runFunc: runFunc,
		notify:  signal.Notify,
		release: signal.Stop,
	}
}

// Run blocks until runFunc returns, or until a shutdown signal has been
// handled.
func (s *Service) Run(ctx context.Context) error {
	log := logger.WithComponent("service")

	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	defer s.Stop()

	sigChan := make(chan os.Signal, 1)
	s.notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer s.release(sigChan)

	done := make(chan error, 1)
	go func() {
		done <- s.runFunc(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		s.Stop()

		select {
		case err := <-done:
			return err
		case sig := <-sigChan:
			log.Warn().Str("signal", sig.String()).Msg("Received second signal, forcing exit")
			return nil
		}

	case err := <-done:
		return err
	}
}

// Stop cancels the running function's context.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil && !s.stopped {
		s.stopped = true
		s.cancel()
	}
	return nil
}
