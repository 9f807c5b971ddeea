package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// ElapsedCompleter completes bookings whose consultation time has passed.
type ElapsedCompleter interface {
	CompleteElapsed(ctx context.Context) (int, error)
}

// CompletionSweeper periodically runs an ElapsedCompleter until stopped.
type CompletionSweeper struct {
	completer ElapsedCompleter
	interval  time.Duration
	log       *logrus.Logger

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

func NewCompletionSweeper(completer ElapsedCompleter, interval time.Duration, log *logrus.Logger) *CompletionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CompletionSweeper{
		completer: completer,
		interval:  interval,
		log:       log,
		stopChan:  make(chan struct{}),
	}
}

// Start launches the background loop. Calling it twice is a no-op.
func (s *CompletionSweeper) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	s.wg.Add(1)
	go s.loop()
	s.log.Infof("Completion sweeper started, interval=%v", s.interval)
}

// Stop gracefully shuts down the sweeper.
// Safe to call multiple times.
func (s *CompletionSweeper) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("Completion sweeper stopped")
	}
}

func (s *CompletionSweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce performs one sweep pass.
func (s *CompletionSweeper) RunOnce() int {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	completed, err := s.completer.CompleteElapsed(ctx)
	if err != nil {
		s.log.Warnf("Completion sweep failed after %d bookings: %+v", completed, err)
		return completed
	}
	if completed > 0 {
		s.log.Infof("Completion sweep completed %d bookings", completed)
	}
	return completed
}
