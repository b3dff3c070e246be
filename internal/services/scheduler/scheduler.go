// Package scheduler runs the recurring expiry sweep that matures
// investments whose holding period has elapsed. Correctness does not
// depend on a single scheduler instance: every completion goes through
// the guarded claim, so concurrent sweeps or admin actions cannot
// credit an investment twice.
package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"camillo/internal/metrics"
	"camillo/internal/repositories"
	"camillo/internal/services/ledger"
)

const DefaultInterval = 5 * time.Minute

type Scheduler struct {
	investments repositories.InvestmentRepository
	ledger      ledger.Service
	interval    time.Duration

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a scheduler sweeping at the given interval.
func New(investments repositories.InvestmentRepository, ledgerSvc ledger.Service, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		investments: investments,
		ledger:      ledgerSvc,
		interval:    interval,
		stop:        make(chan struct{}),
	}
}

// Start launches the background loop. One sweep runs immediately,
// preceded by a reconciliation pass for credits lost in a crash.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx := context.Background()
		if _, err := s.ledger.Reconcile(ctx); err != nil {
			log.Printf("scheduler: startup reconciliation failed: %v", err)
		}
		s.runOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

// Stop shuts the scheduler down, letting an in-flight sweep finish its
// current batch. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func (s *Scheduler) runOnce(ctx context.Context) {
	completed, err := s.RunSweep(ctx)
	if err != nil {
		log.Printf("scheduler: sweep failed: %v", err)
		return
	}
	if completed > 0 {
		log.Printf("scheduler: completed %d expired investments", completed)
	}
}

// RunSweep matures every active investment past its expiry date. A
// failure on one investment does not stop the rest of the batch. The
// returned count is the number credited by this call, so a second
// immediate run reports zero.
func (s *Scheduler) RunSweep(ctx context.Context) (int, error) {
	metrics.SweepRunsTotal.Inc()

	expired, err := s.investments.ListExpired(ctx, time.Now())
	if err != nil {
		metrics.SweepErrorsTotal.Inc()
		return 0, err
	}

	completed := 0
	for i := range expired {
		_, err := s.ledger.CreditInvestment(ctx, expired[i].ID)
		if err != nil {
			// Losing the claim means someone else completed it; that is
			// the expected outcome of concurrent competition.
			if errors.Is(err, ledger.ErrAlreadyClaimed) || errors.Is(err, ledger.ErrNotClaimable) {
				continue
			}
			metrics.SweepErrorsTotal.Inc()
			log.Printf("scheduler: failed to credit investment %d: %v", expired[i].ID, err)
			continue
		}
		completed++
		metrics.SweepCompletedTotal.Inc()
	}
	return completed, nil
}
