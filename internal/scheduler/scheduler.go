package scheduler

import (
	"context"
	"fmt"
	"time"

	"klinebot/internal/logger"
)

// AlignedScheduler runs a task at every Interval boundary (UTC) plus Offset.
type AlignedScheduler struct {
	Name           string
	Interval       time.Duration
	Offset         time.Duration
	RunImmediately bool

	nowFn func() time.Time
}

func NewAlignedScheduler(name string, interval, offset time.Duration) *AlignedScheduler {
	return &AlignedScheduler{
		Name:     name,
		Interval: interval,
		Offset:   offset,
		nowFn:    time.Now,
	}
}

// Run blocks until ctx is done. Task errors are logged and do not stop the
// schedule.
func (s *AlignedScheduler) Run(ctx context.Context, task func(context.Context) error) error {
	if task == nil {
		return fmt.Errorf("scheduler %s: task is nil", s.Name)
	}
	if s.Interval <= 0 {
		return fmt.Errorf("scheduler %s: invalid interval=%s", s.Name, s.Interval)
	}
	if s.Offset < 0 {
		logger.Warnf("scheduler %s: negative offset=%s, clamp to 0", s.Name, s.Offset)
		s.Offset = 0
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}
	startAt := s.nowFn().UTC()
	logger.Infof("scheduler %s: started interval=%s offset=%s run_immediately=%v at=%s",
		s.Name, s.Interval, s.Offset, s.RunImmediately, startAt.Format(time.RFC3339))

	if s.RunImmediately {
		s.runTask(ctx, task)
	}
	for {
		now := s.nowFn().UTC()
		wakeAt := s.NextRun(now)
		logger.Infof("scheduler %s: next run at %s (in %s) | uptime=%s",
			s.Name, wakeAt.Format(time.RFC3339), wakeAt.Sub(now).Truncate(time.Second), now.Sub(startAt).Truncate(time.Second))
		if !waitUntil(ctx, wakeAt.Sub(now)) {
			logger.Infof("scheduler %s: ctx done, exit", s.Name)
			return ctx.Err()
		}
		s.runTask(ctx, task)
	}
}

// NextRun returns the first boundary-plus-offset strictly after now.
func (s *AlignedScheduler) NextRun(now time.Time) time.Time {
	now = now.UTC()
	wakeAt := now.Truncate(s.Interval).Add(s.Offset)
	for !wakeAt.After(now) {
		wakeAt = wakeAt.Add(s.Interval)
	}
	return wakeAt
}

func (s *AlignedScheduler) runTask(ctx context.Context, task func(context.Context) error) {
	if err := task(ctx); err != nil {
		logger.Errorf("scheduler %s: task failed: %v", s.Name, err)
	}
}

func waitUntil(ctx context.Context, wait time.Duration) bool {
	if wait <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
