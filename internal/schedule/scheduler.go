// Package schedule runs maintenance jobs on cron specs. A job that is still
// running when its next tick fires is skipped, not queued.
package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler interface {
	AddJob(job Job, spec string) error
	Start(ctx context.Context)
	Stop()
}

type CronScheduler struct {
	runner  *cron.Cron
	baseCtx atomic.Pointer[context.Context]
}

func NewCronScheduler() *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{
		runner: cron.New(cron.WithParser(parser)),
	}
}

func (s *CronScheduler) AddJob(job Job, spec string) error {
	entry := &jobEntry{job: job, spec: spec, scheduler: s}
	if _, err := s.runner.AddFunc(spec, entry.fire); err != nil {
		logutil.GetLogger(context.Background()).Error("schedule job failed",
			zap.String("job", job.Name()), zap.String("spec", spec), zap.Error(err))
		return err
	}
	logutil.GetLogger(context.Background()).Info("job scheduled",
		zap.String("job", job.Name()), zap.String("spec", spec))
	return nil
}

func (s *CronScheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.baseCtx.Store(&ctx)
	s.runner.Start()
}

// Stop halts the cron loop and waits for any in-flight job to finish.
func (s *CronScheduler) Stop() {
	<-s.runner.Stop().Done()
}

func (s *CronScheduler) context() context.Context {
	if ptr := s.baseCtx.Load(); ptr != nil {
		return *ptr
	}
	return context.Background()
}

type jobEntry struct {
	job       Job
	spec      string
	scheduler *CronScheduler
	running   atomic.Bool
}

func (e *jobEntry) fire() {
	ctx := e.scheduler.context()
	logger := logutil.GetLogger(ctx).With(
		zap.String("job", e.job.Name()),
		zap.String("spec", e.spec),
	)
	if !e.running.CompareAndSwap(false, true) {
		logger.Info("job skipped: still running")
		return
	}
	defer e.running.Store(false)

	start := time.Now()
	logger.Info("job started")
	err := e.job.Run(ctx)
	if err != nil {
		logger.Error("job finished", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return
	}
	logger.Info("job finished", zap.Duration("duration", time.Since(start)))
}
