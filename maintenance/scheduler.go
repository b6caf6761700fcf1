package maintenance

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/finpulse/fincache/types"
)

type State int32

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
)

// Scheduler runs the engine's background jobs (TTL sweep, periodic
// snapshot persist) on fixed intervals. Jobs are registered before
// Start; a panicking job is recovered and logged, never fatal.
type Scheduler struct {
	logger          types.Logger
	cron            *cron.Cron
	jobs            map[string]cron.EntryID
	mu              sync.Mutex
	state           atomic.Value
	shutdownTimeout time.Duration
}

func NewScheduler(logger types.Logger) *Scheduler {
	cronLogger := schedulerLogger{logger: logger}

	s := &Scheduler{
		logger:          logger,
		cron:            cron.New(cron.WithChain(cron.Recover(cronLogger))),
		jobs:            make(map[string]cron.EntryID),
		shutdownTimeout: 10 * time.Second,
	}

	s.state.Store(StateStopped)

	return s
}

// Add registers a job to run every `interval`. Returns an error when the
// name is taken or the job is nil; intervals below a millisecond are
// rejected as configuration mistakes.
func (s *Scheduler) Add(name string, interval time.Duration, job func()) error {
	if name == "" {
		return types.ErrSchedulerJobNoName
	}
	if job == nil {
		return types.ErrSchedulerJobIsNil
	}
	if interval < time.Millisecond {
		return types.Errorf(types.ErrSchedulerBadInterval, "interval %s too short for job %s", interval, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return types.Errorf(types.ErrSchedulerJobExists, "job: %s", name)
	}

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), job)
	if err != nil {
		return types.WrapError(err, "failed to schedule job")
	}

	s.jobs[name] = id
	s.logger.Debug("Maintenance job registered",
		zap.String("job", name),
		zap.Duration("interval", interval))

	return nil
}

func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.jobs[name]; exists {
		s.cron.Remove(id)
		delete(s.jobs, name)
	}
}

func (s *Scheduler) Start() error {
	if !s.state.CompareAndSwap(StateStopped, StateStarting) {
		return types.ErrEngineAlreadyRunning
	}

	s.cron.Start()
	s.state.Store(StateRunning)

	s.mu.Lock()
	jobCount := len(s.jobs)
	s.mu.Unlock()

	s.logger.Info("Maintenance scheduler started", zap.Int("jobs", jobCount))
	return nil
}

func (s *Scheduler) Stop() error {
	if !s.state.CompareAndSwap(StateRunning, StateStopping) {
		return types.ErrEngineNotRunning
	}

	defer s.state.Store(StateStopped)

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Debug("Maintenance scheduler stopped")
	case <-time.After(s.shutdownTimeout):
		s.logger.Warn("Maintenance scheduler stop timeout, jobs may still be running")
	}

	return nil
}

func (s *Scheduler) IsRunning() bool {
	return s.state.Load().(State) == StateRunning
}

// schedulerLogger adapts types.Logger to cron's logging interface for
// the panic-recovery chain.
type schedulerLogger struct {
	logger types.Logger
}

func (l schedulerLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, zap.Any("details", keysAndValues))
}

func (l schedulerLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
