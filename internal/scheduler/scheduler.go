package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"kost-service/internal/observability"
)

const jobTimeout = 30 * time.Second

// RoomCounter reports catalog size and availability.
type RoomCounter interface {
	RoomCounts(ctx context.Context) (total, available int, err error)
}

// Pinger checks a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthSetter receives the outcome of each health check.
type HealthSetter interface {
	SetServing(serving bool)
}

// Pruner evicts per-client state that has been idle for longer than idle.
type Pruner interface {
	Prune(idle time.Duration) int
}

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	rooms  RoomCounter
	db     Pinger
	health HealthSetter
	pruner Pruner
	idle   time.Duration
	logger *zap.Logger
}

func New(spec string, rooms RoomCounter, db Pinger, health HealthSetter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(),
		spec:   spec,
		rooms:  rooms,
		db:     db,
		health: health,
		logger: logger,
	}
}

// WithLimiterPruning adds a job evicting rate limiter buckets idle for longer than idle.
func (s *Scheduler) WithLimiterPruning(p Pruner, idle time.Duration) *Scheduler {
	s.pruner = p
	s.idle = idle
	return s
}

// Start registers the jobs, runs them once and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.refreshRoomGauges); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.spec, s.checkHealth); err != nil {
		return err
	}
	if s.pruner != nil && s.idle > 0 {
		if _, err := s.cron.AddFunc(s.spec, s.pruneLimiter); err != nil {
			return err
		}
	}
	s.refreshRoomGauges()
	s.checkHealth()
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) refreshRoomGauges() {
	if s.rooms == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	total, available, err := s.rooms.RoomCounts(ctx)
	if err != nil {
		s.logger.Warn("refresh room gauges", zap.Error(err))
		return
	}
	observability.SetRoomCounts(total, available)
}

func (s *Scheduler) checkHealth() {
	if s.db == nil || s.health == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	err := s.db.PingContext(ctx)
	if err != nil {
		s.logger.Warn("database ping failed", zap.Error(err))
	}
	s.health.SetServing(err == nil)
}

func (s *Scheduler) pruneLimiter() {
	if s.pruner == nil {
		return
	}
	if removed := s.pruner.Prune(s.idle); removed > 0 {
		s.logger.Debug("pruned idle rate limiters", zap.Int("removed", removed))
	}
}
