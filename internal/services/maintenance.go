package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/afterus/afterus-backend/internal/config"
)

const jobTimeout = time.Minute

// CachePurgeSchedule is how often expired cache entries are dropped
const CachePurgeSchedule = "@every 10m"

// SessionCleaner removes auth sessions that can no longer be used
type SessionCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// Job is one housekeeping task. The returned count is logged.
type Job func(ctx context.Context) (int64, error)

// Maintenance runs periodic housekeeping jobs
type Maintenance struct {
	cron   *cron.Cron
	jobs   map[string]Job
	logger logrus.FieldLogger
}

// NewMaintenance creates a scheduler with the session cleanup job from cfg.
// An empty schedule disables that job.
func NewMaintenance(cfg config.MaintenanceConfig, cleaner SessionCleaner, logger logrus.FieldLogger) (*Maintenance, error) {
	m := &Maintenance{
		cron:   cron.New(),
		jobs:   make(map[string]Job),
		logger: logger.WithField("component", "maintenance"),
	}

	if cfg.SessionCleanupSchedule != "" {
		if err := m.Register("session_cleanup", cfg.SessionCleanupSchedule, cleaner.CleanupExpiredSessions); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Register schedules job under name
func (m *Maintenance) Register(name, schedule string, job Job) error {
	if _, err := m.cron.AddFunc(schedule, func() { m.run(name, job) }); err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", schedule, name, err)
	}
	m.jobs[name] = job
	return nil
}

// Start runs the scheduler in its own goroutine
func (m *Maintenance) Start() {
	m.cron.Start()
	m.logger.WithField("jobs", len(m.jobs)).Info("Maintenance scheduler started")
}

// Stop halts the scheduler and waits for a running job or ctx
func (m *Maintenance) Stop(ctx context.Context) {
	select {
	case <-m.cron.Stop().Done():
	case <-ctx.Done():
		m.logger.Warn("Maintenance job still running at shutdown")
	}
}

// RunNow runs a registered job immediately
func (m *Maintenance) RunNow(ctx context.Context, name string) (int64, error) {
	job, ok := m.jobs[name]
	if !ok {
		return 0, fmt.Errorf("unknown maintenance job %q", name)
	}
	return job(ctx)
}

func (m *Maintenance) run(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	log := m.logger.WithField("job", name)
	start := time.Now()
	n, err := job(ctx)
	if err != nil {
		log.WithError(err).Error("Maintenance job failed")
		return
	}
	log.WithFields(logrus.Fields{
		"affected": n,
		"duration": time.Since(start).String(),
	}).Info("Maintenance job finished")
}
