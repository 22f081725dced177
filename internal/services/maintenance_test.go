package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afterus/afterus-backend/internal/config"
	"github.com/afterus/afterus-backend/internal/testutil"
)

type cleanerFunc func(ctx context.Context) (int64, error)

func (f cleanerFunc) CleanupExpiredSessions(ctx context.Context) (int64, error) { return f(ctx) }

func TestMaintenance_RunNow(t *testing.T) {
	logger, hook := testutil.Logger()
	calls := 0
	cleaner := cleanerFunc(func(context.Context) (int64, error) {
		calls++
		return 3, nil
	})

	m, err := NewMaintenance(config.MaintenanceConfig{SessionCleanupSchedule: "0 3 * * *"}, cleaner, logger)
	require.NoError(t, err)

	n, err := m.RunNow(context.Background(), "session_cleanup")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 1, calls)

	_, err = m.RunNow(context.Background(), "missing")
	assert.Error(t, err)

	m.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	m.Stop(ctx)
	assert.Equal(t, "Maintenance scheduler started", hook.AllEntries()[0].Message)
}

func TestMaintenance_JobErrorsAreLogged(t *testing.T) {
	logger, hook := testutil.Logger()
	m, err := NewMaintenance(config.MaintenanceConfig{}, nil, logger)
	require.NoError(t, err)

	require.NoError(t, m.Register("broken", "@every 1h", func(context.Context) (int64, error) {
		return 0, errors.New("db down")
	}))
	m.run("broken", m.jobs["broken"])

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Maintenance job failed", entry.Message)
	assert.Equal(t, "broken", entry.Data["job"])
}

func TestMaintenance_InvalidSchedule(t *testing.T) {
	logger, _ := testutil.Logger()
	_, err := NewMaintenance(config.MaintenanceConfig{SessionCleanupSchedule: "every day"}, cleanerFunc(nil), logger)
	assert.Error(t, err)
}
