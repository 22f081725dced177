package services

import (
	"context"
	"time"

	"github.com/afterus/afterus-backend/internal/llm"
)

const pingTimeout = 2 * time.Second

// Health states
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Pinger is anything with a liveness probe, usually the database
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProviderStatser reports completion call metrics
type ProviderStatser interface {
	ProviderName() string
	Stats() map[string]llm.ProviderStats
}

// HealthStatus is the payload of the health endpoint
type HealthStatus struct {
	Status    string                       `json:"status"`
	Database  string                       `json:"database"`
	LastError string                       `json:"last_error,omitempty"`
	Provider  string                       `json:"provider"`
	Providers map[string]llm.ProviderStats `json:"providers"`
	CheckedAt time.Time                    `json:"checked_at"`
}

// HealthMonitor checks the database and reports provider metrics
type HealthMonitor struct {
	db        Pinger
	companion ProviderStatser
}

// NewHealthMonitor creates a new health monitor
func NewHealthMonitor(db Pinger, companion ProviderStatser) *HealthMonitor {
	return &HealthMonitor{db: db, companion: companion}
}

// Check probes the database. A failed ping degrades the service but the
// process stays up.
func (m *HealthMonitor) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusHealthy,
		Database:  StatusHealthy,
		Providers: map[string]llm.ProviderStats{},
		CheckedAt: time.Now().UTC(),
	}

	if m.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := m.db.Ping(pingCtx); err != nil {
			status.Status = StatusDegraded
			status.Database = "unreachable"
			status.LastError = err.Error()
		}
	}

	if m.companion != nil {
		status.Provider = m.companion.ProviderName()
		status.Providers = m.companion.Stats()
	}
	return status
}
