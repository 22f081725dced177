package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/afterus/afterus-backend/internal/audit"
	"github.com/afterus/afterus-backend/internal/auth"
	"github.com/afterus/afterus-backend/internal/companion"
	"github.com/afterus/afterus-backend/internal/config"
	"github.com/afterus/afterus-backend/internal/llm"
	"github.com/afterus/afterus-backend/internal/providers/factory"
	"github.com/afterus/afterus-backend/internal/repository"
	"github.com/afterus/afterus-backend/internal/repository/postgres"
)

// Repositories groups every store the services need
type Repositories struct {
	Users         repository.UserRepository
	Sessions      repository.UserSessionRepository
	Audit         repository.AuditRepository
	Chats         repository.ChatSessionRepository
	Messages      repository.MessageRepository
	Memories      repository.MemoryRepository
	NoContact     repository.NoContactRepository
	Activities    repository.ClosureActivityRepository
	Personalities repository.AIPersonalityRepository
	Journal       repository.JournalRepository
}

// NewPostgresRepositories builds the sqlx-backed stores
func NewPostgresRepositories(db *sqlx.DB) Repositories {
	return Repositories{
		Users:         postgres.NewUserRepository(db),
		Sessions:      postgres.NewUserSessionRepository(db),
		Audit:         postgres.NewAuditLogRepository(db),
		Chats:         postgres.NewChatSessionRepository(db),
		Messages:      postgres.NewMessageRepository(db),
		Memories:      postgres.NewMemoryRepository(db),
		NoContact:     postgres.NewNoContactDayRepository(db),
		Activities:    postgres.NewClosureActivityRepository(db),
		Personalities: postgres.NewAIPersonalityRepository(db),
		Journal:       postgres.NewJournalRepository(db),
	}
}

// Services holds all service instances
type Services struct {
	Auth        *auth.Service
	Audit       *audit.Service
	Chat        *ChatService
	Memory      *MemoryService
	Healing     *HealingService
	Journal     *JournalService
	Dashboard   *DashboardService
	Companion   *companion.Service
	Maintenance *Maintenance
	Health      *HealthMonitor
}

// NewServices wires every service. db may be nil, which reports the
// database as healthy without probing.
func NewServices(cfg *config.Config, repos Repositories, db Pinger, logger logrus.FieldLogger) (*Services, error) {
	auditSvc := audit.NewService(repos.Audit, logger)

	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	authSvc := auth.NewService(repos.Users, repos.Sessions, jwtService, logger)

	healingSvc := NewHealingService(repos.NoContact, repos.Activities, repos.Personalities, auditSvc, logger)
	authSvc.OnSignup(healingSvc.SeedDefaults)

	provider, err := factory.CreateProvider(cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("create ai provider: %w", err)
	}
	breaker := llm.NewCircuitBreaker(llm.BreakerSettings{
		FailureThreshold: uint32(max(cfg.AI.BreakerFailures, 0)),
		Cooldown:         cfg.AI.BreakerCooldown,
	}, logger)
	companionSvc := companion.NewService(companion.Stores{
		Chats:         repos.Chats,
		Messages:      repos.Messages,
		Personalities: repos.Personalities,
	}, provider, breaker, llm.NewMetricsCollector(), cfg.AI.Timeout, logger)

	chatSvc := NewChatService(repos.Chats, repos.Messages, auditSvc, logger)

	maintenance, err := NewMaintenance(cfg.Maintenance, authSvc, logger)
	if err != nil {
		return nil, err
	}
	err = maintenance.Register("insight_cache_purge", CachePurgeSchedule, func(context.Context) (int64, error) {
		return int64(chatSvc.PurgeInsights()), nil
	})
	if err != nil {
		return nil, err
	}
	if cfg.Maintenance.AuditPurgeSchedule != "" && cfg.Maintenance.AuditRetention > 0 {
		err = maintenance.Register("audit_purge", cfg.Maintenance.AuditPurgeSchedule, func(ctx context.Context) (int64, error) {
			return auditSvc.Purge(ctx, cfg.Maintenance.AuditRetention)
		})
		if err != nil {
			return nil, err
		}
	}

	return &Services{
		Auth:        authSvc,
		Audit:       auditSvc,
		Chat:        chatSvc,
		Memory:      NewMemoryService(repos.Memories, repos.Chats, repos.Messages, auditSvc, logger),
		Healing:     healingSvc,
		Journal:     NewJournalService(repos.Journal),
		Dashboard:   NewDashboardService(repos.Chats, repos.Messages, repos.Memories, repos.NoContact, repos.Activities),
		Companion:   companionSvc,
		Maintenance: maintenance,
		Health:      NewHealthMonitor(db, companionSvc),
	}, nil
}
