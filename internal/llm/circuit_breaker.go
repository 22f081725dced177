package llm

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrBreakerOpen is returned without calling through while a breaker is open
var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerState represents the circuit breaker state
type BreakerState int

const (
	StateClosed BreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerSettings tunes every breaker a CircuitBreaker creates
type BreakerSettings struct {
	FailureThreshold uint32
	SuccessThreshold uint32
	Cooldown         time.Duration
}

// DefaultBreakerSettings opens after five straight failures and probes
// again after thirty seconds
var DefaultBreakerSettings = BreakerSettings{
	FailureThreshold: 5,
	SuccessThreshold: 2,
	Cooldown:         30 * time.Second,
}

// CircuitBreaker keeps one breaker per key (provider name)
type CircuitBreaker struct {
	settings BreakerSettings
	logger   logrus.FieldLogger
	now      func() time.Time

	breakers map[string]*breaker
	mu       sync.Mutex
}

type breaker struct {
	failures    uint32
	successes   uint32
	lastFailure time.Time
	state       BreakerState
}

// NewCircuitBreaker creates a new circuit breaker. Zero settings fall back
// to DefaultBreakerSettings field by field.
func NewCircuitBreaker(settings BreakerSettings, logger logrus.FieldLogger) *CircuitBreaker {
	if settings.FailureThreshold == 0 {
		settings.FailureThreshold = DefaultBreakerSettings.FailureThreshold
	}
	if settings.SuccessThreshold == 0 {
		settings.SuccessThreshold = DefaultBreakerSettings.SuccessThreshold
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = DefaultBreakerSettings.Cooldown
	}
	return &CircuitBreaker{
		settings: settings,
		logger:   logger.WithField("component", "circuit_breaker"),
		now:      time.Now,
		breakers: make(map[string]*breaker),
	}
}

// Execute runs fn unless the breaker for key is open
func (cb *CircuitBreaker) Execute(key string, fn func() error) error {
	if cb.currentState(key) == StateOpen {
		return ErrBreakerOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	b := cb.get(key)
	if err != nil {
		cb.recordFailure(key, b)
	} else {
		cb.recordSuccess(key, b)
	}
	return err
}

// get must be called with cb.mu held
func (cb *CircuitBreaker) get(key string) *breaker {
	b, ok := cb.breakers[key]
	if !ok {
		b = &breaker{state: StateClosed}
		cb.breakers[key] = b
	}
	return b
}

func (cb *CircuitBreaker) currentState(key string) BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	b := cb.get(key)
	if b.state == StateOpen && cb.now().Sub(b.lastFailure) >= cb.settings.Cooldown {
		b.state = StateHalfOpen
		b.failures = 0
		b.successes = 0
		cb.logger.WithField("key", key).Info("Circuit breaker half-open, probing")
	}
	return b.state
}

func (cb *CircuitBreaker) recordFailure(key string, b *breaker) {
	b.failures++
	b.lastFailure = cb.now()

	switch b.state {
	case StateClosed:
		if b.failures >= cb.settings.FailureThreshold {
			b.state = StateOpen
			cb.logger.WithFields(logrus.Fields{"key": key, "failures": b.failures}).Warn("Opening circuit breaker")
		}
	case StateHalfOpen:
		b.state = StateOpen
		cb.logger.WithField("key", key).Warn("Re-opening circuit breaker after failed probe")
	}
}

func (cb *CircuitBreaker) recordSuccess(key string, b *breaker) {
	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.successes++
		if b.successes >= cb.settings.SuccessThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
			cb.logger.WithField("key", key).Info("Closing circuit breaker")
		}
	}
}

// GetState returns the state of a specific breaker
func (cb *CircuitBreaker) GetState(key string) BreakerState {
	return cb.currentState(key)
}

// Reset closes a specific breaker
func (cb *CircuitBreaker) Reset(key string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	delete(cb.breakers, key)
}
