package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"art-advisor/internal/domain"
	"art-advisor/internal/metrics"
)

// ResilientSource protege una fuente con circuit breaker, limite de ritmo y timeout por llamada.
type ResilientSource struct {
	inner   Source
	cb      *gobreaker.CircuitBreaker[[]domain.Candidate]
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger
}

// ResilienceConfig ajusta el envoltorio. Los ceros toman valores por defecto.
type ResilienceConfig struct {
	RatePerMinute int
	Timeout       time.Duration
	// Fallos consecutivos antes de abrir el circuito.
	MaxFailures uint32
	// Tiempo en abierto antes de pasar a half-open.
	OpenTimeout time.Duration
}

func NewResilientSource(inner Source, cfg ResilienceConfig, logger *zap.Logger) *ResilientSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 30
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 5 * time.Minute
	}

	name := inner.Name()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]domain.Candidate](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    10 * time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("source circuit breaker transition",
				zap.String("source", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	burst := cfg.RatePerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &ResilientSource{
		inner:   inner,
		cb:      cb,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), burst),
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

func (s *ResilientSource) Name() string { return s.inner.Name() }

func (s *ResilientSource) Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	name := s.inner.Name()
	if err := s.limiter.Wait(ctx); err != nil {
		metrics.SourceRequests.WithLabelValues(name, "rejected").Inc()
		return nil, fmt.Errorf("%w: %s rate limit: %w", domain.ErrSourceUnavailable, name, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	candidates, err := s.cb.Execute(func() ([]domain.Candidate, error) {
		return s.inner.Search(callCtx, query, limit)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.SourceRequests.WithLabelValues(name, "rejected").Inc()
			return nil, fmt.Errorf("%w: %s circuit: %w", domain.ErrSourceUnavailable, name, err)
		}
		metrics.SourceRequests.WithLabelValues(name, "failure").Inc()
		if !errors.Is(err, domain.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, name, err)
		}
		return nil, err
	}
	metrics.SourceRequests.WithLabelValues(name, "success").Inc()
	return candidates, nil
}

// State expone el estado actual del circuito.
func (s *ResilientSource) State() gobreaker.State {
	return s.cb.State()
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
