package source

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"art-advisor/internal/config"
)

// FromConfig arma las fuentes habilitadas, cada una envuelta con cache y resiliencia.
// El orden es estable (google, artic) porque Merge da prioridad a la primera lista.
func FromConfig(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) ([]Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var raw []Source
	if cfg.GoogleAPIKey != "" {
		google, err := NewGoogleImageSource(ctx, cfg.GoogleAPIKey, cfg.SearchEngineID)
		if err != nil {
			return nil, fmt.Errorf("google source: %w", err)
		}
		raw = append(raw, google)
	}
	if cfg.ArticEnabled {
		raw = append(raw, NewArticSource(cfg.ArticBaseURL, WithDateRange(cfg.ArticDateStart, cfg.ArticDateEnd)))
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("no candidate source configured")
	}

	sources := make([]Source, 0, len(raw))
	for _, src := range raw {
		resilient := NewResilientSource(src, ResilienceConfig{
			RatePerMinute: cfg.SourceRatePerMinute,
			Timeout:       cfg.StageTimeout,
		}, logger)
		sources = append(sources, NewCachedSource(resilient, redisClient, cfg.SearchCacheTTL, logger))
		logger.Info("candidate source enabled", zap.String("source", src.Name()))
	}
	return sources, nil
}
