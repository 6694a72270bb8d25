package source

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"art-advisor/internal/domain"
	"art-advisor/internal/metrics"
)

type searchCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedSource guarda en Redis los resultados exitosos para no repetir cuota
// cuando una corrida se reintenta el mismo dia. Los errores de Redis no bloquean la busqueda.
type CachedSource struct {
	inner  Source
	cache  searchCache
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

func NewCachedSource(inner Source, client *redis.Client, ttl time.Duration, logger *zap.Logger) Source {
	if client == nil || ttl <= 0 {
		return inner
	}
	return newCachedSource(inner, client, ttl, logger)
}

func newCachedSource(inner Source, cache searchCache, ttl time.Duration, logger *zap.Logger) *CachedSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSource{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		prefix: "search:cache:",
		logger: logger,
	}
}

func (s *CachedSource) Name() string { return s.inner.Name() }

func (s *CachedSource) Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	key := s.key(query, limit)

	if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
		var cached []domain.Candidate
		if err := json.Unmarshal(raw, &cached); err == nil {
			metrics.SourceRequests.WithLabelValues(s.inner.Name(), "cache_hit").Inc()
			return cached, nil
		}
	} else if err != redis.Nil {
		s.logger.Warn("search cache read failed", zap.String("source", s.inner.Name()), zap.Error(err))
	}

	candidates, err := s.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return candidates, nil
	}

	payload, err := json.Marshal(candidates)
	if err != nil {
		return candidates, nil
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.Warn("search cache write failed", zap.String("source", s.inner.Name()), zap.Error(err))
	}
	return candidates, nil
}

func (s *CachedSource) key(query string, limit int) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%d", normalized, limit)))
	return s.prefix + s.inner.Name() + ":" + hex.EncodeToString(sum[:])
}
