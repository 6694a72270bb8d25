package source

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"art-advisor/internal/domain"
	"art-advisor/internal/metrics"
)

const maxConcurrentSearches = 4

// Gather lanza cada busqueda (consulta, fuente) en paralelo y espera a todas.
// Una fuente que falla aporta cero candidatos; el resultado conserva el orden
// consulta por consulta, fuente por fuente, para que Merge sea deterministico.
func Gather(ctx context.Context, sources []Source, queries []string, limit int, logger *zap.Logger) [][]domain.Candidate {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([][]domain.Candidate, len(queries)*len(sources))

	var g errgroup.Group
	g.SetLimit(maxConcurrentSearches)
	for qi, query := range queries {
		for si, src := range sources {
			slot := qi*len(sources) + si
			query, src := query, src
			g.Go(func() error {
				candidates, err := src.Search(ctx, query, limit)
				if err != nil {
					logger.Warn("candidate source failed",
						zap.String("source", src.Name()),
						zap.String("query", query),
						zap.Error(err),
					)
					return nil
				}
				metrics.CandidatesFetched.WithLabelValues(src.Name()).Add(float64(len(candidates)))
				results[slot] = candidates
				return nil
			})
		}
	}
	_ = g.Wait()
	return results
}
