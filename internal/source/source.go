// Package source agrupa los adaptadores que buscan candidatos en fuentes externas.
package source

import (
	"context"

	"art-advisor/internal/domain"
)

// Source busca obras candidatas para una consulta.
// Una respuesta no exitosa devuelve un error envolviendo domain.ErrSourceUnavailable;
// cero resultados es una lista vacia sin error.
type Source interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error)
}

// keepUsable descarta candidatos sin imagen: sin carga visual no hay candidato.
func keepUsable(candidates []domain.Candidate) []domain.Candidate {
	out := candidates[:0]
	for _, c := range candidates {
		if c.SourceID == "" || !c.HasImage() {
			continue
		}
		out = append(out, c)
	}
	return out
}
