package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"art-advisor/internal/domain"
	"art-advisor/internal/llm"
)

// DefaultSearchQuery es la estetica inicial cuando el perfil todavia esta vacio.
const DefaultSearchQuery = "contemporary heavy texture abstract painting"

const themedInstruction = " Favor contemporary and emerging artists over historical masters."

// themedQueries es la lista curada de donde sale la consulta secundaria.
var themedQueries = []string{
	"emerging contemporary painter impasto canvas",
	"contemporary abstract expressionism oil on canvas",
	"young artist textured acrylic painting gallery",
	"contemporary colour field painting exhibition",
	"emerging artist mixed media abstract canvas",
	"contemporary gestural abstraction large canvas",
}

// QueryPlanner produce las consultas de busqueda de una corrida.
type QueryPlanner interface {
	Queries(ctx context.Context, tags []string) ([]string, error)
}

// QuerySynthesizer traduce los tags preferidos en un termino de busqueda usando el LLM.
type QuerySynthesizer struct {
	llm    llm.LLMClient
	themed bool
	pick   func(n int) int
	logger *zap.Logger
}

func NewQuerySynthesizer(client llm.LLMClient, themed bool, logger *zap.Logger) *QuerySynthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuerySynthesizer{
		llm:    client,
		themed: themed,
		pick:   rand.IntN,
		logger: logger,
	}
}

// Synthesize devuelve una consulta para los tags dados. Sin tags no llama al LLM.
func (s *QuerySynthesizer) Synthesize(ctx context.Context, tags []string) (string, error) {
	if len(tags) == 0 {
		return DefaultSearchQuery, nil
	}

	raw, err := s.llm.Generate(ctx, s.buildPrompt(tags))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrSynthesisFailed, err)
	}
	query := sanitizeQuery(raw)
	if query == "" {
		return "", fmt.Errorf("%w: empty query from model", domain.ErrSynthesisFailed)
	}
	s.logger.Debug("query synthesized", zap.Strings("tags", tags), zap.String("query", query))
	return query, nil
}

// Queries devuelve la consulta principal y, en modo tematico, una secundaria
// tomada al azar de la lista curada.
func (s *QuerySynthesizer) Queries(ctx context.Context, tags []string) ([]string, error) {
	primary, err := s.Synthesize(ctx, tags)
	if err != nil {
		return nil, err
	}
	queries := []string{primary}
	if !s.themed || len(themedQueries) == 0 {
		return queries, nil
	}
	secondary := themedQueries[s.pick(len(themedQueries))]
	if !strings.EqualFold(secondary, primary) {
		queries = append(queries, secondary)
	}
	return queries, nil
}

func (s *QuerySynthesizer) buildPrompt(tags []string) string {
	var b strings.Builder
	b.WriteString("Create a short English search term for Google Images focused on these art styles: ")
	b.WriteString(strings.Join(tags, ", "))
	b.WriteString(".")
	if s.themed {
		b.WriteString(themedInstruction)
	}
	b.WriteString(" Return ONLY the term, without quotes or explanations.")
	return b.String()
}

// sanitizeQuery toma la primera linea no vacia y elimina comillas.
func sanitizeQuery(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', '`', '“', '”', '‘', '’', '«', '»':
			return -1
		}
		return r
	}, raw)
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			return line
		}
	}
	return ""
}
