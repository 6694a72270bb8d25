package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"art-advisor/internal/config"
	"art-advisor/internal/domain"
	"art-advisor/internal/llm"
)

// Curator filtra y anota candidatos. Devuelve a lo sumo maxOut selecciones,
// cada una referida a un candidato concreto de la lista recibida.
type Curator interface {
	Curate(ctx context.Context, candidates []domain.Candidate, maxOut int) ([]domain.Selection, error)
}

// CuratorClient reune las capacidades del LLM que usan las dos estrategias.
type CuratorClient interface {
	llm.JSONClient
	llm.VisionClient
}

type CuratorOptions struct {
	// Tope de candidatos descritos en texto (modo metadata).
	MaxCandidates int
	// Tope de imagenes enviadas al modelo (modo vision).
	MaxImages     int
	TitleLanguage string
}

// NewCurator elige la estrategia segun CURATOR_MODE.
func NewCurator(mode string, client CuratorClient, opts CuratorOptions, logger *zap.Logger) (Curator, error) {
	switch mode {
	case config.CuratorModeVision, "":
		return NewVisionCurator(client, opts, logger), nil
	case config.CuratorModeMetadata:
		return NewMetadataCurator(client, opts, logger), nil
	default:
		return nil, fmt.Errorf("unknown curator mode %q", mode)
	}
}

// MetadataCurator juzga solo por titulo, artista y terminos de la fuente.
type MetadataCurator struct {
	llm    llm.JSONClient
	opts   CuratorOptions
	logger *zap.Logger
}

func NewMetadataCurator(client llm.JSONClient, opts CuratorOptions, logger *zap.Logger) *MetadataCurator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = 30
	}
	if opts.TitleLanguage == "" {
		opts.TitleLanguage = "português"
	}
	return &MetadataCurator{llm: client, opts: opts, logger: logger}
}

func (c *MetadataCurator) Curate(ctx context.Context, candidates []domain.Candidate, maxOut int) ([]domain.Selection, error) {
	pool := boundCandidates(candidates, c.opts.MaxCandidates)
	if len(pool) == 0 || maxOut <= 0 {
		return []domain.Selection{}, nil
	}

	raw, err := c.llm.GenerateJSON(ctx, c.buildPrompt(pool, maxOut))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCurationFailed, err)
	}
	selections, err := parseCuratorResponse(raw, pool, maxOut)
	if err != nil {
		c.logger.Warn("curator response rejected", zap.Error(err), zap.Int("raw_len", len(raw)))
		return nil, err
	}
	c.logger.Info("metadata curator approved artworks",
		zap.Int("candidates", len(pool)),
		zap.Int("selected", len(selections)),
	)
	return selections, nil
}

func (c *MetadataCurator) buildPrompt(pool []domain.Candidate, maxOut int) string {
	var b strings.Builder
	b.WriteString("You are an elite art curator. Below is a numbered list of artwork candidates described by their metadata.\n")
	fmt.Fprintf(&b, "Choose at most %d that are real physical paintings. Discard digital art, photographs of people, prints of empty frames and anything that is not a painting.\n", maxOut)
	writeCuratorContract(&b, c.opts.TitleLanguage)
	b.WriteString("\nCandidates:\n")
	for i, cand := range pool {
		fmt.Fprintf(&b, "[%d] title=%q", i, cand.Title)
		if cand.Artist != "" {
			fmt.Fprintf(&b, " artist=%q", cand.Artist)
		}
		if len(cand.Terms) > 0 {
			fmt.Fprintf(&b, " terms=%q", strings.Join(cand.Terms, ", "))
		}
		fmt.Fprintf(&b, " source=%s\n", cand.Source)
	}
	return b.String()
}

// VisionCurator envia las imagenes al modelo multimodal.
type VisionCurator struct {
	llm    llm.VisionClient
	opts   CuratorOptions
	logger *zap.Logger
}

func NewVisionCurator(client llm.VisionClient, opts CuratorOptions, logger *zap.Logger) *VisionCurator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxImages <= 0 {
		opts.MaxImages = 10
	}
	if opts.TitleLanguage == "" {
		opts.TitleLanguage = "português"
	}
	return &VisionCurator{llm: client, opts: opts, logger: logger}
}

func (c *VisionCurator) Curate(ctx context.Context, candidates []domain.Candidate, maxOut int) ([]domain.Selection, error) {
	pool := boundCandidates(candidates, c.opts.MaxImages)
	if len(pool) == 0 || maxOut <= 0 {
		return []domain.Selection{}, nil
	}

	urls := make([]string, len(pool))
	for i, cand := range pool {
		urls[i] = cand.ImageURL
	}

	raw, err := c.llm.GenerateWithImages(ctx, c.buildPrompt(len(pool), maxOut), urls)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCurationFailed, err)
	}
	selections, err := parseCuratorResponse(raw, pool, maxOut)
	if err != nil {
		c.logger.Warn("curator response rejected", zap.Error(err), zap.Int("raw_len", len(raw)))
		return nil, err
	}
	c.logger.Info("vision curator approved artworks",
		zap.Int("images", len(pool)),
		zap.Int("selected", len(selections)),
	)
	return selections, nil
}

func (c *VisionCurator) buildPrompt(images, maxOut int) string {
	var b strings.Builder
	b.WriteString("You are an elite art curator. Analyse each image.\n")
	fmt.Fprintf(&b, "The %d images are numbered in the order they were sent, starting at 0.\n", images)
	fmt.Fprintf(&b, "Keep ONLY the best real physical paintings, at most %d. Discard digital art, photos of people and empty frames.\n", maxOut)
	writeCuratorContract(&b, c.opts.TitleLanguage)
	return b.String()
}

func writeCuratorContract(b *strings.Builder, language string) {
	b.WriteString("Return a JSON object with the key \"artworks\": a list where each approved item has\n")
	b.WriteString("\"index\" (the candidate number), ")
	fmt.Fprintf(b, "\"title\" (a creative title in %s) and ", language)
	b.WriteString("\"tags\" (exactly 3 style or colour keywords, e.g. [\"impasto\", \"abstract\", \"blue\"]).\n")
	b.WriteString("If nothing qualifies return {\"artworks\": []}.\n")
}

func boundCandidates(candidates []domain.Candidate, max int) []domain.Candidate {
	if max > 0 && len(candidates) > max {
		return candidates[:max]
	}
	return candidates
}
