package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"art-advisor/internal/domain"
	"art-advisor/internal/metrics"
	"art-advisor/internal/repository"
	"art-advisor/internal/source"
)

type PipelineConfig struct {
	TopTags       int
	SearchLimit   int
	MaxSelections int
	// Limite de cada etapa externa (busqueda, curaduria, persistencia).
	StageTimeout time.Duration
	Location     *time.Location
}

// Pipeline ejecuta una corrida de curaduria de punta a punta.
// Dos corridas simultaneas no se excluyen entre si: cada una persiste su propio lote.
type Pipeline struct {
	taste    repository.TasteRepository
	artworks repository.ArtworkRepository
	planner  QueryPlanner
	sources  []source.Source
	curator  Curator
	cfg      PipelineConfig
	now      func() time.Time
	logger   *zap.Logger
}

func NewPipeline(
	taste repository.TasteRepository,
	artworks repository.ArtworkRepository,
	planner QueryPlanner,
	sources []source.Source,
	curator Curator,
	cfg PipelineConfig,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TopTags <= 0 {
		cfg.TopTags = 3
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = 10
	}
	if cfg.MaxSelections <= 0 {
		cfg.MaxSelections = 10
	}
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = 2 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &Pipeline{
		taste:    taste,
		artworks: artworks,
		planner:  planner,
		sources:  sources,
		curator:  curator,
		cfg:      cfg,
		now:      time.Now,
		logger:   logger,
	}
}

// Run recorre Idle -> ReadingProfile -> SynthesizingQuery -> Fetching ->
// Deduplicating -> Curating -> Persisting -> Done, o termina en Failed.
// Un fallo en cualquier etapa deja la base sin cambios.
func (p *Pipeline) Run(ctx context.Context, trigger string) (domain.RunReport, error) {
	started := p.now()
	report := domain.RunReport{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		Date:      domain.DateOnly(started.In(p.cfg.Location)),
		State:     domain.RunIdle,
		StartedAt: started,
	}
	log := p.logger.With(
		zap.String("run_id", report.RunID),
		zap.String("trigger", trigger),
		zap.String("date", report.Date.Format("2006-01-02")),
	)
	log.Info("curation run started")

	err := p.run(ctx, &report, log)
	report.FinishedAt = p.now()
	if err != nil {
		report.State = domain.RunFailed
		report.Err = err
	} else {
		report.State = domain.RunDone
	}

	metrics.PipelineRuns.WithLabelValues(trigger, string(report.State)).Inc()
	metrics.PipelineDuration.Observe(report.Duration().Seconds())

	fields := []zap.Field{
		zap.String("state", string(report.State)),
		zap.Strings("queries", report.Queries),
		zap.Int("fetched", report.Fetched),
		zap.Int("unique", report.Unique),
		zap.Int("selected", report.Selected),
		zap.Int("persisted", report.Persisted),
		zap.Duration("duration", report.Duration()),
	}
	if err != nil {
		log.Error("curation run failed", append(fields, zap.Error(err))...)
		return report, err
	}
	log.Info("curation run finished", fields...)
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, report *domain.RunReport, log *zap.Logger) error {
	p.enter(report, domain.RunReadingProfile, log)
	entries, err := p.taste.TopTags(ctx, p.cfg.TopTags)
	if err != nil {
		return p.fail(report, fmt.Errorf("%w: %w", domain.ErrProfileReadFailed, err))
	}
	report.Tags = domain.TagNames(entries)

	p.enter(report, domain.RunSynthesizingQuery, log)
	synthCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	queries, err := p.planner.Queries(synthCtx, report.Tags)
	cancel()
	if err != nil {
		if !errors.Is(err, domain.ErrSynthesisFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrSynthesisFailed, err)
		}
		return p.fail(report, err)
	}
	report.Queries = queries

	p.enter(report, domain.RunFetching, log)
	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	lists := source.Gather(fetchCtx, p.sources, queries, p.cfg.SearchLimit, log)
	cancel()
	for _, l := range lists {
		report.Fetched += len(l)
	}

	p.enter(report, domain.RunDeduplicating, log)
	unique := source.Merge(lists...)
	report.Unique = len(unique)
	if len(unique) == 0 {
		log.Info("nothing to curate", zap.NamedError("reason", domain.ErrNoCandidatesFound))
		return nil
	}

	p.enter(report, domain.RunCurating, log)
	curateCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	selections, err := p.curator.Curate(curateCtx, unique, p.cfg.MaxSelections)
	cancel()
	if err != nil {
		if !errors.Is(err, domain.ErrCurationFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrCurationFailed, err)
		}
		return p.fail(report, err)
	}
	report.Selected = len(selections)

	p.enter(report, domain.RunPersisting, log)
	if len(selections) == 0 {
		return nil
	}
	artworks := make([]domain.Artwork, 0, len(selections))
	for _, sel := range selections {
		artworks = append(artworks, domain.Artwork{
			Title:       sel.Title,
			ImageURL:    sel.Candidate.ImageURL,
			Tags:        sel.Tags,
			DisplayDate: report.Date,
		})
	}
	persistCtx, cancel := context.WithTimeout(ctx, p.cfg.StageTimeout)
	saved, err := p.artworks.CreateBatch(persistCtx, artworks)
	cancel()
	if err != nil {
		return p.fail(report, fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err))
	}
	report.Persisted = len(saved)
	metrics.ArtworksPersisted.Add(float64(len(saved)))
	return nil
}

func (p *Pipeline) enter(report *domain.RunReport, state domain.RunState, log *zap.Logger) {
	report.State = state
	log.Debug("curation run state", zap.String("state", string(state)))
}

func (p *Pipeline) fail(report *domain.RunReport, err error) error {
	metrics.PipelineStageErrors.WithLabelValues(string(report.State)).Inc()
	return err
}
