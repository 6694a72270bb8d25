package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"art-advisor/internal/domain"
	"art-advisor/internal/llm"
	"art-advisor/internal/repository"
	"art-advisor/internal/source"
)

type stubSource struct {
	name    string
	results []domain.Candidate
	err     error
	queries []string
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

type stubPlanner struct {
	queries []string
	err     error
	gotTags []string
}

func (p *stubPlanner) Queries(ctx context.Context, tags []string) ([]string, error) {
	p.gotTags = tags
	return p.queries, p.err
}

type stubCurator struct {
	err      error
	calls    int
	gotInput []domain.Candidate
}

func (c *stubCurator) Curate(ctx context.Context, candidates []domain.Candidate, maxOut int) ([]domain.Selection, error) {
	c.calls++
	c.gotInput = candidates
	if c.err != nil {
		return nil, c.err
	}
	var out []domain.Selection
	for i, cand := range candidates {
		if i >= maxOut {
			break
		}
		out = append(out, domain.Selection{
			Candidate: cand,
			Title:     "Obra " + cand.SourceID,
			Tags:      []string{"impasto", "abstract", "blue"},
		})
	}
	return out, nil
}

type failingTasteRepo struct {
	repository.MemoryTasteRepository
}

func (f *failingTasteRepo) TopTags(ctx context.Context, n int) ([]domain.TasteProfileEntry, error) {
	return nil, errors.New("connection refused")
}

type failingArtworkRepo struct {
	*repository.MemoryArtworkRepository
}

func (f failingArtworkRepo) CreateBatch(ctx context.Context, artworks []domain.Artwork) ([]domain.Artwork, error) {
	return nil, errors.New("unique violation")
}

func pipelineCandidates(ids ...string) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Candidate{SourceID: id, Source: "stub", ImageURL: "https://img.example.com/" + id + ".jpg"})
	}
	return out
}

func newTestPipeline(
	taste repository.TasteRepository,
	artworks repository.ArtworkRepository,
	planner QueryPlanner,
	sources []source.Source,
	curator Curator,
) *Pipeline {
	p := NewPipeline(taste, artworks, planner, sources, curator, PipelineConfig{
		TopTags:       3,
		SearchLimit:   10,
		MaxSelections: 10,
		StageTimeout:  time.Second,
		Location:      time.UTC,
	}, zap.NewNop())
	p.now = func() time.Time { return time.Date(2026, 3, 14, 4, 0, 0, 0, time.UTC) }
	return p
}

func TestPipelineHappyPathDedupesAndPersists(t *testing.T) {
	taste := repository.NewMemoryTasteRepository()
	_ = taste.Reinforce(context.Background(), []string{"impasto", "blue"})
	_ = taste.Reinforce(context.Background(), []string{"impasto"})
	artworks := repository.NewMemoryArtworkRepository()

	planner := &stubPlanner{queries: []string{"q1", "q2"}}
	a := &stubSource{name: "a", results: pipelineCandidates("x", "y")}
	b := &stubSource{name: "b", results: pipelineCandidates("y", "z")}
	curator := &stubCurator{}

	report, err := newTestPipeline(taste, artworks, planner, []source.Source{a, b}, curator).
		Run(context.Background(), domain.TriggerManual)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.State != domain.RunDone {
		t.Fatalf("expected done, got %s", report.State)
	}
	if len(planner.gotTags) != 2 || planner.gotTags[0] != "impasto" {
		t.Fatalf("expected tags by weight, got %v", planner.gotTags)
	}
	if report.Fetched != 8 || report.Unique != 3 {
		t.Fatalf("expected fetched=8 unique=3, got %d/%d", report.Fetched, report.Unique)
	}
	if len(curator.gotInput) != 3 {
		t.Fatalf("curator must receive deduplicated candidates, got %d", len(curator.gotInput))
	}
	if report.Persisted != 3 {
		t.Fatalf("expected 3 persisted, got %d", report.Persisted)
	}

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	saved, _ := artworks.ListByDate(context.Background(), day)
	if len(saved) != 3 {
		t.Fatalf("expected 3 artworks for the run date, got %d", len(saved))
	}
	for _, art := range saved {
		if art.Liked || art.ID == "" || len(art.Tags) != 3 {
			t.Fatalf("unexpected stored artwork %+v", art)
		}
	}
}

func TestPipelineZeroCandidatesIsDone(t *testing.T) {
	artworks := repository.NewMemoryArtworkRepository()
	curator := &stubCurator{}
	broken := &stubSource{name: "broken", err: domain.ErrSourceUnavailable}
	empty := &stubSource{name: "empty"}

	report, err := newTestPipeline(repository.NewMemoryTasteRepository(), artworks,
		&stubPlanner{queries: []string{DefaultSearchQuery}}, []source.Source{broken, empty}, curator).
		Run(context.Background(), domain.TriggerSchedule)
	if err != nil {
		t.Fatalf("zero candidates must not fail the run, got %v", err)
	}
	if report.State != domain.RunDone || report.Persisted != 0 {
		t.Fatalf("expected done with nothing persisted, got %+v", report)
	}
	if curator.calls != 0 {
		t.Fatalf("curator must not be called without candidates")
	}
}

func TestPipelineCurationTransportErrorPersistsNothing(t *testing.T) {
	artworks := repository.NewMemoryArtworkRepository()
	vision := NewVisionCurator(&llm.MockClient{Err: fmt.Errorf("%w: timeout", llm.ErrTransport)}, CuratorOptions{}, nil)
	src := &stubSource{name: "a", results: pipelineCandidates("x", "y", "z")}

	report, err := newTestPipeline(repository.NewMemoryTasteRepository(), artworks,
		&stubPlanner{queries: []string{"q"}}, []source.Source{src}, vision).
		Run(context.Background(), domain.TriggerManual)
	if !errors.Is(err, domain.ErrCurationFailed) {
		t.Fatalf("expected ErrCurationFailed, got %v", err)
	}
	if report.State != domain.RunFailed || report.Persisted != 0 {
		t.Fatalf("expected failed run with nothing persisted, got %+v", report)
	}
	saved, _ := artworks.ListByDate(context.Background(), time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC))
	if len(saved) != 0 {
		t.Fatalf("expected no artworks, got %d", len(saved))
	}
}

func TestPipelineSynthesisFailureStopsBeforeFetching(t *testing.T) {
	src := &stubSource{name: "a", results: pipelineCandidates("x")}
	_, err := newTestPipeline(repository.NewMemoryTasteRepository(), repository.NewMemoryArtworkRepository(),
		&stubPlanner{err: errors.New("llm down")}, []source.Source{src}, &stubCurator{}).
		Run(context.Background(), domain.TriggerManual)
	if !errors.Is(err, domain.ErrSynthesisFailed) {
		t.Fatalf("expected ErrSynthesisFailed, got %v", err)
	}
	if len(src.queries) != 0 {
		t.Fatalf("sources must not be queried after synthesis failure")
	}
}

func TestPipelineProfileReadFailure(t *testing.T) {
	planner := &stubPlanner{queries: []string{"q"}}
	report, err := newTestPipeline(&failingTasteRepo{}, repository.NewMemoryArtworkRepository(),
		planner, nil, &stubCurator{}).
		Run(context.Background(), domain.TriggerManual)
	if !errors.Is(err, domain.ErrProfileReadFailed) {
		t.Fatalf("expected ErrProfileReadFailed, got %v", err)
	}
	if report.State != domain.RunFailed || planner.gotTags != nil {
		t.Fatalf("expected failure before synthesis, got %+v", report)
	}
}

func TestPipelinePersistenceFailure(t *testing.T) {
	artworks := failingArtworkRepo{repository.NewMemoryArtworkRepository()}
	src := &stubSource{name: "a", results: pipelineCandidates("x")}

	report, err := newTestPipeline(repository.NewMemoryTasteRepository(), artworks,
		&stubPlanner{queries: []string{"q"}}, []source.Source{src}, &stubCurator{}).
		Run(context.Background(), domain.TriggerManual)
	if !errors.Is(err, domain.ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}
	if report.Selected != 1 || report.Persisted != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestPipelineRunDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	artworks := repository.NewMemoryArtworkRepository()
	src := &stubSource{name: "a", results: pipelineCandidates("x")}

	p := newTestPipeline(repository.NewMemoryTasteRepository(), artworks,
		&stubPlanner{queries: []string{"q"}}, []source.Source{src}, &stubCurator{})
	p.cfg.Location = loc
	p.now = func() time.Time { return time.Date(2026, 3, 15, 1, 30, 0, 0, time.UTC) }

	report, err := p.Run(context.Background(), domain.TriggerCLI)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	y, m, d := report.Date.Date()
	if y != 2026 || m != time.March || d != 14 {
		t.Fatalf("expected run date 2026-03-14 in UTC-3, got %s", report.Date)
	}
}
