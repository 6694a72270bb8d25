package source

import (
	"context"
	"sync"

	"art-advisor/internal/domain"
)

type fakeSource struct {
	name    string
	results map[string][]domain.Candidate
	err     error

	mu    sync.Mutex
	calls []string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Search(ctx context.Context, query string, limit int) ([]domain.Candidate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func cand(id string) domain.Candidate {
	return domain.Candidate{SourceID: id, Source: "fake", ImageURL: "https://img.example.com/" + id + ".jpg"}
}
