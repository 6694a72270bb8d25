package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"art-advisor/internal/domain"
)

// MemoryTasteRepository guarda el perfil en memoria (CLI en modo dry-run y tests).
type MemoryTasteRepository struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	seq     int
}

type memoryEntry struct {
	weight int
	order  int
}

func NewMemoryTasteRepository() *MemoryTasteRepository {
	return &MemoryTasteRepository{entries: make(map[string]*memoryEntry)}
}

func (r *MemoryTasteRepository) TopTags(_ context.Context, n int) ([]domain.TasteProfileEntry, error) {
	if n <= 0 {
		return []domain.TasteProfileEntry{}, nil
	}
	all := r.sorted()
	if len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (r *MemoryTasteRepository) All(_ context.Context) ([]domain.TasteProfileEntry, error) {
	return r.sorted(), nil
}

func (r *MemoryTasteRepository) Reinforce(_ context.Context, tags []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tag := range domain.NormalizeTags(tags) {
		if e, ok := r.entries[tag]; ok {
			e.weight++
			continue
		}
		r.seq++
		r.entries[tag] = &memoryEntry{weight: 1, order: r.seq}
	}
	return nil
}

func (r *MemoryTasteRepository) sorted() []domain.TasteProfileEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	type row struct {
		tag string
		*memoryEntry
	}
	rows := make([]row, 0, len(r.entries))
	for tag, e := range r.entries {
		rows = append(rows, row{tag: tag, memoryEntry: e})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].weight != rows[j].weight {
			return rows[i].weight > rows[j].weight
		}
		return rows[i].order < rows[j].order
	})

	out := make([]domain.TasteProfileEntry, 0, len(rows))
	for _, rw := range rows {
		out = append(out, domain.TasteProfileEntry{Tag: rw.tag, Weight: rw.weight})
	}
	return out
}

// MemoryArtworkRepository guarda obras en memoria.
type MemoryArtworkRepository struct {
	mu       sync.Mutex
	artworks []domain.Artwork
}

func NewMemoryArtworkRepository() *MemoryArtworkRepository {
	return &MemoryArtworkRepository{}
}

func (r *MemoryArtworkRepository) CreateBatch(_ context.Context, artworks []domain.Artwork) ([]domain.Artwork, error) {
	if len(artworks) == 0 {
		return nil, nil
	}
	prepared := prepareArtworks(artworks, time.Now().UTC())

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range prepared {
		r.artworks = append(r.artworks, cloneArtwork(a))
	}
	return prepared, nil
}

func (r *MemoryArtworkRepository) ListByDate(_ context.Context, date time.Time) ([]domain.Artwork, error) {
	day := domain.DateOnly(date)
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []domain.Artwork{}
	for _, a := range r.artworks {
		if sameDay(a.DisplayDate, day) {
			out = append(out, cloneArtwork(a))
		}
	}
	return out, nil
}

func (r *MemoryArtworkRepository) GetByID(_ context.Context, id string) (domain.Artwork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.artworks {
		if a.ID == id {
			return cloneArtwork(a), nil
		}
	}
	return domain.Artwork{}, domain.ErrArtworkNotFound
}

func (r *MemoryArtworkRepository) ToggleLiked(_ context.Context, id string) (domain.Artwork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.artworks {
		if r.artworks[i].ID == id {
			r.artworks[i].Liked = !r.artworks[i].Liked
			return cloneArtwork(r.artworks[i]), nil
		}
	}
	return domain.Artwork{}, domain.ErrArtworkNotFound
}

func cloneArtwork(a domain.Artwork) domain.Artwork {
	a.Tags = append([]string(nil), a.Tags...)
	return a
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
