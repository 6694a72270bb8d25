package source

import "art-advisor/internal/domain"

// Merge une las listas eliminando repetidos por SourceID.
// Gana la primera aparicion y se conserva el orden de llegada.
func Merge(lists ...[]domain.Candidate) []domain.Candidate {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	seen := make(map[string]struct{}, total)
	out := make([]domain.Candidate, 0, total)
	for _, l := range lists {
		for _, c := range l {
			if _, ok := seen[c.SourceID]; ok {
				continue
			}
			seen[c.SourceID] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
