package domain

import "strings"

// TasteProfileEntry es la memoria de gusto: tag normalizado -> peso acumulado.
type TasteProfileEntry struct {
	Tag    string `json:"tag"`
	Weight int    `json:"weight"`
}

// NormalizeTag deja el tag en minusculas y sin espacios alrededor.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags normaliza, descarta vacios y elimina repetidos conservando el orden.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// TagNames extrae solo los nombres de una lista de entradas.
func TagNames(entries []TasteProfileEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Tag)
	}
	return names
}
