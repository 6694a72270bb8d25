package domain

import "strings"

// Candidate es una obra traida de una fuente, todavia sin juzgar.
type Candidate struct {
	SourceID string   `json:"source_id"`
	Source   string   `json:"source"`
	Title    string   `json:"title,omitempty"`
	Artist   string   `json:"artist,omitempty"`
	ImageURL string   `json:"image_url"`
	PageURL  string   `json:"page_url,omitempty"`
	Terms    []string `json:"terms,omitempty"`
}

// HasImage indica si el candidato trae una referencia de imagen utilizable.
func (c Candidate) HasImage() bool {
	u := strings.TrimSpace(c.ImageURL)
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// Selection es un candidato aprobado y anotado por el curador.
type Selection struct {
	Candidate Candidate `json:"candidate"`
	Title     string    `json:"title"`
	Tags      []string  `json:"tags"`
}
