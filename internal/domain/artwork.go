package domain

import "time"

// Artwork es una obra curada para un dia concreto. Solo Liked cambia despues de creada.
type Artwork struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ImageURL    string    `json:"image_url"`
	Tags        []string  `json:"tags"`
	DisplayDate time.Time `json:"display_date"`
	Liked       bool      `json:"liked"`
	CreatedAt   time.Time `json:"created_at"`
}

// DateOnly trunca t al dia calendario en su propia zona horaria.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
