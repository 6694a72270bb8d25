package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"art-advisor/internal/domain"
)

type TasteRepository interface {
	TopTags(ctx context.Context, n int) ([]domain.TasteProfileEntry, error)
	All(ctx context.Context) ([]domain.TasteProfileEntry, error)
	Reinforce(ctx context.Context, tags []string) error
}

type PgTasteRepository struct {
	pool *pgxpool.Pool
}

func NewPgTasteRepository(pool *pgxpool.Pool) *PgTasteRepository {
	return &PgTasteRepository{pool: pool}
}

// TopTags devuelve hasta n tags por peso descendente; empates por orden de insercion.
func (r *PgTasteRepository) TopTags(ctx context.Context, n int) ([]domain.TasteProfileEntry, error) {
	if n <= 0 {
		return []domain.TasteProfileEntry{}, nil
	}
	const query = `
		SELECT tag, weight
		FROM taste_profile
		ORDER BY weight DESC, id ASC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (r *PgTasteRepository) All(ctx context.Context) ([]domain.TasteProfileEntry, error) {
	const query = `
		SELECT tag, weight
		FROM taste_profile
		ORDER BY weight DESC, id ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Reinforce suma 1 al peso de cada tag (o lo crea con peso 1).
// Cada tag se confirma por separado; el incremento ocurre dentro de la sentencia.
func (r *PgTasteRepository) Reinforce(ctx context.Context, tags []string) error {
	const query = `
		INSERT INTO taste_profile (tag, weight, created_at, updated_at)
		VALUES ($1, 1, now(), now())
		ON CONFLICT (tag)
		DO UPDATE SET
			weight = taste_profile.weight + 1,
			updated_at = now()
	`
	for _, tag := range domain.NormalizeTags(tags) {
		if _, err := r.pool.Exec(ctx, query, tag); err != nil {
			return fmt.Errorf("reinforce tag %q: %w", tag, err)
		}
	}
	return nil
}

func scanEntries(rows pgxRows) ([]domain.TasteProfileEntry, error) {
	entries := []domain.TasteProfileEntry{}
	for rows.Next() {
		var e domain.TasteProfileEntry
		if err := rows.Scan(&e.Tag, &e.Weight); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
