package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"art-advisor/internal/domain"
)

type ArtworkRepository interface {
	CreateBatch(ctx context.Context, artworks []domain.Artwork) ([]domain.Artwork, error)
	ListByDate(ctx context.Context, date time.Time) ([]domain.Artwork, error)
	GetByID(ctx context.Context, id string) (domain.Artwork, error)
	ToggleLiked(ctx context.Context, id string) (domain.Artwork, error)
}

type PgArtworkRepository struct {
	pool *pgxpool.Pool
}

func NewPgArtworkRepository(pool *pgxpool.Pool) *PgArtworkRepository {
	return &PgArtworkRepository{pool: pool}
}

// CreateBatch inserta todas las obras en una sola transaccion: o entran todas o ninguna.
func (r *PgArtworkRepository) CreateBatch(ctx context.Context, artworks []domain.Artwork) ([]domain.Artwork, error) {
	if len(artworks) == 0 {
		return nil, nil
	}
	const query = `
		INSERT INTO artworks (id, title, image_url, tags, display_date, liked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	prepared := prepareArtworks(artworks, time.Now().UTC())

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for _, a := range prepared {
		if _, err := tx.Exec(ctx, query,
			a.ID,
			a.Title,
			a.ImageURL,
			a.Tags,
			a.DisplayDate,
			a.Liked,
			a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("insert artwork %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return prepared, nil
}

func (r *PgArtworkRepository) ListByDate(ctx context.Context, date time.Time) ([]domain.Artwork, error) {
	const query = `
		SELECT id, title, image_url, tags, display_date, liked, created_at
		FROM artworks
		WHERE display_date = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, domain.DateOnly(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanArtworks(rows)
}

func (r *PgArtworkRepository) GetByID(ctx context.Context, id string) (domain.Artwork, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Artwork{}, domain.ErrArtworkNotFound
	}
	const query = `
		SELECT id, title, image_url, tags, display_date, liked, created_at
		FROM artworks
		WHERE id = $1
	`
	a, err := scanArtwork(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Artwork{}, domain.ErrArtworkNotFound
	}
	return a, err
}

// ToggleLiked invierte liked en una sola sentencia, sin carreras de lectura-escritura.
func (r *PgArtworkRepository) ToggleLiked(ctx context.Context, id string) (domain.Artwork, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Artwork{}, domain.ErrArtworkNotFound
	}
	const query = `
		UPDATE artworks
		SET liked = NOT liked
		WHERE id = $1
		RETURNING id, title, image_url, tags, display_date, liked, created_at
	`
	a, err := scanArtwork(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Artwork{}, domain.ErrArtworkNotFound
	}
	return a, err
}

func prepareArtworks(artworks []domain.Artwork, now time.Time) []domain.Artwork {
	out := make([]domain.Artwork, len(artworks))
	for i, a := range artworks {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.Tags == nil {
			a.Tags = []string{}
		}
		a.DisplayDate = domain.DateOnly(a.DisplayDate)
		out[i] = a
	}
	return out
}

func scanArtwork(row pgx.Row) (domain.Artwork, error) {
	var a domain.Artwork
	err := row.Scan(
		&a.ID,
		&a.Title,
		&a.ImageURL,
		&a.Tags,
		&a.DisplayDate,
		&a.Liked,
		&a.CreatedAt,
	)
	return a, err
}

func scanArtworks(rows pgxRows) ([]domain.Artwork, error) {
	artworks := []domain.Artwork{}
	for rows.Next() {
		a, err := scanArtwork(rows)
		if err != nil {
			return nil, err
		}
		artworks = append(artworks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return artworks, nil
}

// pgxRows is a minimal interface to allow scanning from pgx rows and simplify testing.
type pgxRows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
	Close()
}
