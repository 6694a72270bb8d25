package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"art-advisor/internal/domain"
	"art-advisor/internal/metrics"
	"art-advisor/internal/repository"
)

// FeedbackService aplica los likes y refuerza el perfil de gusto.
type FeedbackService struct {
	artworks repository.ArtworkRepository
	taste    repository.TasteRepository
	logger   *zap.Logger
}

func NewFeedbackService(artworks repository.ArtworkRepository, taste repository.TasteRepository, logger *zap.Logger) *FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackService{artworks: artworks, taste: taste, logger: logger}
}

// ToggleLike invierte el like y, si la obra queda marcada, suma 1 a cada uno de sus tags.
// Quitar un like nunca resta peso. Si el refuerzo falla el like ya quedo guardado:
// se registra el fallo y se devuelve el estado resultante sin error, para que un
// reintento del cliente no lo deshaga.
func (s *FeedbackService) ToggleLike(ctx context.Context, artworkID string) (bool, error) {
	artwork, err := s.artworks.ToggleLiked(ctx, artworkID)
	if err != nil {
		return false, err
	}
	metrics.LikesToggled.WithLabelValues(strconv.FormatBool(artwork.Liked)).Inc()

	if !artwork.Liked {
		return false, nil
	}
	tags := domain.NormalizeTags(artwork.Tags)
	if len(tags) == 0 {
		return true, nil
	}
	if err := s.taste.Reinforce(ctx, tags); err != nil {
		metrics.ReinforceFailures.Inc()
		s.logger.Error("taste reinforcement failed after like was saved",
			zap.String("artwork_id", artworkID),
			zap.Strings("tags", tags),
			zap.Error(err),
		)
		return true, nil
	}
	metrics.TagsReinforced.Add(float64(len(tags)))
	return true, nil
}

// Profile devuelve el perfil completo, de mayor a menor peso.
func (s *FeedbackService) Profile(ctx context.Context) ([]domain.TasteProfileEntry, error) {
	return s.taste.All(ctx)
}

// FeedForDate devuelve las obras curadas para el dia indicado.
func (s *FeedbackService) FeedForDate(ctx context.Context, date time.Time) ([]domain.Artwork, error) {
	return s.artworks.ListByDate(ctx, date)
}
