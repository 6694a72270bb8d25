package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"art-advisor/internal/domain"
	"art-advisor/internal/service"
)

// ArtworkHandler expone el feed diario, los likes y el perfil de gusto.
type ArtworkHandler struct {
	logger   *zap.Logger
	feedback *service.FeedbackService
	loc      *time.Location
	now      func() time.Time
}

// NewArtworkHandler usa loc para decidir que dia es "hoy", igual que el pipeline.
func NewArtworkHandler(logger *zap.Logger, feedback *service.FeedbackService, loc *time.Location) *ArtworkHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ArtworkHandler{
		logger:   logger,
		feedback: feedback,
		loc:      loc,
		now:      time.Now,
	}
}

// FeedToday maneja GET /feed/today.
func (h *ArtworkHandler) FeedToday(c *gin.Context) {
	today := domain.DateOnly(h.now().In(h.loc))
	artworks, err := h.feedback.FeedForDate(c.Request.Context(), today)
	if err != nil {
		h.logger.Error("list today feed failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load feed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":     today.Format("2006-01-02"),
		"artworks": artworks,
	})
}

// ToggleLike maneja POST /artworks/:id/like.
func (h *ArtworkHandler) ToggleLike(c *gin.Context) {
	id := c.Param("id")
	liked, err := h.feedback.ToggleLike(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrArtworkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "artwork not found"})
			return
		}
		h.logger.Error("toggle like failed", zap.String("artwork_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update like"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "liked": liked})
}

// Profile maneja GET /profile.
func (h *ArtworkHandler) Profile(c *gin.Context) {
	entries, err := h.feedback.Profile(c.Request.Context())
	if err != nil {
		h.logger.Error("read taste profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": entries})
}
