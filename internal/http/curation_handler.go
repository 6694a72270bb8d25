package http

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"art-advisor/internal/domain"
	"art-advisor/internal/scheduler"
	"art-advisor/internal/service"
)

// CurationHandler permite a un operador pedir una corrida fuera de horario.
type CurationHandler struct {
	logger  *zap.Logger
	runner  scheduler.Submitter
	limiter service.TriggerRateLimiter
}

func NewCurationHandler(logger *zap.Logger, runner scheduler.Submitter, limiter service.TriggerRateLimiter) *CurationHandler {
	return &CurationHandler{
		logger:  logger,
		runner:  runner,
		limiter: limiter,
	}
}

// RunCuration maneja POST /curation/run. Responde 202 sin esperar la corrida.
func (h *CurationHandler) RunCuration(c *gin.Context) {
	claims, ok := GetAdminClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	if h.limiter != nil {
		decision := h.limiter.Allow(c.Request.Context(), claims.Operator)
		if !decision.Allowed {
			h.logger.Warn("manual curation rate limited",
				zap.String("operator", claims.Operator),
				zap.Duration("retry_after", decision.RetryAfter),
			)
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
	}

	h.runner.Submit(domain.TriggerManual)
	h.logger.Info("manual curation submitted", zap.String("operator", claims.Operator))
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
