// Package supervisor arma el arbol de servicios supervisados del proceso.
package supervisor

import (
	"context"
	"time"

	"github.com/thejerf/suture/v4"
	"go.uber.org/zap"
)

// NewTree crea el supervisor raiz. Los eventos de suture (reinicios, backoff) se registran con zap.
func NewTree(name string, logger *zap.Logger) *suture.Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return suture.New(name, suture.Spec{
		EventHook:        eventHook(logger),
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          15 * time.Second,
	})
}

func eventHook(logger *zap.Logger) suture.EventHook {
	return func(e suture.Event) {
		fields := []zap.Field{zap.Int("event_type", int(e.Type()))}
		for k, v := range e.Map() {
			fields = append(fields, zap.Any(k, v))
		}
		switch e.Type() {
		case suture.EventTypeServicePanic, suture.EventTypeServiceTerminate:
			logger.Error(e.String(), fields...)
		default:
			logger.Warn(e.String(), fields...)
		}
	}
}

// HTTPServer es el subconjunto de *http.Server que necesita el servicio.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}
